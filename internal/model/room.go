package model

import "time"

// RoomStatus is the derived availability state of a room.
type RoomStatus string

const (
	RoomAvailable   RoomStatus = "Available"
	RoomOccupied    RoomStatus = "Occupied"
	RoomMaintenance RoomStatus = "Maintenance"
)

// Room represents a capacity-bounded room.
//
// CurrentOccupancy, Status and Version are written only by the allocation
// engine; the remaining fields belong to the record-management handlers.
type Room struct {
	ID               int64      `gorm:"primaryKey" json:"id"`
	RoomNumber       string     `gorm:"uniqueIndex;size:64;not null" json:"roomNumber"`
	Capacity         int        `gorm:"not null" json:"capacity"`
	CurrentOccupancy int        `gorm:"not null;default:0" json:"currentOccupancy"`
	Status           RoomStatus `gorm:"size:16;not null;default:Available" json:"status"`
	UnderMaintenance bool       `gorm:"not null;default:false" json:"underMaintenance"`
	Floor            int        `json:"floor"`
	Amenities        string     `gorm:"size:512" json:"amenities"`
	Version          int64      `gorm:"not null;default:0" json:"-"`
	CreatedAt        time.Time  `gorm:"not null" json:"createdAt"`
	UpdatedAt        time.Time  `gorm:"not null" json:"updatedAt"`
}

// DeriveRoomStatus computes the status a room must carry for a given
// occupancy. Applied by the engine whenever occupancy changes and by the
// room-update handler when capacity or the maintenance flag change, never
// as a save-time side effect.
func DeriveRoomStatus(occupancy, capacity int, underMaintenance bool) RoomStatus {
	switch {
	case occupancy >= capacity:
		return RoomOccupied
	case underMaintenance:
		return RoomMaintenance
	default:
		return RoomAvailable
	}
}
