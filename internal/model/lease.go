package model

import "time"

// LeaseStatus is the lifecycle state of a lease. The only legal transition
// is Active -> Completed.
type LeaseStatus string

const (
	LeaseActive    LeaseStatus = "Active"
	LeaseCompleted LeaseStatus = "Completed"
)

// Lease links one occupant to one room for a bounded period.
type Lease struct {
	ID          int64       `gorm:"primaryKey" json:"id"`
	OccupantID  int64       `gorm:"index;not null" json:"occupantId"`
	RoomID      int64       `gorm:"index;not null" json:"roomId"`
	StartedAt   time.Time   `gorm:"not null" json:"startedAt"`
	CompletedAt *time.Time  `json:"completedAt"`
	Status      LeaseStatus `gorm:"size:16;not null;default:Active" json:"status"`
	Notes       string      `gorm:"size:512" json:"notes"`
	Version     int64       `gorm:"not null;default:0" json:"-"`
	CreatedAt   time.Time   `gorm:"not null" json:"createdAt"`
	UpdatedAt   time.Time   `gorm:"not null" json:"updatedAt"`

	// Associations
	Occupant *Occupant `gorm:"foreignKey:OccupantID" json:"occupant,omitempty"`
	Room     *Room     `gorm:"foreignKey:RoomID" json:"room,omitempty"`
}
