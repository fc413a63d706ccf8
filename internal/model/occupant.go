package model

import "time"

// Occupant represents a student housed (or housable) in a room.
//
// RoomID, CurrentLeaseID and Version are written only by the allocation
// engine; profile fields belong to the record-management handlers.
type Occupant struct {
	ID             int64     `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"size:128;not null" json:"name"`
	ExternalID     string    `gorm:"uniqueIndex;size:64;not null" json:"externalId"`
	Course         string    `gorm:"size:128" json:"course"`
	Contact        string    `gorm:"size:64" json:"contact"`
	Email          string    `gorm:"uniqueIndex;size:128;not null" json:"email"`
	RoomID         *int64    `gorm:"index" json:"roomId"`
	CurrentLeaseID *int64    `gorm:"index" json:"currentLeaseId"`
	Version        int64     `gorm:"not null;default:0" json:"-"`
	CreatedAt      time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt      time.Time `gorm:"not null" json:"updatedAt"`

	// Associations
	Room *Room `gorm:"foreignKey:RoomID" json:"room,omitempty"`
}
