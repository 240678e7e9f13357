package models

import "time"

// Tenant occupies a room between StartDate and EndDate.
// At most one active tenant per room is expected; the service layer keeps
// Room.Status in step with IsActive.
type Tenant struct {
	ID        uint      `gorm:"primaryKey"`
	RoomID    uint      `gorm:"index;not null"`
	Name      string    `gorm:"size:100;not null"`
	Phone     string    `gorm:"size:20"`
	Email     string    `gorm:"size:120"`
	StartDate time.Time `gorm:"not null"`
	EndDate   *time.Time
	IsActive  bool `gorm:"index;not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Room *Room `gorm:"constraint:OnDelete:CASCADE"`
}
