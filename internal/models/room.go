package models

import "time"

// Room status values.
const (
	RoomAvailable = "available"
	RoomOccupied  = "occupied"
)

// Room is a rentable unit owned by a user.
// 租金用分存储，避免浮点误差
type Room struct {
	ID              uint   `gorm:"primaryKey"`
	UserID          uint   `gorm:"index;not null"`
	Number          string `gorm:"size:20;not null"`
	Description     string `gorm:"type:text"`
	MonthlyRentCent int64  `gorm:"not null"`
	Status          string `gorm:"size:20;index;not null;default:available"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	User *User `gorm:"constraint:OnDelete:CASCADE"`
}
