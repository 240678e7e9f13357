package models

import "time"

// User is a landlord account. Rooms and Expenses reference it with ON DELETE CASCADE.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"size:80;uniqueIndex;not null"`
	Email        string `gorm:"size:120;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	LastLoginAt *time.Time // 最近登录时间
	LastLoginIP string     `gorm:"size:64"`
}
