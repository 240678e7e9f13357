package models

import "time"

// Backup points at an encrypted snapshot file of one user's records.
type Backup struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index;not null"`
	FileName  string `gorm:"size:128;not null"`
	FilePath  string `gorm:"size:512;not null"`
	Size      int64
	CreatedAt time.Time

	User *User `gorm:"constraint:OnDelete:CASCADE"`
}
