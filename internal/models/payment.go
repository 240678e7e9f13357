package models

import "time"

// Payment status values. Allowed transitions:
// pending -> paid, pending -> overdue, overdue -> paid.
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentOverdue = "overdue"
)

// Payment is a rent charge for a tenant in a room.
type Payment struct {
	ID         uint       `gorm:"primaryKey"`
	RoomID     uint       `gorm:"index;not null"`
	TenantID   uint       `gorm:"index;not null"`
	AmountCent int64      `gorm:"not null"`
	DueDate    time.Time  `gorm:"index;not null"`
	PaidDate   *time.Time `gorm:"index"` // set iff Status == paid
	Status     string     `gorm:"size:20;index;not null;default:pending"`
	Notes      string     `gorm:"type:text"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Room   *Room   `gorm:"constraint:OnDelete:CASCADE"`
	Tenant *Tenant `gorm:"constraint:OnDelete:CASCADE"`
}

// IsOverdue reports whether the payment is still pending past its due date.
// today must be a date at UTC midnight.
func (p *Payment) IsOverdue(today time.Time) bool {
	return p.Status == PaymentPending && p.DueDate.Before(today)
}
