package models

import "time"

// Expense categories.
const (
	ExpenseUtilities   = "utilities"
	ExpenseMaintenance = "maintenance"
	ExpenseSupplies    = "supplies"
	ExpenseRepairs     = "repairs"
	ExpenseInsurance   = "insurance"
	ExpenseOther       = "other"
)

// ExpenseCategories lists the accepted categories in display order.
var ExpenseCategories = []string{
	ExpenseUtilities,
	ExpenseMaintenance,
	ExpenseSupplies,
	ExpenseRepairs,
	ExpenseInsurance,
	ExpenseOther,
}

// Expense is an operating cost recorded by a user.
type Expense struct {
	ID          uint      `gorm:"primaryKey"`
	UserID      uint      `gorm:"index;not null"`
	Description string    `gorm:"size:200;not null"`
	AmountCent  int64     `gorm:"not null"`
	Category    string    `gorm:"size:50;index;not null"`
	Date        time.Time `gorm:"index;not null"`
	Notes       string    `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	User *User `gorm:"constraint:OnDelete:CASCADE"`
}

// IsExpenseCategory reports whether c is one of ExpenseCategories.
func IsExpenseCategory(c string) bool {
	for _, v := range ExpenseCategories {
		if v == c {
			return true
		}
	}
	return false
}
