package handler

import (
	"time"

	"kos-manager/internal/models"
	"kos-manager/internal/service"
	"kos-manager/internal/util"
)

// Money formats cents with the configured currency symbol.
type Money string

func (m Money) format(cents int64) string {
	sym := string(m)
	if sym == "" {
		sym = "$"
	}
	return service.FormatCurrencySymbol(cents, sym)
}

func dateStr(t time.Time) string {
	return t.Format(util.DateLayout)
}

func optDateStr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(util.DateLayout)
	return &s
}

type userResp struct {
	ID          uint       `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

func toUserResp(u *models.User) userResp {
	return userResp{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}

type roomResp struct {
	ID              uint      `json:"id"`
	Number          string    `json:"number"`
	Description     string    `json:"description"`
	MonthlyRentCent int64     `json:"monthly_rent_cent"`
	MonthlyRent     string    `json:"monthly_rent"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

func (m Money) room(r *models.Room) roomResp {
	return roomResp{
		ID:              r.ID,
		Number:          r.Number,
		Description:     r.Description,
		MonthlyRentCent: r.MonthlyRentCent,
		MonthlyRent:     m.format(r.MonthlyRentCent),
		Status:          r.Status,
		CreatedAt:       r.CreatedAt,
	}
}

type tenantResp struct {
	ID         uint      `json:"id"`
	RoomID     uint      `json:"room_id"`
	RoomNumber string    `json:"room_number,omitempty"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	Email      string    `json:"email"`
	StartDate  string    `json:"start_date"`
	EndDate    *string   `json:"end_date"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

func toTenantResp(t *models.Tenant) tenantResp {
	out := tenantResp{
		ID:        t.ID,
		RoomID:    t.RoomID,
		Name:      t.Name,
		Phone:     t.Phone,
		Email:     t.Email,
		StartDate: dateStr(t.StartDate),
		EndDate:   optDateStr(t.EndDate),
		IsActive:  t.IsActive,
		CreatedAt: t.CreatedAt,
	}
	if t.Room != nil {
		out.RoomNumber = t.Room.Number
	}
	return out
}

type paymentResp struct {
	ID         uint      `json:"id"`
	RoomID     uint      `json:"room_id"`
	RoomNumber string    `json:"room_number,omitempty"`
	TenantID   uint      `json:"tenant_id"`
	TenantName string    `json:"tenant_name,omitempty"`
	AmountCent int64     `json:"amount_cent"`
	Amount     string    `json:"amount"`
	DueDate    string    `json:"due_date"`
	PaidDate   *string   `json:"paid_date"`
	Status     string    `json:"status"`
	IsOverdue  bool      `json:"is_overdue"`
	Notes      string    `json:"notes"`
	CreatedAt  time.Time `json:"created_at"`
}

func (m Money) payment(p *models.Payment, today time.Time) paymentResp {
	out := paymentResp{
		ID:         p.ID,
		RoomID:     p.RoomID,
		TenantID:   p.TenantID,
		AmountCent: p.AmountCent,
		Amount:     m.format(p.AmountCent),
		DueDate:    dateStr(p.DueDate),
		PaidDate:   optDateStr(p.PaidDate),
		Status:     p.Status,
		IsOverdue:  p.Status == models.PaymentOverdue || p.IsOverdue(today),
		Notes:      p.Notes,
		CreatedAt:  p.CreatedAt,
	}
	if p.Room != nil {
		out.RoomNumber = p.Room.Number
	}
	if p.Tenant != nil {
		out.TenantName = p.Tenant.Name
	}
	return out
}

type expenseResp struct {
	ID          uint      `json:"id"`
	Description string    `json:"description"`
	AmountCent  int64     `json:"amount_cent"`
	Amount      string    `json:"amount"`
	Category    string    `json:"category"`
	Date        string    `json:"date"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
}

func (m Money) expense(e *models.Expense) expenseResp {
	return expenseResp{
		ID:          e.ID,
		Description: e.Description,
		AmountCent:  e.AmountCent,
		Amount:      m.format(e.AmountCent),
		Category:    e.Category,
		Date:        dateStr(e.Date),
		Notes:       e.Notes,
		CreatedAt:   e.CreatedAt,
	}
}

type backupResp struct {
	ID        uint      `json:"id"`
	FileName  string    `json:"file_name"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

func toBackupResp(b *models.Backup) backupResp {
	return backupResp{ID: b.ID, FileName: b.FileName, Size: b.Size, CreatedAt: b.CreatedAt}
}
