package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"kos-manager/internal/models"

	"gorm.io/gorm"
)

// PaymentService manages rent payments and their status lifecycle.
type PaymentService struct {
	DB    *gorm.DB
	Clock Clock
}

// PaymentInput is the editable part of a payment. Status may be pending or
// paid; overdue is only ever set by Reconcile.
type PaymentInput struct {
	TenantID   uint
	AmountCent int64
	DueDate    time.Time
	PaidDate   *time.Time
	Status     string
	Notes      string
}

type PaymentFilter struct {
	Status  string
	Page    int
	PerPage int
}

const paymentsPerPage = 15

func (in *PaymentInput) validate() error {
	in.Status = strings.TrimSpace(in.Status)
	if in.Status == "" {
		in.Status = models.PaymentPending
	}
	if in.TenantID == 0 {
		return invalid("tenant_id", "tenant is required")
	}
	if in.AmountCent <= 0 {
		return invalid("amount", "amount must be positive")
	}
	if in.DueDate.IsZero() {
		return invalid("due_date", "due date is required")
	}
	if in.Status != models.PaymentPending && in.Status != models.PaymentPaid {
		return invalid("status", "status must be pending or paid")
	}
	return nil
}

// Transition moves p to status to. Allowed: pending->paid, pending->overdue,
// overdue->paid. Moving to paid sets PaidDate to paidOn; any other status
// leaves PaidDate nil.
func Transition(p *models.Payment, to string, paidOn time.Time) error {
	switch {
	case p.Status == models.PaymentPending && to == models.PaymentPaid,
		p.Status == models.PaymentOverdue && to == models.PaymentPaid:
		d := DateOf(paidOn)
		p.Status = models.PaymentPaid
		p.PaidDate = &d
		return nil
	case p.Status == models.PaymentPending && to == models.PaymentOverdue:
		p.Status = models.PaymentOverdue
		p.PaidDate = nil
		return nil
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.Status, to)
}

// Reconcile marks every pending payment due before today as overdue and
// returns how many rows changed. It is idempotent.
func (s *PaymentService) Reconcile(ctx context.Context, today time.Time) (int64, error) {
	res := s.DB.WithContext(ctx).Model(&models.Payment{}).
		Where("status = ? AND due_date < ?", models.PaymentPending, DateOf(today)).
		Update("status", models.PaymentOverdue)
	if res.Error != nil {
		return 0, fmt.Errorf("reconcile payments: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// List returns payments on rooms owned by userID, newest due date first.
func (s *PaymentService) List(ctx context.Context, userID uint, f PaymentFilter) (Page[models.Payment], error) {
	page, perPage := normalizePage(f.Page, f.PerPage, paymentsPerPage)
	db := s.DB.WithContext(ctx)

	base := db.Model(&models.Payment{}).Where("room_id IN (?)", ownedRoomIDs(db, userID))
	if f.Status != "" {
		base = base.Where("status = ?", f.Status)
	}

	out, err := paginate[models.Payment](base, page, perPage, "due_date DESC, id DESC", "Tenant", "Room")
	if err != nil {
		return out, fmt.Errorf("list payments: %w", err)
	}
	return out, nil
}

// All returns every payment of the user ordered by due date, for exports.
func (s *PaymentService) All(ctx context.Context, userID uint) ([]models.Payment, error) {
	db := s.DB.WithContext(ctx)
	var payments []models.Payment
	if err := db.Preload("Tenant").Preload("Room").
		Where("room_id IN (?)", ownedRoomIDs(db, userID)).
		Order("due_date ASC, id ASC").
		Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}

func ownedPayment(tx *gorm.DB, userID, id uint) (*models.Payment, error) {
	var p models.Payment
	if err := tx.Preload("Tenant").Preload("Room").
		Where("id = ? AND room_id IN (?)", id, ownedRoomIDs(tx, userID)).
		First(&p).Error; err != nil {
		return nil, notFound(err, "payment")
	}
	return &p, nil
}

// Get loads a payment on a room owned by userID.
func (s *PaymentService) Get(ctx context.Context, userID, id uint) (*models.Payment, error) {
	return ownedPayment(s.DB.WithContext(ctx), userID, id)
}

// Create records a payment for an active tenant. The room is taken from the
// tenant. A payment created as paid gets PaidDate or today.
func (s *PaymentService) Create(ctx context.Context, userID uint, in PaymentInput) (*models.Payment, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	db := s.DB.WithContext(ctx)

	tenant, err := ownedTenant(db, userID, in.TenantID)
	if err != nil {
		return nil, err
	}
	if !tenant.IsActive {
		return nil, ErrTenantInactive
	}

	p := models.Payment{
		RoomID:     tenant.RoomID,
		TenantID:   tenant.ID,
		AmountCent: in.AmountCent,
		DueDate:    DateOf(in.DueDate),
		Status:     models.PaymentPending,
		Notes:      strings.TrimSpace(in.Notes),
	}
	if in.Status == models.PaymentPaid {
		if err := Transition(&p, models.PaymentPaid, s.paidOn(in.PaidDate)); err != nil {
			return nil, err
		}
	}
	if err := db.Create(&p).Error; err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}
	p.Tenant = tenant
	p.Room = tenant.Room
	return &p, nil
}

// Update edits a payment. A paid payment cannot go back to pending; an
// overdue payment edited as pending stays overdue until it is paid.
func (s *PaymentService) Update(ctx context.Context, userID, id uint, in PaymentInput) (*models.Payment, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var out *models.Payment
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := ownedPayment(tx, userID, id)
		if err != nil {
			return err
		}

		if in.TenantID != p.TenantID {
			t, err := ownedTenant(tx, userID, in.TenantID)
			if err != nil {
				return err
			}
			if !t.IsActive {
				return ErrTenantInactive
			}
			p.TenantID = t.ID
			p.RoomID = t.RoomID
		}
		p.AmountCent = in.AmountCent
		p.DueDate = DateOf(in.DueDate)
		p.Notes = strings.TrimSpace(in.Notes)

		switch {
		case in.Status == models.PaymentPaid && p.Status == models.PaymentPaid:
			if in.PaidDate != nil {
				d := DateOf(*in.PaidDate)
				p.PaidDate = &d
			}
		case in.Status == models.PaymentPaid:
			if err := Transition(p, models.PaymentPaid, s.paidOn(in.PaidDate)); err != nil {
				return err
			}
		case p.Status == models.PaymentPaid:
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.Status, in.Status)
		}

		if err := tx.Model(&models.Payment{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
			"tenant_id":   p.TenantID,
			"room_id":     p.RoomID,
			"amount_cent": p.AmountCent,
			"due_date":    p.DueDate,
			"paid_date":   p.PaidDate,
			"status":      p.Status,
			"notes":       p.Notes,
		}).Error; err != nil {
			return fmt.Errorf("update payment: %w", err)
		}

		out, err = ownedPayment(tx, userID, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MarkPaid moves a pending or overdue payment to paid with PaidDate today.
func (s *PaymentService) MarkPaid(ctx context.Context, userID, id uint) (*models.Payment, error) {
	var out *models.Payment
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := ownedPayment(tx, userID, id)
		if err != nil {
			return err
		}
		if err := Transition(p, models.PaymentPaid, s.Clock.Today()); err != nil {
			return err
		}
		if err := tx.Model(&models.Payment{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
			"status":    p.Status,
			"paid_date": p.PaidDate,
		}).Error; err != nil {
			return fmt.Errorf("mark paid: %w", err)
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a payment.
func (s *PaymentService) Delete(ctx context.Context, userID, id uint) error {
	db := s.DB.WithContext(ctx)
	p, err := ownedPayment(db, userID, id)
	if err != nil {
		return err
	}
	if err := db.Delete(&models.Payment{}, p.ID).Error; err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	return nil
}

// DueForReminder returns unpaid payments of active tenants due on or before
// today+daysAhead, across all users. Overdue payments are included.
func (s *PaymentService) DueForReminder(ctx context.Context, today time.Time, daysAhead int) ([]models.Payment, error) {
	until := DateOf(today).AddDate(0, 0, daysAhead)
	var payments []models.Payment
	if err := s.DB.WithContext(ctx).
		Preload("Tenant").Preload("Room").
		Joins("JOIN tenants ON tenants.id = payments.tenant_id AND tenants.is_active = ?", true).
		Where("payments.status IN ? AND payments.due_date <= ?",
			[]string{models.PaymentPending, models.PaymentOverdue}, until).
		Order("payments.due_date ASC, payments.id ASC").
		Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("query due payments: %w", err)
	}
	return payments, nil
}

func (s *PaymentService) paidOn(d *time.Time) time.Time {
	if d != nil && !d.IsZero() {
		return *d
	}
	return s.Clock.Today()
}
