package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"kos-manager/internal/models"
)

// Reminder is a payment reminder addressed to a tenant.
type Reminder struct {
	PaymentID   uint      `json:"payment_id"`
	TenantName  string    `json:"tenant_name"`
	TenantEmail string    `json:"tenant_email,omitempty"`
	TenantPhone string    `json:"tenant_phone,omitempty"`
	RoomNumber  string    `json:"room_number"`
	AmountCent  int64     `json:"amount_cent"`
	DueDate     time.Time `json:"due_date"`
	Status      string    `json:"status"`
}

// Message renders the reminder text sent to the tenant.
func (r Reminder) Message() string {
	return fmt.Sprintf("REMINDER: Payment of %s is due for %s in Room %s",
		FormatCurrency(r.AmountCent), r.TenantName, r.RoomNumber)
}

// NewReminder builds a reminder from a payment with Tenant and Room loaded.
func NewReminder(p *models.Payment) Reminder {
	r := Reminder{
		PaymentID:  p.ID,
		AmountCent: p.AmountCent,
		DueDate:    p.DueDate,
		Status:     p.Status,
	}
	if p.Tenant != nil {
		r.TenantName = p.Tenant.Name
		r.TenantEmail = p.Tenant.Email
		r.TenantPhone = p.Tenant.Phone
	}
	if p.Room != nil {
		r.RoomNumber = p.Room.Number
	}
	return r
}

// Notifier delivers reminders.
type Notifier interface {
	Notify(ctx context.Context, r Reminder) error
}

// ReminderService sends payment reminders through a Notifier.
type ReminderService struct {
	Payments    *PaymentService
	Notifier    Notifier
	DaysAhead   int
	Concurrency int
	Log         *zap.Logger
}

// SendForPayment sends a reminder for one unpaid payment owned by userID.
func (s *ReminderService) SendForPayment(ctx context.Context, userID, paymentID uint) (Reminder, error) {
	p, err := s.Payments.Get(ctx, userID, paymentID)
	if err != nil {
		return Reminder{}, err
	}
	if p.Status == models.PaymentPaid {
		return Reminder{}, ErrPaymentSettled
	}
	r := NewReminder(p)
	if err := s.Notifier.Notify(ctx, r); err != nil {
		return Reminder{}, fmt.Errorf("notify payment %d: %w", p.ID, err)
	}
	return r, nil
}

// SendDue reconciles, then sends a reminder for every unpaid payment due
// within DaysAhead days, at most Concurrency at a time. It stops at the
// first delivery error and returns how many were sent.
func (s *ReminderService) SendDue(ctx context.Context, today time.Time) (int, error) {
	if _, err := s.Payments.Reconcile(ctx, today); err != nil {
		return 0, err
	}
	payments, err := s.Payments.DueForReminder(ctx, today, s.DaysAhead)
	if err != nil {
		return 0, err
	}

	limit := s.Concurrency
	if limit <= 0 {
		limit = 1
	}
	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}

	var sent atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range payments {
		r := NewReminder(&payments[i])
		g.Go(func() error {
			if err := s.Notifier.Notify(gctx, r); err != nil {
				return fmt.Errorf("notify payment %d: %w", r.PaymentID, err)
			}
			sent.Add(1)
			log.Debug("reminder sent", zap.Uint("payment_id", r.PaymentID), zap.String("tenant", r.TenantName))
			return nil
		})
	}
	err = g.Wait()
	return int(sent.Load()), err
}
