package service_test

import (
	"testing"
	"time"

	"kos-manager/internal/models"
	"kos-manager/internal/service"
	"kos-manager/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	DB       *gorm.DB
	User     *models.User
	Clock    service.Clock
	Rooms    *service.RoomService
	Tenants  *service.TenantService
	Payments *service.PaymentService
	Expenses *service.ExpenseService
	Reports  *service.ReportService
}

func newFixture(t *testing.T, today time.Time) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	clock := service.Clock(testutil.FixedClock(today))
	return &fixture{
		DB:       db,
		User:     testutil.CreateUser(t, db, "landlord", "secret123"),
		Clock:    clock,
		Rooms:    &service.RoomService{DB: db},
		Tenants:  &service.TenantService{DB: db, Clock: clock},
		Payments: &service.PaymentService{DB: db, Clock: clock},
		Expenses: &service.ExpenseService{DB: db},
		Reports:  &service.ReportService{DB: db},
	}
}

func (f *fixture) room(t *testing.T, number string, rentCent int64) *models.Room {
	t.Helper()
	r, err := f.Rooms.Create(ctx, f.User.ID, service.RoomInput{Number: number, MonthlyRentCent: rentCent})
	require.NoError(t, err)
	return r
}

func (f *fixture) tenant(t *testing.T, roomID uint, name string) *models.Tenant {
	t.Helper()
	tn, err := f.Tenants.Create(ctx, f.User.ID, service.TenantInput{
		Name:      name,
		StartDate: testutil.Date(2024, time.January, 1),
		RoomID:    roomID,
	})
	require.NoError(t, err)
	return tn
}

func (f *fixture) payment(t *testing.T, tenantID uint, amountCent int64, due time.Time, status string) *models.Payment {
	t.Helper()
	p, err := f.Payments.Create(ctx, f.User.ID, service.PaymentInput{
		TenantID:   tenantID,
		AmountCent: amountCent,
		DueDate:    due,
		Status:     status,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) roomStatus(t *testing.T, id uint) string {
	t.Helper()
	var r models.Room
	require.NoError(t, f.DB.First(&r, id).Error)
	return r.Status
}
