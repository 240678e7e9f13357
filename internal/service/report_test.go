package service_test

import (
	"testing"
	"time"

	"kos-manager/internal/models"
	"kos-manager/internal/service"
	"kos-manager/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Room #5 at $500 with tenant Alice, from creation to a paid January charge.
func TestScenario_RoomFiveAlice(t *testing.T) {
	today := testutil.Date(2024, time.February, 1)
	f := newFixture(t, today)

	room := f.room(t, "5", 50000)
	alice := f.tenant(t, room.ID, "Alice")
	assert.Equal(t, models.RoomOccupied, f.roomStatus(t, room.ID))

	p := f.payment(t, alice.ID, 50000, testutil.Date(2024, time.January, 1), models.PaymentPending)
	assert.Equal(t, models.PaymentPending, p.Status)

	n, err := f.Payments.Reconcile(ctx, today)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	p, err = f.Payments.Get(ctx, f.User.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentOverdue, p.Status)

	p, err = f.Payments.MarkPaid(ctx, f.User.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, p.Status)
	require.NotNil(t, p.PaidDate)
	assert.True(t, p.PaidDate.Equal(today))

	rev, err := f.Reports.MonthlyRevenue(ctx, f.User.ID, today.Year(), today.Month())
	require.NoError(t, err)
	assert.EqualValues(t, 50000, rev)

	assert.Equal(t, "REMINDER: Payment of $500.00 is due for Alice in Room 5", service.NewReminder(p).Message())
}

func TestMonthlyRevenue(t *testing.T) {
	f := newFixture(t, testutil.Date(2024, time.April, 1))
	r := f.room(t, "1", 30000)
	alice := f.tenant(t, r.ID, "Alice")

	mar := testutil.Date(2024, time.March, 31)
	apr := testutil.Date(2024, time.April, 1)
	for _, d := range []*time.Time{&mar, &mar, &apr} {
		_, err := f.Payments.Create(ctx, f.User.ID, service.PaymentInput{
			TenantID: alice.ID, AmountCent: 10000, DueDate: *d, Status: models.PaymentPaid, PaidDate: d,
		})
		require.NoError(t, err)
	}
	// pending payments never count
	f.payment(t, alice.ID, 99900, mar, models.PaymentPending)

	rev, err := f.Reports.MonthlyRevenue(ctx, f.User.ID, 2024, time.March)
	require.NoError(t, err)
	assert.EqualValues(t, 20000, rev)

	rev, err = f.Reports.MonthlyRevenue(ctx, f.User.ID, 2024, time.April)
	require.NoError(t, err)
	assert.EqualValues(t, 10000, rev)

	rev, err = f.Reports.MonthlyRevenue(ctx, f.User.ID, 2023, time.March)
	require.NoError(t, err)
	assert.Zero(t, rev)
}

func TestFinancialReport(t *testing.T) {
	f := newFixture(t, testutil.Date(2024, time.June, 1))
	r := f.room(t, "1", 30000)
	alice := f.tenant(t, r.ID, "Alice")

	paid := func(d time.Time, cents int64) {
		_, err := f.Payments.Create(ctx, f.User.ID, service.PaymentInput{
			TenantID: alice.ID, AmountCent: cents, DueDate: d, Status: models.PaymentPaid, PaidDate: &d,
		})
		require.NoError(t, err)
	}
	paid(testutil.Date(2024, time.January, 5), 30000)
	paid(testutil.Date(2024, time.February, 5), 30000)
	paid(testutil.Date(2023, time.December, 5), 30000)

	expense := func(d time.Time, cents int64, cat string) {
		_, err := f.Expenses.Create(ctx, f.User.ID, service.ExpenseInput{
			Description: "x", AmountCent: cents, Category: cat, Date: d,
		})
		require.NoError(t, err)
	}
	expense(testutil.Date(2024, time.January, 20), 5000, models.ExpenseUtilities)
	expense(testutil.Date(2024, time.January, 21), 2500, models.ExpenseRepairs)
	expense(testutil.Date(2023, time.November, 1), 1000, models.ExpenseOther)

	rep, err := f.Reports.FinancialReport(ctx, f.User.ID, 2024)
	require.NoError(t, err)
	require.Len(t, rep.Months, 12)

	jan := rep.Months[0]
	assert.Equal(t, time.January, jan.Month)
	assert.EqualValues(t, 30000, jan.RevenueCent)
	assert.EqualValues(t, 7500, jan.ExpensesCent)
	assert.EqualValues(t, 22500, jan.ProfitCent)
	assert.EqualValues(t, 30000, rep.Months[1].ProfitCent)
	assert.Zero(t, rep.Months[11].RevenueCent)

	assert.EqualValues(t, 60000, rep.YearRevenueCent)
	assert.EqualValues(t, 7500, rep.YearExpensesCent)
	assert.EqualValues(t, 5000, rep.ExpensesByCategory[models.ExpenseUtilities])
	assert.EqualValues(t, 90000, rep.TotalRevenueCent)
	assert.EqualValues(t, 8500, rep.TotalExpensesCent)
	assert.EqualValues(t, 81500, rep.NetProfitCent())
	require.Len(t, rep.RecentExpenses, 3)
	assert.Equal(t, models.ExpenseRepairs, rep.RecentExpenses[0].Category)
}

func TestRevenueSeries(t *testing.T) {
	now := testutil.Date(2024, time.March, 31)
	f := newFixture(t, now)
	r := f.room(t, "1", 30000)
	alice := f.tenant(t, r.ID, "Alice")

	for _, d := range []time.Time{
		testutil.Date(2023, time.October, 1),
		testutil.Date(2023, time.December, 15),
		testutil.Date(2024, time.February, 29),
		testutil.Date(2024, time.March, 31),
		testutil.Date(2023, time.September, 30), // outside the window
	} {
		d := d
		_, err := f.Payments.Create(ctx, f.User.ID, service.PaymentInput{
			TenantID: alice.ID, AmountCent: 10000, DueDate: d, Status: models.PaymentPaid, PaidDate: &d,
		})
		require.NoError(t, err)
	}

	series, err := f.Reports.RevenueSeries(ctx, f.User.ID, 6, now)
	require.NoError(t, err)
	require.Len(t, series, 6)

	months := make([]string, 0, 6)
	for _, p := range series {
		months = append(months, p.Month)
	}
	assert.Equal(t, []string{"October", "November", "December", "January", "February", "March"}, months)
	assert.EqualValues(t, 10000, series[0].RevenueCent)
	assert.Zero(t, series[1].RevenueCent)
	assert.Equal(t, 100.0, series[2].Revenue)
	assert.EqualValues(t, 10000, series[4].RevenueCent)
	assert.EqualValues(t, 10000, series[5].RevenueCent)
}

func TestDashboard(t *testing.T) {
	today := testutil.Date(2024, time.March, 10)
	f := newFixture(t, today)
	r1 := f.room(t, "1", 30000)
	r2 := f.room(t, "2", 40000)
	f.room(t, "3", 50000)
	f.room(t, "4", 50000)
	alice := f.tenant(t, r1.ID, "Alice")
	bob := f.tenant(t, r2.ID, "Bob")

	f.payment(t, alice.ID, 30000, testutil.Date(2024, time.March, 1), models.PaymentPaid)
	f.payment(t, bob.ID, 40000, testutil.Date(2024, time.March, 1), models.PaymentPaid)
	f.payment(t, bob.ID, 40000, testutil.Date(2024, time.February, 1), models.PaymentPending)
	f.payment(t, alice.ID, 30000, testutil.Date(2024, time.April, 1), models.PaymentPending)

	_, err := f.Payments.Reconcile(ctx, today)
	require.NoError(t, err)

	d, err := f.Reports.Dashboard(ctx, f.User.ID, today)
	require.NoError(t, err)
	assert.EqualValues(t, 4, d.TotalRooms)
	assert.EqualValues(t, 2, d.OccupiedRooms)
	assert.Equal(t, 50.0, d.OccupancyRate)
	assert.EqualValues(t, 2, d.ActiveTenants)
	assert.EqualValues(t, 70000, d.MonthlyRevenueCent)
	assert.EqualValues(t, 1, d.PendingPayments)
	assert.EqualValues(t, 1, d.OverduePayments)
	assert.Len(t, d.RecentPayments, 4)

	require.Len(t, d.TopRooms, 2)
	assert.Equal(t, "2", d.TopRooms[0].Room.Number)
	assert.EqualValues(t, 40000, d.TopRooms[0].RevenueCent)
}

func TestDashboard_Empty(t *testing.T) {
	f := newFixture(t, testutil.Date(2024, time.March, 10))
	d, err := f.Reports.Dashboard(ctx, f.User.ID, testutil.Date(2024, time.March, 10))
	require.NoError(t, err)
	assert.Zero(t, d.OccupancyRate)
	assert.Empty(t, d.TopRooms)
	assert.Empty(t, d.RecentPayments)
}
