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

func TestRoomCreate_Validation(t *testing.T) {
	f := newFixture(t, testutil.Date(2024, time.March, 1))

	_, err := f.Rooms.Create(ctx, f.User.ID, service.RoomInput{Number: " ", MonthlyRentCent: 100})
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "number", verr.Field)

	_, err = f.Rooms.Create(ctx, f.User.ID, service.RoomInput{Number: "1", MonthlyRentCent: 0})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "monthly_rent", verr.Field)

	r := f.room(t, "1", 30000)
	assert.Equal(t, models.RoomAvailable, r.Status)
}

func TestRoomList_FiltersAndPaging(t *testing.T) {
	f := newFixture(t, testutil.Date(2024, time.March, 1))
	for i, rent := range []int64{30000, 45000, 60000} {
		f.room(t, string(rune('A'+i)), rent)
	}
	occupied := f.room(t, "D", 50000)
	f.tenant(t, occupied.ID, "Dora")

	page, err := f.Rooms.List(ctx, f.User.ID, service.RoomFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 4, page.Total)
	require.Len(t, page.Items, 4)
	assert.Equal(t, "A", page.Items[0].Number)

	page, err = f.Rooms.List(ctx, f.User.ID, service.RoomFilter{Status: models.RoomOccupied})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "D", page.Items[0].Number)

	lo, hi := int64(40000), int64(55000)
	page, err = f.Rooms.List(ctx, f.User.ID, service.RoomFilter{MinPriceCent: &lo, MaxPriceCent: &hi})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)

	page, err = f.Rooms.List(ctx, f.User.ID, service.RoomFilter{Page: 2, PerPage: 3})
	require.NoError(t, err)
	assert.EqualValues(t, 4, page.Total)
	assert.Equal(t, 2, page.Pages())
	require.Len(t, page.Items, 1)
	assert.Equal(t, "D", page.Items[0].Number)
}

func TestRoom_Ownership(t *testing.T) {
	f := newFixture(t, testutil.Date(2024, time.March, 1))
	other := testutil.CreateUser(t, f.DB, "someone", "secret123")
	r := testutil.CreateRoom(t, f.DB, other.ID, "X", 10000)

	_, err := f.Rooms.Get(ctx, f.User.ID, r.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
	_, err = f.Rooms.Update(ctx, f.User.ID, r.ID, service.RoomInput{Number: "Y", MonthlyRentCent: 1})
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.ErrorIs(t, f.Rooms.Delete(ctx, f.User.ID, r.ID), service.ErrNotFound)

	_, err = f.Tenants.Create(ctx, f.User.ID, service.TenantInput{
		Name: "Eve", StartDate: testutil.Date(2024, time.January, 1), RoomID: r.ID,
	})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestRoomUpdate_KeepsStatus(t *testing.T) {
	f := newFixture(t, testutil.Date(2024, time.March, 1))
	r := f.room(t, "1", 30000)
	f.tenant(t, r.ID, "Alice")

	updated, err := f.Rooms.Update(ctx, f.User.ID, r.ID, service.RoomInput{Number: "1A", Description: "corner", MonthlyRentCent: 35000})
	require.NoError(t, err)
	assert.Equal(t, "1A", updated.Number)
	assert.Equal(t, models.RoomOccupied, f.roomStatus(t, r.ID))
}

func TestRoomDetail(t *testing.T) {
	f := newFixture(t, testutil.Date(2024, time.March, 1))
	r := f.room(t, "1", 30000)
	alice := f.tenant(t, r.ID, "Alice")
	f.payment(t, alice.ID, 30000, testutil.Date(2024, time.January, 1), models.PaymentPaid)
	f.payment(t, alice.ID, 30000, testutil.Date(2024, time.February, 1), models.PaymentPaid)
	f.payment(t, alice.ID, 30000, testutil.Date(2024, time.March, 1), models.PaymentPending)

	d, err := f.Rooms.Detail(ctx, f.User.ID, r.ID)
	require.NoError(t, err)
	require.NotNil(t, d.CurrentTenant)
	assert.Equal(t, "Alice", d.CurrentTenant.Name)
	assert.EqualValues(t, 60000, d.TotalRevenueCent)
}

func TestRoomDelete_Cascades(t *testing.T) {
	f := newFixture(t, testutil.Date(2024, time.March, 1))
	r := f.room(t, "1", 30000)
	alice := f.tenant(t, r.ID, "Alice")
	f.payment(t, alice.ID, 30000, testutil.Date(2024, time.January, 1), models.PaymentPending)

	require.NoError(t, f.Rooms.Delete(ctx, f.User.ID, r.ID))

	var n int64
	require.NoError(t, f.DB.Model(&models.Tenant{}).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, f.DB.Model(&models.Payment{}).Count(&n).Error)
	assert.Zero(t, n)
}
