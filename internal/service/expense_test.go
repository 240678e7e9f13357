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

func TestExpenseCRUD(t *testing.T) {
	f := newFixture(t, testutil.Date(2024, time.March, 10))

	_, err := f.Expenses.Create(ctx, f.User.ID, service.ExpenseInput{
		Description: "paint", AmountCent: 1000, Category: "luxury", Date: testutil.Date(2024, time.March, 1),
	})
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "category", verr.Field)

	e, err := f.Expenses.Create(ctx, f.User.ID, service.ExpenseInput{
		Description: " paint ", AmountCent: 1000, Category: "Repairs", Date: testutil.Date(2024, time.March, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, "paint", e.Description)
	assert.Equal(t, models.ExpenseRepairs, e.Category)

	_, err = f.Expenses.Create(ctx, f.User.ID, service.ExpenseInput{
		Description: "power", AmountCent: 2000, Category: models.ExpenseUtilities, Date: testutil.Date(2024, time.March, 5),
	})
	require.NoError(t, err)

	page, err := f.Expenses.List(ctx, f.User.ID, service.ExpenseFilter{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "power", page.Items[0].Description)

	page, err = f.Expenses.List(ctx, f.User.ID, service.ExpenseFilter{Category: models.ExpenseRepairs})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	e, err = f.Expenses.Update(ctx, f.User.ID, e.ID, service.ExpenseInput{
		Description: "paint walls", AmountCent: 1500, Category: models.ExpenseMaintenance, Date: testutil.Date(2024, time.March, 2),
	})
	require.NoError(t, err)
	got, err := f.Expenses.Get(ctx, f.User.ID, e.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1500, got.AmountCent)
	assert.Equal(t, models.ExpenseMaintenance, got.Category)

	other := testutil.CreateUser(t, f.DB, "someone", "secret123")
	assert.ErrorIs(t, f.Expenses.Delete(ctx, other.ID, e.ID), service.ErrNotFound)
	require.NoError(t, f.Expenses.Delete(ctx, f.User.ID, e.ID))
	_, err = f.Expenses.Get(ctx, f.User.ID, e.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}
