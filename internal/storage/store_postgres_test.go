package storage

import (
	"context"
	"os"
	"testing"

	"spendfy/internal/core"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupPostgres(t *testing.T) *Store {
	t.Helper()
	dbURL := os.Getenv("SPENDFY_TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("SPENDFY_TEST_DATABASE_URL not set, skipping postgres tests")
	}
	store, err := NewPostgresStore(context.Background(), dbURL)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPostgresBudgetExclusion(t *testing.T) {
	store := setupPostgres(t)
	ctx := context.Background()
	q := store.Queries()

	user, err := q.CreateUser(ctx, CreateUserParams{
		Name: "Pg", Email: uuid.NewString() + "@example.com", PasswordHash: "hash", Status: core.UserActive,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = q.DeleteUser(ctx, user.ID) })

	_, err = q.CreateUser(ctx, CreateUserParams{
		Name: "Pg", Email: user.Email, PasswordHash: "hash", Status: core.UserActive,
	})
	assert.ErrorIs(t, err, ErrUniqueViolation)

	cat, err := q.CreateCategory(ctx, CreateCategoryParams{UserID: user.ID, Name: "Food"})
	require.NoError(t, err)

	create := func(start, end core.Date) error {
		_, err := q.CreateBudget(ctx, CreateBudgetParams{
			UserID: user.ID, CategoryID: cat.ID, Limit: core.MustMoney("123.45"), StartDate: start, EndDate: end,
		})
		return err
	}
	require.NoError(t, create(core.NewDate(2024, 1, 1), core.NewDate(2024, 1, 31)))
	assert.ErrorIs(t, create(core.NewDate(2024, 1, 31), core.NewDate(2024, 2, 10)), ErrOverlapViolation)
	require.NoError(t, create(core.NewDate(2024, 2, 1), core.NewDate(2024, 2, 29)))

	budgets, err := q.ListBudgetsByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, budgets, 2)
	assert.Equal(t, "123.45", budgets[0].Limit.String())
	assert.Equal(t, core.NewDate(2024, 1, 1), budgets[0].StartDate)

	require.NoError(t, q.DeleteUser(ctx, user.ID))
	budgets, err = q.ListBudgetsByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, budgets)
}
