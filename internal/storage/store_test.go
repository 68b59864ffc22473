package storage

import (
	"context"
	"path/filepath"
	"testing"

	"spendfy/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// StoreTestSuite runs the query layer against a migrated SQLite file.
type StoreTestSuite struct {
	suite.Suite
	ctx   context.Context
	store *Store
	q     *Queries
	user  core.User
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func (suite *StoreTestSuite) SetupTest() {
	suite.ctx = context.Background()
	store, err := NewSQLiteStore(suite.ctx, filepath.Join(suite.T().TempDir(), "spendfy.db"))
	require.NoError(suite.T(), err, "failed to create test database")
	suite.store = store
	suite.q = store.Queries()
	suite.user = suite.createUser("ana@example.com")
}

func (suite *StoreTestSuite) TearDownTest() {
	if suite.store != nil {
		suite.store.Close()
	}
}

func (suite *StoreTestSuite) createUser(email string) core.User {
	u, err := suite.q.CreateUser(suite.ctx, CreateUserParams{
		Name: "Ana", Email: email, PasswordHash: "hash", Status: core.UserActive,
	})
	require.NoError(suite.T(), err)
	return u
}

func (suite *StoreTestSuite) createCategory(userID int64, name string) core.Category {
	c, err := suite.q.CreateCategory(suite.ctx, CreateCategoryParams{UserID: userID, Name: name})
	require.NoError(suite.T(), err)
	return c
}

func (suite *StoreTestSuite) createAccount(userID int64, name string) core.Account {
	a, err := suite.q.CreateAccount(suite.ctx, CreateAccountParams{
		UserID: userID, Name: name, Type: "CHECKING", InitialBalance: core.MustMoney("0"),
	})
	require.NoError(suite.T(), err)
	return a
}

func (suite *StoreTestSuite) createBudget(categoryID int64, start, end core.Date) (core.Budget, error) {
	return suite.q.CreateBudget(suite.ctx, CreateBudgetParams{
		UserID: suite.user.ID, CategoryID: categoryID, Limit: core.MustMoney("500"),
		StartDate: start, EndDate: end,
	})
}

func (suite *StoreTestSuite) TestUserLookup() {
	got, err := suite.q.GetUserByEmail(suite.ctx, "ana@example.com")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.user.ID, got.ID)
	assert.Equal(suite.T(), core.UserActive, got.Status)
	assert.False(suite.T(), got.CreatedAt.IsZero())

	_, err = suite.q.GetUserByEmail(suite.ctx, "ANA@example.com")
	assert.ErrorIs(suite.T(), err, ErrNotFound, "emails are case-sensitive")

	exists, err := suite.q.UserEmailExists(suite.ctx, "ana@example.com")
	require.NoError(suite.T(), err)
	assert.True(suite.T(), exists)
}

func (suite *StoreTestSuite) TestDuplicateEmail() {
	_, err := suite.q.CreateUser(suite.ctx, CreateUserParams{
		Name: "Other", Email: "ana@example.com", PasswordHash: "hash", Status: core.UserActive,
	})
	assert.ErrorIs(suite.T(), err, ErrUniqueViolation)
}

func (suite *StoreTestSuite) TestAccountRoundTrip() {
	created, err := suite.q.CreateAccount(suite.ctx, CreateAccountParams{
		UserID: suite.user.ID, Name: "Wallet", Type: "CASH", InitialBalance: core.MustMoney("123.45"),
	})
	require.NoError(suite.T(), err)

	got, err := suite.q.GetAccount(suite.ctx, created.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "123.45", got.InitialBalance.String())
	assert.Equal(suite.T(), "Wallet", got.Name)

	updated, err := suite.q.UpdateAccount(suite.ctx, UpdateAccountParams{
		ID: created.ID, Name: "Pocket", Type: "CASH", InitialBalance: core.MustMoney("10"),
	})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Pocket", updated.Name)
	assert.Equal(suite.T(), "10.00", updated.InitialBalance.String())

	_, err = suite.q.CreateAccount(suite.ctx, CreateAccountParams{
		UserID: suite.user.ID, Name: "Pocket", Type: "CASH", InitialBalance: core.MustMoney("0"),
	})
	assert.ErrorIs(suite.T(), err, ErrUniqueViolation)

	require.NoError(suite.T(), suite.q.DeleteAccount(suite.ctx, created.ID))
	_, err = suite.q.GetAccount(suite.ctx, created.ID)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
	assert.ErrorIs(suite.T(), suite.q.DeleteAccount(suite.ctx, created.ID), ErrNotFound)
}

func (suite *StoreTestSuite) TestCategoryColor() {
	color := "#00FF00"
	c, err := suite.q.CreateCategory(suite.ctx, CreateCategoryParams{UserID: suite.user.ID, Name: "Food", Color: &color})
	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), c.Color)
	assert.Equal(suite.T(), color, *c.Color)

	c, err = suite.q.UpdateCategory(suite.ctx, UpdateCategoryParams{ID: c.ID, Name: "Food"})
	require.NoError(suite.T(), err)
	assert.Nil(suite.T(), c.Color)
}

func (suite *StoreTestSuite) TestBudgetOverlapTrigger() {
	food := suite.createCategory(suite.user.ID, "Food")

	jan, err := suite.createBudget(food.ID, core.NewDate(2024, 1, 1), core.NewDate(2024, 1, 31))
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Food", jan.CategoryName)

	_, err = suite.createBudget(food.ID, core.NewDate(2024, 1, 15), core.NewDate(2024, 2, 15))
	assert.ErrorIs(suite.T(), err, ErrOverlapViolation)

	feb, err := suite.createBudget(food.ID, core.NewDate(2024, 2, 1), core.NewDate(2024, 2, 29))
	require.NoError(suite.T(), err, "adjacent periods do not overlap")

	// updating a budget onto its own period is not an overlap
	_, err = suite.q.UpdateBudget(suite.ctx, UpdateBudgetParams{
		ID: jan.ID, CategoryID: food.ID, Limit: core.MustMoney("600"),
		StartDate: jan.StartDate, EndDate: jan.EndDate,
	})
	require.NoError(suite.T(), err)

	_, err = suite.q.UpdateBudget(suite.ctx, UpdateBudgetParams{
		ID: feb.ID, CategoryID: food.ID, Limit: core.MustMoney("600"),
		StartDate: core.NewDate(2024, 1, 31), EndDate: core.NewDate(2024, 2, 29),
	})
	assert.ErrorIs(suite.T(), err, ErrOverlapViolation)

	overlapping, err := suite.q.ListOverlappingBudgets(suite.ctx, suite.user.ID, food.ID,
		core.Period{Start: core.NewDate(2024, 1, 31), End: core.NewDate(2024, 2, 1)})
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), overlapping, 2)

	covering, err := suite.q.ListBudgetsCovering(suite.ctx, suite.user.ID, food.ID, core.NewDate(2024, 2, 10))
	require.NoError(suite.T(), err)
	require.Len(suite.T(), covering, 1)
	assert.Equal(suite.T(), feb.ID, covering[0].ID)

	other := suite.createCategory(suite.user.ID, "Transport")
	_, err = suite.createBudget(other.ID, core.NewDate(2024, 1, 1), core.NewDate(2024, 1, 31))
	assert.NoError(suite.T(), err, "different category may reuse the period")

	active, err := suite.q.ListActiveBudgets(suite.ctx, core.NewDate(2024, 1, 20))
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), active, 2)
}

func (suite *StoreTestSuite) TestTransactionsFilterAndSum() {
	food := suite.createCategory(suite.user.ID, "Food")
	fun := suite.createCategory(suite.user.ID, "Fun")
	wallet := suite.createAccount(suite.user.ID, "Wallet")

	add := func(kind string, day int, amount string, cat core.Category) core.Transaction {
		t, err := suite.q.CreateTransaction(suite.ctx, CreateTransactionParams{
			UserID: suite.user.ID, AccountID: wallet.ID, CategoryID: cat.ID, Type: kind,
			Date: core.NewDate(2024, 1, day), Amount: core.MustMoney(amount), Status: "PAID",
		})
		require.NoError(suite.T(), err)
		return t
	}
	first := add("EXPENSE", 5, "10.10", food)
	add("expense", 10, "20.20", food)
	add("INCOME", 12, "1000", food)
	add("EXPENSE", 15, "5.00", fun)

	assert.Equal(suite.T(), "Wallet", first.AccountName)
	assert.Equal(suite.T(), "Food", first.CategoryName)
	assert.Nil(suite.T(), first.Description)

	all, err := suite.q.ListTransactions(suite.ctx, suite.user.ID, core.TransactionFilter{})
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), all, 4)

	from, to := core.NewDate(2024, 1, 6), core.NewDate(2024, 1, 12)
	filtered, err := suite.q.ListTransactions(suite.ctx, suite.user.ID, core.TransactionFilter{
		CategoryID: food.ID, From: &from, To: &to,
	})
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), filtered, 2)

	expenses, err := suite.q.ListTransactions(suite.ctx, suite.user.ID, core.TransactionFilter{Type: "Expense"})
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), expenses, 3)

	spent, err := suite.q.SumExpenses(suite.ctx, suite.user.ID, food.ID,
		core.Period{Start: core.NewDate(2024, 1, 1), End: core.NewDate(2024, 1, 31)})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "30.30", spent.String())
}

func (suite *StoreTestSuite) TestDeleteUserCascades() {
	food := suite.createCategory(suite.user.ID, "Food")
	wallet := suite.createAccount(suite.user.ID, "Wallet")
	_, err := suite.createBudget(food.ID, core.NewDate(2024, 1, 1), core.NewDate(2024, 1, 31))
	require.NoError(suite.T(), err)
	tx, err := suite.q.CreateTransaction(suite.ctx, CreateTransactionParams{
		UserID: suite.user.ID, AccountID: wallet.ID, CategoryID: food.ID, Type: "EXPENSE",
		Date: core.NewDate(2024, 1, 2), Amount: core.MustMoney("1"), Status: "PAID",
	})
	require.NoError(suite.T(), err)

	require.NoError(suite.T(), suite.q.DeleteUser(suite.ctx, suite.user.ID))

	_, err = suite.q.GetTransaction(suite.ctx, tx.ID)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
	_, err = suite.q.GetCategory(suite.ctx, food.ID)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
	budgets, err := suite.q.ListBudgetsByUser(suite.ctx, suite.user.ID)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), budgets)
}

func (suite *StoreTestSuite) TestDeleteCategoryCascades() {
	food := suite.createCategory(suite.user.ID, "Food")
	wallet := suite.createAccount(suite.user.ID, "Wallet")
	_, err := suite.createBudget(food.ID, core.NewDate(2024, 1, 1), core.NewDate(2024, 1, 31))
	require.NoError(suite.T(), err)
	_, err = suite.q.CreateTransaction(suite.ctx, CreateTransactionParams{
		UserID: suite.user.ID, AccountID: wallet.ID, CategoryID: food.ID, Type: "EXPENSE",
		Date: core.NewDate(2024, 1, 2), Amount: core.MustMoney("1"), Status: "PAID",
	})
	require.NoError(suite.T(), err)

	require.NoError(suite.T(), suite.q.DeleteCategory(suite.ctx, food.ID))

	txs, err := suite.q.ListTransactions(suite.ctx, suite.user.ID, core.TransactionFilter{})
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), txs)
	budgets, err := suite.q.ListBudgetsByUser(suite.ctx, suite.user.ID)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), budgets)
	_, err = suite.q.GetAccount(suite.ctx, wallet.ID)
	assert.NoError(suite.T(), err, "accounts survive category deletion")
}

func (suite *StoreTestSuite) TestInTxRollsBack() {
	err := suite.store.InTx(suite.ctx, func(q *Queries) error {
		if _, err := q.CreateCategory(suite.ctx, CreateCategoryParams{UserID: suite.user.ID, Name: "Temp"}); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(suite.T(), err, assert.AnError)

	cats, err := suite.q.ListCategoriesByUser(suite.ctx, suite.user.ID)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), cats)
}

func TestRebind(t *testing.T) {
	q := New(nil, DialectPostgres)
	assert.Equal(t, "SELECT 1 FROM t WHERE a = $1 AND b = $2", q.rebind("SELECT 1 FROM t WHERE a = ? AND b = ?"))

	lite := New(nil, DialectSQLite)
	assert.Equal(t, "a = ?", lite.rebind("a = ?"))
}
