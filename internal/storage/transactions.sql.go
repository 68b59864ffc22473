package storage

import (
	"context"
	"database/sql"
	"strings"

	"spendfy/internal/core"
)

const transactionSelect = `SELECT t.id, t.user_id, t.account_id, a.name, t.category_id, c.name,
	t.type, t.date, t.amount, t.description, t.note, t.status, t.created_at, t.updated_at
FROM transactions t
JOIN accounts a ON a.id = t.account_id
JOIN categories c ON c.id = t.category_id`

const createTransaction = `-- name: CreateTransaction :one
INSERT INTO transactions (user_id, account_id, category_id, type, date, amount, description, note, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id`

type CreateTransactionParams struct {
	UserID      int64
	AccountID   int64
	CategoryID  int64
	Type        string
	Date        core.Date
	Amount      core.Money
	Description *string
	Note        *string
	Status      string
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (core.Transaction, error) {
	now := q.timestamp()
	var id int64
	err := q.queryRow(ctx, createTransaction,
		arg.UserID, arg.AccountID, arg.CategoryID, arg.Type, arg.Date, arg.Amount,
		nullString(arg.Description), nullString(arg.Note), arg.Status, now, now,
	).Scan(&id)
	if err != nil {
		return core.Transaction{}, classify(err)
	}
	return q.GetTransaction(ctx, id)
}

const getTransaction = `-- name: GetTransaction :one
` + transactionSelect + `
WHERE t.id = ?`

func (q *Queries) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	return scanTransaction(q.queryRow(ctx, getTransaction, id))
}

// ListTransactions returns the user's transactions matching f in id order.
func (q *Queries) ListTransactions(ctx context.Context, userID int64, f core.TransactionFilter) ([]core.Transaction, error) {
	var (
		where = []string{"t.user_id = ?"}
		args  = []any{userID}
	)
	if f.AccountID != 0 {
		where = append(where, "t.account_id = ?")
		args = append(args, f.AccountID)
	}
	if f.CategoryID != 0 {
		where = append(where, "t.category_id = ?")
		args = append(args, f.CategoryID)
	}
	if t := strings.TrimSpace(f.Type); t != "" {
		where = append(where, "UPPER(t.type) = UPPER(?)")
		args = append(args, t)
	}
	if f.From != nil {
		where = append(where, "t.date >= ?")
		args = append(args, *f.From)
	}
	if f.To != nil {
		where = append(where, "t.date <= ?")
		args = append(args, *f.To)
	}
	query := transactionSelect + "\nWHERE " + strings.Join(where, " AND ") + "\nORDER BY t.id"

	rows, err := q.query(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	return collect(rows, scanTransaction)
}

const listExpenseAmounts = `-- name: ListExpenseAmounts :many
SELECT amount FROM transactions
WHERE user_id = ? AND category_id = ? AND UPPER(TRIM(type)) = 'EXPENSE' AND date >= ? AND date <= ?`

// SumExpenses totals the EXPENSE transactions of user and category within p.
// Amounts are summed as decimals since SQLite stores them as text.
func (q *Queries) SumExpenses(ctx context.Context, userID, categoryID int64, p core.Period) (core.Money, error) {
	rows, err := q.query(ctx, listExpenseAmounts, userID, categoryID, p.Start, p.End)
	if err != nil {
		return core.Money{}, classify(err)
	}
	amounts, err := collect(rows, func(row scanner) (core.Money, error) {
		var m core.Money
		if err := row.Scan(&m); err != nil {
			return core.Money{}, err
		}
		return m, nil
	})
	if err != nil {
		return core.Money{}, err
	}
	var total core.Money
	for _, m := range amounts {
		total = total.Add(m)
	}
	return total, nil
}

const updateTransaction = `-- name: UpdateTransaction :exec
UPDATE transactions
SET account_id = ?, category_id = ?, type = ?, date = ?, amount = ?, description = ?, note = ?, status = ?, updated_at = ?
WHERE id = ?`

type UpdateTransactionParams struct {
	ID          int64
	AccountID   int64
	CategoryID  int64
	Type        string
	Date        core.Date
	Amount      core.Money
	Description *string
	Note        *string
	Status      string
}

func (q *Queries) UpdateTransaction(ctx context.Context, arg UpdateTransactionParams) (core.Transaction, error) {
	err := q.execAffecting(ctx, updateTransaction,
		arg.AccountID, arg.CategoryID, arg.Type, arg.Date, arg.Amount,
		nullString(arg.Description), nullString(arg.Note), arg.Status, q.timestamp(), arg.ID,
	)
	if err != nil {
		return core.Transaction{}, err
	}
	return q.GetTransaction(ctx, arg.ID)
}

const deleteTransaction = `-- name: DeleteTransaction :exec
DELETE FROM transactions WHERE id = ?`

func (q *Queries) DeleteTransaction(ctx context.Context, id int64) error {
	return q.execAffecting(ctx, deleteTransaction, id)
}

func scanTransaction(row scanner) (core.Transaction, error) {
	var (
		t           core.Transaction
		description sql.NullString
		note        sql.NullString
	)
	err := row.Scan(&t.ID, &t.UserID, &t.AccountID, &t.AccountName, &t.CategoryID, &t.CategoryName,
		&t.Type, &t.Date, &t.Amount, &description, &note, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return core.Transaction{}, classify(err)
	}
	t.Description = stringPtr(description)
	t.Note = stringPtr(note)
	return t, nil
}
