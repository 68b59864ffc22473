package storage

import (
	"context"

	"spendfy/internal/core"
)

const accountColumns = `id, user_id, name, type, initial_balance, created_at, updated_at`

const createAccount = `-- name: CreateAccount :one
INSERT INTO accounts (user_id, name, type, initial_balance, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING ` + accountColumns

type CreateAccountParams struct {
	UserID         int64
	Name           string
	Type           string
	InitialBalance core.Money
}

func (q *Queries) CreateAccount(ctx context.Context, arg CreateAccountParams) (core.Account, error) {
	now := q.timestamp()
	row := q.queryRow(ctx, createAccount, arg.UserID, arg.Name, arg.Type, arg.InitialBalance, now, now)
	return scanAccount(row)
}

const getAccount = `-- name: GetAccount :one
SELECT ` + accountColumns + ` FROM accounts WHERE id = ?`

func (q *Queries) GetAccount(ctx context.Context, id int64) (core.Account, error) {
	return scanAccount(q.queryRow(ctx, getAccount, id))
}

const listAccountsByUser = `-- name: ListAccountsByUser :many
SELECT ` + accountColumns + ` FROM accounts WHERE user_id = ? ORDER BY id`

func (q *Queries) ListAccountsByUser(ctx context.Context, userID int64) ([]core.Account, error) {
	rows, err := q.query(ctx, listAccountsByUser, userID)
	if err != nil {
		return nil, classify(err)
	}
	return collect(rows, scanAccount)
}

const accountNameExists = `-- name: AccountNameExists :one
SELECT EXISTS (SELECT 1 FROM accounts WHERE user_id = ? AND name = ?)`

func (q *Queries) AccountNameExists(ctx context.Context, userID int64, name string) (bool, error) {
	var exists bool
	err := q.queryRow(ctx, accountNameExists, userID, name).Scan(&exists)
	return exists, classify(err)
}

const updateAccount = `-- name: UpdateAccount :one
UPDATE accounts SET name = ?, type = ?, initial_balance = ?, updated_at = ?
WHERE id = ?
RETURNING ` + accountColumns

type UpdateAccountParams struct {
	ID             int64
	Name           string
	Type           string
	InitialBalance core.Money
}

func (q *Queries) UpdateAccount(ctx context.Context, arg UpdateAccountParams) (core.Account, error) {
	row := q.queryRow(ctx, updateAccount, arg.Name, arg.Type, arg.InitialBalance, q.timestamp(), arg.ID)
	return scanAccount(row)
}

const deleteAccount = `-- name: DeleteAccount :exec
DELETE FROM accounts WHERE id = ?`

func (q *Queries) DeleteAccount(ctx context.Context, id int64) error {
	return q.execAffecting(ctx, deleteAccount, id)
}

func scanAccount(row scanner) (core.Account, error) {
	var a core.Account
	err := row.Scan(&a.ID, &a.UserID, &a.Name, &a.Type, &a.InitialBalance, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return core.Account{}, classify(err)
	}
	return a, nil
}
