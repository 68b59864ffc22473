package storage

import (
	"context"

	"spendfy/internal/core"
)

const userColumns = `id, name, email, password_hash, status, created_at, updated_at`

const createUser = `-- name: CreateUser :one
INSERT INTO users (name, email, password_hash, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING ` + userColumns

type CreateUserParams struct {
	Name         string
	Email        string
	PasswordHash string
	Status       core.UserStatus
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (core.User, error) {
	now := q.timestamp()
	row := q.queryRow(ctx, createUser, arg.Name, arg.Email, arg.PasswordHash, string(arg.Status), now, now)
	return scanUser(row)
}

const getUserByEmail = `-- name: GetUserByEmail :one
SELECT ` + userColumns + ` FROM users WHERE email = ?`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	return scanUser(q.queryRow(ctx, getUserByEmail, email))
}

const getUserByID = `-- name: GetUserByID :one
SELECT ` + userColumns + ` FROM users WHERE id = ?`

func (q *Queries) GetUserByID(ctx context.Context, id int64) (core.User, error) {
	return scanUser(q.queryRow(ctx, getUserByID, id))
}

const userEmailExists = `-- name: UserEmailExists :one
SELECT EXISTS (SELECT 1 FROM users WHERE email = ?)`

func (q *Queries) UserEmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := q.queryRow(ctx, userEmailExists, email).Scan(&exists)
	return exists, classify(err)
}

const deleteUser = `-- name: DeleteUser :exec
DELETE FROM users WHERE id = ?`

func (q *Queries) DeleteUser(ctx context.Context, id int64) error {
	return q.execAffecting(ctx, deleteUser, id)
}

func scanUser(row scanner) (core.User, error) {
	var (
		u      core.User
		status string
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &status, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return core.User{}, classify(err)
	}
	u.Status = core.UserStatus(status)
	return u, nil
}
