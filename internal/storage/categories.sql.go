package storage

import (
	"context"
	"database/sql"

	"spendfy/internal/core"
)

const categoryColumns = `id, user_id, name, color, created_at, updated_at`

const createCategory = `-- name: CreateCategory :one
INSERT INTO categories (user_id, name, color, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
RETURNING ` + categoryColumns

type CreateCategoryParams struct {
	UserID int64
	Name   string
	Color  *string
}

func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (core.Category, error) {
	now := q.timestamp()
	row := q.queryRow(ctx, createCategory, arg.UserID, arg.Name, nullString(arg.Color), now, now)
	return scanCategory(row)
}

const getCategory = `-- name: GetCategory :one
SELECT ` + categoryColumns + ` FROM categories WHERE id = ?`

func (q *Queries) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	return scanCategory(q.queryRow(ctx, getCategory, id))
}

const listCategoriesByUser = `-- name: ListCategoriesByUser :many
SELECT ` + categoryColumns + ` FROM categories WHERE user_id = ? ORDER BY id`

func (q *Queries) ListCategoriesByUser(ctx context.Context, userID int64) ([]core.Category, error) {
	rows, err := q.query(ctx, listCategoriesByUser, userID)
	if err != nil {
		return nil, classify(err)
	}
	return collect(rows, scanCategory)
}

const categoryNameExists = `-- name: CategoryNameExists :one
SELECT EXISTS (SELECT 1 FROM categories WHERE user_id = ? AND name = ?)`

func (q *Queries) CategoryNameExists(ctx context.Context, userID int64, name string) (bool, error) {
	var exists bool
	err := q.queryRow(ctx, categoryNameExists, userID, name).Scan(&exists)
	return exists, classify(err)
}

const updateCategory = `-- name: UpdateCategory :one
UPDATE categories SET name = ?, color = ?, updated_at = ?
WHERE id = ?
RETURNING ` + categoryColumns

type UpdateCategoryParams struct {
	ID    int64
	Name  string
	Color *string
}

func (q *Queries) UpdateCategory(ctx context.Context, arg UpdateCategoryParams) (core.Category, error) {
	row := q.queryRow(ctx, updateCategory, arg.Name, nullString(arg.Color), q.timestamp(), arg.ID)
	return scanCategory(row)
}

const deleteCategory = `-- name: DeleteCategory :exec
DELETE FROM categories WHERE id = ?`

func (q *Queries) DeleteCategory(ctx context.Context, id int64) error {
	return q.execAffecting(ctx, deleteCategory, id)
}

func scanCategory(row scanner) (core.Category, error) {
	var (
		c     core.Category
		color sql.NullString
	)
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &color, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return core.Category{}, classify(err)
	}
	c.Color = stringPtr(color)
	return c, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
