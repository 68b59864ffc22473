package storage

import (
	"context"

	"spendfy/internal/core"
)

const budgetSelect = `SELECT b.id, b.user_id, b.category_id, c.name, b.limit_amount, b.start_date, b.end_date, b.created_at, b.updated_at
FROM budgets b
JOIN categories c ON c.id = b.category_id`

const createBudget = `-- name: CreateBudget :one
INSERT INTO budgets (user_id, category_id, limit_amount, start_date, end_date, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING id`

type CreateBudgetParams struct {
	UserID     int64
	CategoryID int64
	Limit      core.Money
	StartDate  core.Date
	EndDate    core.Date
}

// CreateBudget inserts a budget. An overlapping period for the same user and
// category fails with ErrOverlapViolation.
func (q *Queries) CreateBudget(ctx context.Context, arg CreateBudgetParams) (core.Budget, error) {
	now := q.timestamp()
	var id int64
	err := q.queryRow(ctx, createBudget, arg.UserID, arg.CategoryID, arg.Limit, arg.StartDate, arg.EndDate, now, now).Scan(&id)
	if err != nil {
		return core.Budget{}, classify(err)
	}
	return q.GetBudget(ctx, id)
}

const getBudget = `-- name: GetBudget :one
` + budgetSelect + `
WHERE b.id = ?`

func (q *Queries) GetBudget(ctx context.Context, id int64) (core.Budget, error) {
	return scanBudget(q.queryRow(ctx, getBudget, id))
}

const listBudgetsByUser = `-- name: ListBudgetsByUser :many
` + budgetSelect + `
WHERE b.user_id = ?
ORDER BY b.id`

func (q *Queries) ListBudgetsByUser(ctx context.Context, userID int64) ([]core.Budget, error) {
	rows, err := q.query(ctx, listBudgetsByUser, userID)
	if err != nil {
		return nil, classify(err)
	}
	return collect(rows, scanBudget)
}

const listOverlappingBudgets = `-- name: ListOverlappingBudgets :many
` + budgetSelect + `
WHERE b.user_id = ? AND b.category_id = ? AND b.start_date <= ? AND b.end_date >= ?
ORDER BY b.id`

// ListOverlappingBudgets returns the budgets of user and category whose
// inclusive period shares at least one day with p.
func (q *Queries) ListOverlappingBudgets(ctx context.Context, userID, categoryID int64, p core.Period) ([]core.Budget, error) {
	rows, err := q.query(ctx, listOverlappingBudgets, userID, categoryID, p.End, p.Start)
	if err != nil {
		return nil, classify(err)
	}
	return collect(rows, scanBudget)
}

// ListBudgetsCovering returns the budgets of user and category active on day.
func (q *Queries) ListBudgetsCovering(ctx context.Context, userID, categoryID int64, day core.Date) ([]core.Budget, error) {
	return q.ListOverlappingBudgets(ctx, userID, categoryID, core.Period{Start: day, End: day})
}

const listActiveBudgets = `-- name: ListActiveBudgets :many
` + budgetSelect + `
WHERE b.start_date <= ? AND b.end_date >= ?
ORDER BY b.id`

// ListActiveBudgets returns every budget, of any user, whose period contains day.
func (q *Queries) ListActiveBudgets(ctx context.Context, day core.Date) ([]core.Budget, error) {
	rows, err := q.query(ctx, listActiveBudgets, day, day)
	if err != nil {
		return nil, classify(err)
	}
	return collect(rows, scanBudget)
}

const updateBudget = `-- name: UpdateBudget :exec
UPDATE budgets SET category_id = ?, limit_amount = ?, start_date = ?, end_date = ?, updated_at = ?
WHERE id = ?`

type UpdateBudgetParams struct {
	ID         int64
	CategoryID int64
	Limit      core.Money
	StartDate  core.Date
	EndDate    core.Date
}

func (q *Queries) UpdateBudget(ctx context.Context, arg UpdateBudgetParams) (core.Budget, error) {
	err := q.execAffecting(ctx, updateBudget, arg.CategoryID, arg.Limit, arg.StartDate, arg.EndDate, q.timestamp(), arg.ID)
	if err != nil {
		return core.Budget{}, err
	}
	return q.GetBudget(ctx, arg.ID)
}

const deleteBudget = `-- name: DeleteBudget :exec
DELETE FROM budgets WHERE id = ?`

func (q *Queries) DeleteBudget(ctx context.Context, id int64) error {
	return q.execAffecting(ctx, deleteBudget, id)
}

func scanBudget(row scanner) (core.Budget, error) {
	var b core.Budget
	err := row.Scan(&b.ID, &b.UserID, &b.CategoryID, &b.CategoryName, &b.Limit, &b.StartDate, &b.EndDate, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return core.Budget{}, classify(err)
	}
	return b, nil
}
