package services

import (
	"context"
	"errors"
	"fmt"

	"spendfy/internal/amqp"
	"spendfy/internal/core"
	"spendfy/internal/storage"
)

const overlappingBudget = "A budget already exists for this category in the given period"

type BudgetService struct {
	base
}

func NewBudgetService(store Store, identity *Identity, events *Events) *BudgetService {
	return &BudgetService{base{store: store, identity: identity, events: events}}
}

// Create stores a budget after checking that its category belongs to the
// caller and that no budget of that category overlaps its period.
func (s *BudgetService) Create(ctx context.Context, p core.Principal, in core.BudgetInput) (core.Budget, error) {
	period, err := budgetPeriod(in)
	if err != nil {
		return core.Budget{}, err
	}

	var budget core.Budget
	err = s.store.InTx(ctx, func(q *storage.Queries) error {
		user, err := s.identity.Resolve(ctx, q, p)
		if err != nil {
			return err
		}
		category, err := loadCategory(ctx, q, user, *in.CategoryID)
		if err != nil {
			return err
		}
		if err := checkOverlap(ctx, q, user.ID, category.ID, period, 0); err != nil {
			return err
		}
		budget, err = q.CreateBudget(ctx, storage.CreateBudgetParams{
			UserID:     user.ID,
			CategoryID: category.ID,
			Limit:      *in.LimitAmount,
			StartDate:  period.Start,
			EndDate:    period.End,
		})
		return budgetWriteError(err, "create")
	})
	if err != nil {
		return core.Budget{}, err
	}
	s.events.emit(ctx, amqp.ResourceBudget, amqp.ActionCreated, budget.ID, budget.UserID)
	return budget, nil
}

func (s *BudgetService) Get(ctx context.Context, p core.Principal, id int64) (core.Budget, error) {
	var budget core.Budget
	err := s.store.InTx(ctx, func(q *storage.Queries) error {
		user, err := s.identity.Resolve(ctx, q, p)
		if err != nil {
			return err
		}
		budget, err = loadBudget(ctx, q, user, id)
		return err
	})
	return budget, err
}

func (s *BudgetService) List(ctx context.Context, p core.Principal) ([]core.Budget, error) {
	var budgets []core.Budget
	err := s.store.InTx(ctx, func(q *storage.Queries) error {
		user, err := s.identity.Resolve(ctx, q, p)
		if err != nil {
			return err
		}
		budgets, err = q.ListBudgetsByUser(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("list budgets: %w", err)
		}
		return nil
	})
	return budgets, err
}

// Update replaces a budget. The budget itself is excluded from the overlap
// check, so moving it within its own period succeeds.
func (s *BudgetService) Update(ctx context.Context, p core.Principal, id int64, in core.BudgetInput) (core.Budget, error) {
	period, err := budgetPeriod(in)
	if err != nil {
		return core.Budget{}, err
	}

	var budget core.Budget
	err = s.store.InTx(ctx, func(q *storage.Queries) error {
		user, err := s.identity.Resolve(ctx, q, p)
		if err != nil {
			return err
		}
		if _, err := loadBudget(ctx, q, user, id); err != nil {
			return err
		}
		category, err := loadCategory(ctx, q, user, *in.CategoryID)
		if err != nil {
			return err
		}
		if err := checkOverlap(ctx, q, user.ID, category.ID, period, id); err != nil {
			return err
		}
		budget, err = q.UpdateBudget(ctx, storage.UpdateBudgetParams{
			ID:         id,
			CategoryID: category.ID,
			Limit:      *in.LimitAmount,
			StartDate:  period.Start,
			EndDate:    period.End,
		})
		if errors.Is(err, storage.ErrNotFound) {
			return core.NotFound(core.EntityBudget, id)
		}
		return budgetWriteError(err, "update")
	})
	if err != nil {
		return core.Budget{}, err
	}
	s.events.emit(ctx, amqp.ResourceBudget, amqp.ActionUpdated, budget.ID, budget.UserID)
	return budget, nil
}

func (s *BudgetService) Delete(ctx context.Context, p core.Principal, id int64) error {
	var user core.User
	err := s.store.InTx(ctx, func(q *storage.Queries) error {
		var err error
		if user, err = s.identity.Resolve(ctx, q, p); err != nil {
			return err
		}
		if _, err := loadBudget(ctx, q, user, id); err != nil {
			return err
		}
		if err := q.DeleteBudget(ctx, id); err != nil {
			return notFoundOr(err, core.EntityBudget, id, "delete")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.events.emit(ctx, amqp.ResourceBudget, amqp.ActionDeleted, id, user.ID)
	return nil
}

// Usage reports how much of the budget the caller's expenses in its category
// and period have consumed.
func (s *BudgetService) Usage(ctx context.Context, p core.Principal, id int64) (core.BudgetUsage, error) {
	var usage core.BudgetUsage
	err := s.store.InTx(ctx, func(q *storage.Queries) error {
		user, err := s.identity.Resolve(ctx, q, p)
		if err != nil {
			return err
		}
		budget, err := loadBudget(ctx, q, user, id)
		if err != nil {
			return err
		}
		usage, err = BudgetUsage(ctx, q, budget)
		return err
	})
	return usage, err
}

// BudgetUsage computes usage for a budget already loaded. Used by the alert
// worker, which has no principal.
func BudgetUsage(ctx context.Context, q *storage.Queries, b core.Budget) (core.BudgetUsage, error) {
	spent, err := q.SumExpenses(ctx, b.UserID, b.CategoryID, b.Period())
	if err != nil {
		return core.BudgetUsage{}, fmt.Errorf("sum expenses for budget %d: %w", b.ID, err)
	}
	return core.ComputeUsage(b, spent), nil
}

// budgetPeriod validates the input and its date range. It touches no storage.
func budgetPeriod(in core.BudgetInput) (core.Period, error) {
	if err := core.Validate(&in); err != nil {
		return core.Period{}, err
	}
	return in.Period()
}

func checkOverlap(ctx context.Context, q *storage.Queries, userID, categoryID int64, period core.Period, exclude int64) error {
	existing, err := q.ListOverlappingBudgets(ctx, userID, categoryID, period)
	if err != nil {
		return fmt.Errorf("list overlapping budgets: %w", err)
	}
	if _, found := core.FindOverlap(period, existing, exclude); found {
		return core.Conflict(core.EntityBudget, overlappingBudget)
	}
	return nil
}

func budgetWriteError(err error, verb string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrOverlapViolation):
		return core.Conflict(core.EntityBudget, overlappingBudget)
	default:
		return fmt.Errorf("%s budget: %w", verb, err)
	}
}
