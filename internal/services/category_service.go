package services

import (
	"context"
	"errors"
	"fmt"

	"spendfy/internal/amqp"
	"spendfy/internal/core"
	"spendfy/internal/storage"
)

const duplicateCategoryName = "A category with this name already exists"

type CategoryService struct {
	base
}

func NewCategoryService(store Store, identity *Identity, events *Events) *CategoryService {
	return &CategoryService{base{store: store, identity: identity, events: events}}
}

func (s *CategoryService) Create(ctx context.Context, p core.Principal, in core.CategoryInput) (core.Category, error) {
	in.Normalize()
	if err := core.Validate(&in); err != nil {
		return core.Category{}, err
	}

	var category core.Category
	err := s.store.InTx(ctx, func(q *storage.Queries) error {
		user, err := s.identity.Resolve(ctx, q, p)
		if err != nil {
			return err
		}
		if err := checkCategoryName(ctx, q, user.ID, in.Name); err != nil {
			return err
		}
		category, err = q.CreateCategory(ctx, storage.CreateCategoryParams{
			UserID: user.ID,
			Name:   in.Name,
			Color:  in.Color,
		})
		return categoryWriteError(err, "create")
	})
	if err != nil {
		return core.Category{}, err
	}
	s.events.emit(ctx, amqp.ResourceCategory, amqp.ActionCreated, category.ID, category.UserID)
	return category, nil
}

func (s *CategoryService) Get(ctx context.Context, p core.Principal, id int64) (core.Category, error) {
	var category core.Category
	err := s.store.InTx(ctx, func(q *storage.Queries) error {
		user, err := s.identity.Resolve(ctx, q, p)
		if err != nil {
			return err
		}
		category, err = loadCategory(ctx, q, user, id)
		return err
	})
	return category, err
}

func (s *CategoryService) List(ctx context.Context, p core.Principal) ([]core.Category, error) {
	var categories []core.Category
	err := s.store.InTx(ctx, func(q *storage.Queries) error {
		user, err := s.identity.Resolve(ctx, q, p)
		if err != nil {
			return err
		}
		categories, err = q.ListCategoriesByUser(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("list categories: %w", err)
		}
		return nil
	})
	return categories, err
}

func (s *CategoryService) Update(ctx context.Context, p core.Principal, id int64, in core.CategoryInput) (core.Category, error) {
	in.Normalize()
	if err := core.Validate(&in); err != nil {
		return core.Category{}, err
	}

	var category core.Category
	err := s.store.InTx(ctx, func(q *storage.Queries) error {
		user, err := s.identity.Resolve(ctx, q, p)
		if err != nil {
			return err
		}
		current, err := loadCategory(ctx, q, user, id)
		if err != nil {
			return err
		}
		if in.Name != current.Name {
			if err := checkCategoryName(ctx, q, user.ID, in.Name); err != nil {
				return err
			}
		}
		category, err = q.UpdateCategory(ctx, storage.UpdateCategoryParams{
			ID:    id,
			Name:  in.Name,
			Color: in.Color,
		})
		if errors.Is(err, storage.ErrNotFound) {
			return core.NotFound(core.EntityCategory, id)
		}
		return categoryWriteError(err, "update")
	})
	if err != nil {
		return core.Category{}, err
	}
	s.events.emit(ctx, amqp.ResourceCategory, amqp.ActionUpdated, category.ID, category.UserID)
	return category, nil
}

// Delete removes the category together with its budgets and transactions.
func (s *CategoryService) Delete(ctx context.Context, p core.Principal, id int64) error {
	var user core.User
	err := s.store.InTx(ctx, func(q *storage.Queries) error {
		var err error
		if user, err = s.identity.Resolve(ctx, q, p); err != nil {
			return err
		}
		if _, err := loadCategory(ctx, q, user, id); err != nil {
			return err
		}
		if err := q.DeleteCategory(ctx, id); err != nil {
			return notFoundOr(err, core.EntityCategory, id, "delete")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.events.emit(ctx, amqp.ResourceCategory, amqp.ActionDeleted, id, user.ID)
	return nil
}

func checkCategoryName(ctx context.Context, q *storage.Queries, userID int64, name string) error {
	exists, err := q.CategoryNameExists(ctx, userID, name)
	if err != nil {
		return fmt.Errorf("check category name: %w", err)
	}
	if exists {
		return core.Conflict(core.EntityCategory, duplicateCategoryName)
	}
	return nil
}

func categoryWriteError(err error, verb string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrUniqueViolation):
		return core.Conflict(core.EntityCategory, duplicateCategoryName)
	default:
		return fmt.Errorf("%s category: %w", verb, err)
	}
}
