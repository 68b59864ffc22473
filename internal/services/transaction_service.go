package services

import (
	"context"
	"errors"
	"fmt"

	"spendfy/internal/amqp"
	"spendfy/internal/core"
	"spendfy/internal/storage"
)

type TransactionService struct {
	base
}

func NewTransactionService(store Store, identity *Identity, events *Events) *TransactionService {
	return &TransactionService{base{store: store, identity: identity, events: events}}
}

// Create records a transaction against an account and a category, both of
// which must belong to the caller.
func (s *TransactionService) Create(ctx context.Context, p core.Principal, in core.TransactionInput) (core.Transaction, error) {
	in.Normalize()
	if err := core.Validate(&in); err != nil {
		return core.Transaction{}, err
	}

	var txn core.Transaction
	err := s.store.InTx(ctx, func(q *storage.Queries) error {
		user, err := s.identity.Resolve(ctx, q, p)
		if err != nil {
			return err
		}
		if err := checkReferences(ctx, q, user, in); err != nil {
			return err
		}
		txn, err = q.CreateTransaction(ctx, storage.CreateTransactionParams{
			UserID:      user.ID,
			AccountID:   *in.AccountID,
			CategoryID:  *in.CategoryID,
			Type:        in.Type,
			Date:        *in.Date,
			Amount:      *in.Amount,
			Description: in.Description,
			Note:        in.Note,
			Status:      in.Status,
		})
		if err != nil {
			return fmt.Errorf("create transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return core.Transaction{}, err
	}
	s.events.emit(ctx, amqp.ResourceTransaction, amqp.ActionCreated, txn.ID, txn.UserID)
	return txn, nil
}

func (s *TransactionService) Get(ctx context.Context, p core.Principal, id int64) (core.Transaction, error) {
	var txn core.Transaction
	err := s.store.InTx(ctx, func(q *storage.Queries) error {
		user, err := s.identity.Resolve(ctx, q, p)
		if err != nil {
			return err
		}
		txn, err = loadTransaction(ctx, q, user, id)
		return err
	})
	return txn, err
}

// List returns the caller's transactions narrowed by f.
func (s *TransactionService) List(ctx context.Context, p core.Principal, f core.TransactionFilter) ([]core.Transaction, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	var txns []core.Transaction
	err := s.store.InTx(ctx, func(q *storage.Queries) error {
		user, err := s.identity.Resolve(ctx, q, p)
		if err != nil {
			return err
		}
		txns, err = q.ListTransactions(ctx, user.ID, f)
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		return nil
	})
	return txns, err
}

func (s *TransactionService) Update(ctx context.Context, p core.Principal, id int64, in core.TransactionInput) (core.Transaction, error) {
	in.Normalize()
	if err := core.Validate(&in); err != nil {
		return core.Transaction{}, err
	}

	var txn core.Transaction
	err := s.store.InTx(ctx, func(q *storage.Queries) error {
		user, err := s.identity.Resolve(ctx, q, p)
		if err != nil {
			return err
		}
		if _, err := loadTransaction(ctx, q, user, id); err != nil {
			return err
		}
		if err := checkReferences(ctx, q, user, in); err != nil {
			return err
		}
		txn, err = q.UpdateTransaction(ctx, storage.UpdateTransactionParams{
			ID:          id,
			AccountID:   *in.AccountID,
			CategoryID:  *in.CategoryID,
			Type:        in.Type,
			Date:        *in.Date,
			Amount:      *in.Amount,
			Description: in.Description,
			Note:        in.Note,
			Status:      in.Status,
		})
		if errors.Is(err, storage.ErrNotFound) {
			return core.NotFound(core.EntityTransaction, id)
		}
		if err != nil {
			return fmt.Errorf("update transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return core.Transaction{}, err
	}
	s.events.emit(ctx, amqp.ResourceTransaction, amqp.ActionUpdated, txn.ID, txn.UserID)
	return txn, nil
}

func (s *TransactionService) Delete(ctx context.Context, p core.Principal, id int64) error {
	var user core.User
	err := s.store.InTx(ctx, func(q *storage.Queries) error {
		var err error
		if user, err = s.identity.Resolve(ctx, q, p); err != nil {
			return err
		}
		if _, err := loadTransaction(ctx, q, user, id); err != nil {
			return err
		}
		if err := q.DeleteTransaction(ctx, id); err != nil {
			return notFoundOr(err, core.EntityTransaction, id, "delete")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.events.emit(ctx, amqp.ResourceTransaction, amqp.ActionDeleted, id, user.ID)
	return nil
}

// checkReferences validates the account first, then the category.
func checkReferences(ctx context.Context, q *storage.Queries, user core.User, in core.TransactionInput) error {
	if _, err := loadAccount(ctx, q, user, *in.AccountID); err != nil {
		return err
	}
	if _, err := loadCategory(ctx, q, user, *in.CategoryID); err != nil {
		return err
	}
	return nil
}
