package services

import (
	"context"
	"errors"
	"fmt"

	"spendfy/internal/amqp"
	"spendfy/internal/core"
	"spendfy/internal/storage"
)

const duplicateAccountName = "An account with this name already exists"

type AccountService struct {
	base
}

func NewAccountService(store Store, identity *Identity, events *Events) *AccountService {
	return &AccountService{base{store: store, identity: identity, events: events}}
}

func (s *AccountService) Create(ctx context.Context, p core.Principal, in core.AccountInput) (core.Account, error) {
	in.Normalize()
	if err := core.Validate(&in); err != nil {
		return core.Account{}, err
	}

	var account core.Account
	err := s.store.InTx(ctx, func(q *storage.Queries) error {
		user, err := s.identity.Resolve(ctx, q, p)
		if err != nil {
			return err
		}
		if err := checkAccountName(ctx, q, user.ID, in.Name); err != nil {
			return err
		}
		account, err = q.CreateAccount(ctx, storage.CreateAccountParams{
			UserID:         user.ID,
			Name:           in.Name,
			Type:           in.Type,
			InitialBalance: *in.InitialBalance,
		})
		return accountWriteError(err, "create")
	})
	if err != nil {
		return core.Account{}, err
	}
	s.events.emit(ctx, amqp.ResourceAccount, amqp.ActionCreated, account.ID, account.UserID)
	return account, nil
}

func (s *AccountService) Get(ctx context.Context, p core.Principal, id int64) (core.Account, error) {
	var account core.Account
	err := s.store.InTx(ctx, func(q *storage.Queries) error {
		user, err := s.identity.Resolve(ctx, q, p)
		if err != nil {
			return err
		}
		account, err = loadAccount(ctx, q, user, id)
		return err
	})
	return account, err
}

// List returns the caller's accounts in creation order.
func (s *AccountService) List(ctx context.Context, p core.Principal) ([]core.Account, error) {
	var accounts []core.Account
	err := s.store.InTx(ctx, func(q *storage.Queries) error {
		user, err := s.identity.Resolve(ctx, q, p)
		if err != nil {
			return err
		}
		accounts, err = q.ListAccountsByUser(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("list accounts: %w", err)
		}
		return nil
	})
	return accounts, err
}

func (s *AccountService) Update(ctx context.Context, p core.Principal, id int64, in core.AccountInput) (core.Account, error) {
	in.Normalize()
	if err := core.Validate(&in); err != nil {
		return core.Account{}, err
	}

	var account core.Account
	err := s.store.InTx(ctx, func(q *storage.Queries) error {
		user, err := s.identity.Resolve(ctx, q, p)
		if err != nil {
			return err
		}
		current, err := loadAccount(ctx, q, user, id)
		if err != nil {
			return err
		}
		if in.Name != current.Name {
			if err := checkAccountName(ctx, q, user.ID, in.Name); err != nil {
				return err
			}
		}
		account, err = q.UpdateAccount(ctx, storage.UpdateAccountParams{
			ID:             id,
			Name:           in.Name,
			Type:           in.Type,
			InitialBalance: *in.InitialBalance,
		})
		if errors.Is(err, storage.ErrNotFound) {
			return core.NotFound(core.EntityAccount, id)
		}
		return accountWriteError(err, "update")
	})
	if err != nil {
		return core.Account{}, err
	}
	s.events.emit(ctx, amqp.ResourceAccount, amqp.ActionUpdated, account.ID, account.UserID)
	return account, nil
}

// Delete removes the account and, by cascade, its transactions.
func (s *AccountService) Delete(ctx context.Context, p core.Principal, id int64) error {
	var user core.User
	err := s.store.InTx(ctx, func(q *storage.Queries) error {
		var err error
		if user, err = s.identity.Resolve(ctx, q, p); err != nil {
			return err
		}
		if _, err := loadAccount(ctx, q, user, id); err != nil {
			return err
		}
		if err := q.DeleteAccount(ctx, id); err != nil {
			return notFoundOr(err, core.EntityAccount, id, "delete")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.events.emit(ctx, amqp.ResourceAccount, amqp.ActionDeleted, id, user.ID)
	return nil
}

func checkAccountName(ctx context.Context, q *storage.Queries, userID int64, name string) error {
	exists, err := q.AccountNameExists(ctx, userID, name)
	if err != nil {
		return fmt.Errorf("check account name: %w", err)
	}
	if exists {
		return core.Conflict(core.EntityAccount, duplicateAccountName)
	}
	return nil
}

func accountWriteError(err error, verb string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrUniqueViolation):
		return core.Conflict(core.EntityAccount, duplicateAccountName)
	default:
		return fmt.Errorf("%s account: %w", verb, err)
	}
}
