package services

import (
	"context"
	"errors"
	"fmt"

	"spendfy/internal/amqp"
	"spendfy/internal/auth"
	"spendfy/internal/core"
	"spendfy/internal/storage"
)

// TokenType is the scheme returned with every issued token.
const TokenType = "Bearer"

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token string
	Type  string
	User  core.User
}

type AuthService struct {
	base
	tokens *auth.Issuer
	hasher *auth.Hasher
}

func NewAuthService(store Store, identity *Identity, events *Events, tokens *auth.Issuer, hasher *auth.Hasher) *AuthService {
	return &AuthService{
		base:   base{store: store, identity: identity, events: events},
		tokens: tokens,
		hasher: hasher,
	}
}

// Register creates an active user and returns a session for it.
func (s *AuthService) Register(ctx context.Context, in core.RegisterInput) (AuthResult, error) {
	in.Normalize()
	if err := core.Validate(&in); err != nil {
		return AuthResult{}, err
	}

	// hashed before the transaction so the write lock is not held during bcrypt
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return AuthResult{}, err
	}

	var user core.User
	err = s.store.InTx(ctx, func(q *storage.Queries) error {
		exists, err := q.UserEmailExists(ctx, in.Email)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if exists {
			return core.DuplicateIdentity()
		}
		user, err = q.CreateUser(ctx, storage.CreateUserParams{
			Name:         in.Name,
			Email:        in.Email,
			PasswordHash: hash,
			Status:       core.UserActive,
		})
		if errors.Is(err, storage.ErrUniqueViolation) {
			return core.DuplicateIdentity()
		}
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return AuthResult{}, err
	}

	s.events.emit(ctx, amqp.ResourceUser, amqp.ActionCreated, user.ID, user.ID)
	return s.session(user)
}

// Login verifies credentials. Unknown email, wrong password and inactive
// user all fail with the same AuthenticationFailed error.
func (s *AuthService) Login(ctx context.Context, in core.LoginInput) (AuthResult, error) {
	in.Normalize()
	if err := core.Validate(&in); err != nil {
		return AuthResult{}, err
	}

	var (
		user  core.User
		found bool
	)
	err := s.store.InTx(ctx, func(q *storage.Queries) error {
		u, err := q.GetUserByEmail(ctx, in.Email)
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		user, found = u, true
		return nil
	})
	if err != nil {
		return AuthResult{}, err
	}

	if !found {
		s.hasher.CompareDummy(in.Password)
		return AuthResult{}, core.AuthenticationFailed()
	}
	if !s.hasher.Compare(user.PasswordHash, in.Password) || !user.Active() {
		return AuthResult{}, core.AuthenticationFailed()
	}
	return s.session(user)
}

// Authenticate turns a bearer token into a principal. Invalid tokens yield
// an anonymous principal.
func (s *AuthService) Authenticate(token string) core.Principal {
	return core.Principal{Subject: s.tokens.Verify(token)}
}

// Me returns the caller's profile.
func (s *AuthService) Me(ctx context.Context, p core.Principal) (core.User, error) {
	var user core.User
	err := s.store.InTx(ctx, func(q *storage.Queries) (err error) {
		user, err = s.identity.Resolve(ctx, q, p)
		return err
	})
	return user, err
}

// DeleteMe removes the caller and everything they own.
func (s *AuthService) DeleteMe(ctx context.Context, p core.Principal) error {
	var user core.User
	err := s.store.InTx(ctx, func(q *storage.Queries) error {
		var err error
		if user, err = s.identity.Resolve(ctx, q, p); err != nil {
			return err
		}
		if err := q.DeleteUser(ctx, user.ID); err != nil {
			return notFoundOr(err, core.EntityUser, user.ID, "delete")
		}
		return nil
	})
	s.identity.Forget(p.Subject)
	if err != nil {
		return err
	}

	s.events.emit(ctx, amqp.ResourceUser, amqp.ActionDeleted, user.ID, user.ID)
	return nil
}

func (s *AuthService) session(user core.User) (AuthResult, error) {
	token, err := s.tokens.Issue(user.Email)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{Token: token, Type: TokenType, User: user}, nil
}
