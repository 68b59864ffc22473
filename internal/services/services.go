// Package services implements the ownership-scoped operations on users,
// accounts, categories, budgets and transactions. Every method takes the
// caller as an explicit core.Principal and runs in one storage transaction.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"spendfy/internal/amqp"
	"spendfy/internal/cache"
	"spendfy/internal/core"
	"spendfy/internal/log"
	"spendfy/internal/storage"
)

// Store runs a unit of work in a transaction.
type Store interface {
	InTx(ctx context.Context, fn func(q *storage.Queries) error) error
}

// EventPublisher delivers domain events after commit.
type EventPublisher interface {
	Publish(ctx context.Context, evt amqp.ResourceEvent) error
}

// Identity resolves principals to users, caching lookups by email.
//
// A lookup runs inside a transaction that may have read a user a concurrent
// DeleteMe is removing. Every Forget bumps generation, and a lookup only
// populates the cache when no Forget happened since it started.
type Identity struct {
	users cache.Cache[core.User]

	mu         sync.Mutex
	generation uint64
}

func NewIdentity(size int, ttl time.Duration) (*Identity, *cache.LRUCache[core.User]) {
	lru := cache.NewLRUCache[core.User](size, ttl)
	return &Identity{users: lru}, lru
}

// Resolve returns the user behind p. Anonymous principals fail with
// Unauthenticated, unknown subjects with NotFound(User).
func (i *Identity) Resolve(ctx context.Context, q *storage.Queries, p core.Principal) (core.User, error) {
	if p.Anonymous() {
		return core.User{}, core.Unauthenticated()
	}
	if i.users != nil {
		if u, ok := i.users.Get(p.Subject); ok {
			return u, nil
		}
	}
	gen := i.begin()
	u, err := q.GetUserByEmail(ctx, p.Subject)
	if errors.Is(err, storage.ErrNotFound) {
		return core.User{}, core.UserNotFound()
	}
	if err != nil {
		return core.User{}, fmt.Errorf("resolve user: %w", err)
	}
	i.remember(p.Subject, u, gen)
	return u, nil
}

// Forget drops a cached identity and invalidates lookups in flight.
func (i *Identity) Forget(email string) {
	if i.users == nil {
		return
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	i.generation++
	i.users.Delete(email)
}

func (i *Identity) begin() uint64 {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.generation
}

// remember caches u unless a Forget ran after the lookup started at gen.
func (i *Identity) remember(email string, u core.User, gen uint64) {
	if i.users == nil {
		return
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.generation != gen {
		return
	}
	i.users.Set(email, u)
}

// Events publishes resource events. A nil publisher disables publishing and
// failures are logged, never returned.
type Events struct {
	publisher EventPublisher
	logger    *log.StructuredLogger
}

func NewEvents(publisher EventPublisher, logger *log.Logger) *Events {
	return &Events{publisher: publisher, logger: log.NewStructuredLogger(logger)}
}

func (e *Events) emit(ctx context.Context, resource, action string, id, userID int64) {
	if e == nil {
		return
	}
	e.logger.LogResourceChanged(ctx, action, resource, userID, id)

	if e.publisher == nil {
		return
	}
	if err := e.publisher.Publish(ctx, amqp.NewResourceEvent(resource, action, id, userID)); err != nil {
		e.logger.LogError(ctx, "Failed to publish resource event", err, log.ComponentAMQP, log.OpPublish,
			log.NewFields().WithResource(userID, resource, id))
	}
}

// base carries what every resource service needs.
type base struct {
	store    Store
	identity *Identity
	events   *Events
}

// loadOwned loads an entity and checks that user owns it.
func loadOwned[T any](entity string, id int64, user core.User, load func(int64) (T, error), owner func(T) int64) (T, error) {
	var zero T
	v, err := load(id)
	if errors.Is(err, storage.ErrNotFound) {
		return zero, core.NotFound(entity, id)
	}
	if err != nil {
		return zero, fmt.Errorf("load %s %d: %w", entity, id, err)
	}
	if owner(v) != user.ID {
		return zero, core.Forbidden(entity)
	}
	return v, nil
}

func loadAccount(ctx context.Context, q *storage.Queries, user core.User, id int64) (core.Account, error) {
	return loadOwned(core.EntityAccount, id, user,
		func(id int64) (core.Account, error) { return q.GetAccount(ctx, id) },
		func(a core.Account) int64 { return a.UserID })
}

func loadCategory(ctx context.Context, q *storage.Queries, user core.User, id int64) (core.Category, error) {
	return loadOwned(core.EntityCategory, id, user,
		func(id int64) (core.Category, error) { return q.GetCategory(ctx, id) },
		func(c core.Category) int64 { return c.UserID })
}

func loadBudget(ctx context.Context, q *storage.Queries, user core.User, id int64) (core.Budget, error) {
	return loadOwned(core.EntityBudget, id, user,
		func(id int64) (core.Budget, error) { return q.GetBudget(ctx, id) },
		func(b core.Budget) int64 { return b.UserID })
}

func loadTransaction(ctx context.Context, q *storage.Queries, user core.User, id int64) (core.Transaction, error) {
	return loadOwned(core.EntityTransaction, id, user,
		func(id int64) (core.Transaction, error) { return q.GetTransaction(ctx, id) },
		func(t core.Transaction) int64 { return t.UserID })
}

// notFoundOr turns a storage miss during a write into NotFound(entity, id).
func notFoundOr(err error, entity string, id int64, verb string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return core.NotFound(entity, id)
	}
	return fmt.Errorf("%s %s: %w", verb, entity, err)
}
