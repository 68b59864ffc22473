package backend

import (
	"context"

	"spendfy/internal/amqp"
	"spendfy/internal/services"
	"spendfy/internal/storage"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult holds the opened store, the event client when AMQP is
// configured and reachable, and a cleanup releasing both.
type BackendResult struct {
	Store   *storage.Store
	Events  *amqp.Client
	Cleanup CleanupFunc
}

// Publisher returns the event client as a services.EventPublisher, or nil
// when events are disabled.
func (r *BackendResult) Publisher() services.EventPublisher {
	if r.Events == nil {
		return nil
	}
	return r.Events
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Postgres specific
	DatabaseURL string

	// Optional event publishing
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, PostgresBackend:
		return true
	default:
		return false
	}
}

// Dialect maps the backend to its SQL dialect.
func (bt BackendType) Dialect() storage.Dialect {
	if bt == PostgresBackend {
		return storage.DialectPostgres
	}
	return storage.DialectSQLite
}
