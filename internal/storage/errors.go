package storage

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	pgUniqueViolation    = "23505"
	pgExclusionViolation = "23P01"

	// overlapMarker is raised by the SQLite budget triggers and names the
	// Postgres exclusion constraint.
	overlapMarker = "budget_overlap"
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrUniqueViolation  = errors.New("unique constraint violation")
	ErrOverlapViolation = errors.New("budget period overlaps an existing budget")
)

// classify maps driver errors onto the package sentinels. The original error
// stays in the chain.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return errors.Join(ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return errors.Join(ErrUniqueViolation, err)
		case pgExclusionViolation:
			return errors.Join(ErrOverlapViolation, err)
		}
		return err
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return errors.Join(ErrUniqueViolation, err)
		case sqlite3.SQLITE_CONSTRAINT_TRIGGER:
			if strings.Contains(liteErr.Error(), overlapMarker) {
				return errors.Join(ErrOverlapViolation, err)
			}
		}
	}
	if strings.Contains(err.Error(), overlapMarker) {
		return errors.Join(ErrOverlapViolation, err)
	}
	return err
}
