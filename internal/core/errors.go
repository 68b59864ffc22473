package core

import (
	"errors"
	"fmt"
)

const (
	EntityUser        = "User"
	EntityAccount     = "Account"
	EntityCategory    = "Category"
	EntityBudget      = "Budget"
	EntityTransaction = "Transaction"
)

// Error kinds. Match with errors.Is.
var (
	ErrValidation           = errors.New("validation error")
	ErrInvalidRange         = errors.New("invalid date range")
	ErrDuplicateIdentity    = errors.New("duplicate identity")
	ErrConflict             = errors.New("conflict")
	ErrNotFound             = errors.New("not found")
	ErrForbidden            = errors.New("forbidden")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrUnauthenticated      = errors.New("unauthenticated")
)

// Error is a business-rule failure carrying a message meant for the client.
type Error struct {
	Kind    error
	Entity  string
	Message string
	// Fields maps JSON field names to messages for validation failures.
	Fields map[string]string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func NotFound(entity string, id int64) *Error {
	return &Error{
		Kind:    ErrNotFound,
		Entity:  entity,
		Message: fmt.Sprintf("%s not found with id: %d", entity, id),
	}
}

// UserNotFound is returned when the caller's identity does not resolve.
func UserNotFound() *Error {
	return &Error{Kind: ErrNotFound, Entity: EntityUser, Message: "User not found"}
}

// Forbidden reports an ownership mismatch.
func Forbidden(entity string) *Error {
	return &Error{
		Kind:    ErrForbidden,
		Entity:  entity,
		Message: entity + " does not belong to authenticated user",
	}
}

func Conflict(entity, message string) *Error {
	return &Error{Kind: ErrConflict, Entity: entity, Message: message}
}

func DuplicateIdentity() *Error {
	return &Error{Kind: ErrDuplicateIdentity, Entity: EntityUser, Message: "Email already registered"}
}

func AuthenticationFailed() *Error {
	return &Error{Kind: ErrAuthenticationFailed, Entity: EntityUser, Message: "Invalid email or password"}
}

func Unauthenticated() *Error {
	return &Error{Kind: ErrUnauthenticated, Message: "Authentication required"}
}

func InvalidRange() *Error {
	return &Error{Kind: ErrInvalidRange, Entity: EntityBudget, Message: "End date cannot be before start date"}
}

func Validation(message string, fields map[string]string) *Error {
	return &Error{Kind: ErrValidation, Message: message, Fields: fields}
}
