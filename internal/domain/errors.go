package domain

import (
	"errors"
	"fmt"
)

// The service layer collapses every failure into this taxonomy so handlers
// can map errors to responses without inspecting storage internals.

// ValidationError reports a malformed or missing input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError builds a field-level validation failure.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ConflictError reports a duplicate unique credential. Field names the
// specific duplicate so callers can highlight the offending input.
type ConflictError struct {
	Field   string
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// ForbiddenError covers refusals that are not credential failures: an
// already-consumed single-use credential or an inactive account.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }

// LockedError reports an active admin lockout window.
type LockedError struct {
	RemainingSeconds int64
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("login temporarily locked, retry in %d seconds", e.RemainingSeconds)
}

// StorageError wraps a persistence failure. The wrapped error stays
// server-side; callers only see a generic retryable failure.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string { return "storage failure" }
func (e *StorageError) Unwrap() error { return e.Err }

var (
	// ErrInvalidCredentials deliberately does not distinguish "not found"
	// from "wrong password".
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken is the single opaque verdict for every token
	// verification failure: expired, malformed, tampered or wrong
	// algorithm.
	ErrInvalidToken = errors.New("invalid or expired token")
)
