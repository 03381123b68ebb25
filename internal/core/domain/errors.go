package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is the root of every "referenced id does not resolve" error.
var ErrNotFound = errors.New("not found")

var (
	ErrTimeLogNotFound = fmt.Errorf("time log %w", ErrNotFound)
	ErrInvoiceNotFound = fmt.Errorf("invoice %w", ErrNotFound)
	ErrProjectNotFound = fmt.Errorf("project %w", ErrNotFound)
)

// ErrAlreadyInvoiced is returned when a selection contains logs already billed
// by another invoice, or when a billed log would be deleted.
var ErrAlreadyInvoiced = errors.New("time log already invoiced")

var ErrInvalidTransition = errors.New("invalid status transition")

// ErrConflict is returned when an edit kept losing to concurrent writes of the
// same record.
var ErrConflict = errors.New("record changed concurrently, retry the request")

var ErrUnauthorized = errors.New("unauthorized")

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// NewValidationError is a shorthand for &ValidationError{Field: field, Message: msg}.
func NewValidationError(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// MixedClientError is returned when a log selection spans more than one client.
type MixedClientError struct {
	Clients []string
}

func (e *MixedClientError) Error() string {
	return "time logs belong to more than one client: " + strings.Join(e.Clients, ", ")
}

// PersistenceError wraps a failure of the underlying store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return "persistence: " + e.Op + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Persistence wraps err as a PersistenceError unless it is nil or already a
// not-found error, which callers must be able to match directly.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return err
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
