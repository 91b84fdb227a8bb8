package entity

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed order input. It is returned before
// persistence and never results in a published event.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Reason
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// PersistenceError reports a failed durable write. The caller sees it
// synchronously; no event is published and no partial state is retained.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// TransportError reports interrupted event delivery. It triggers reconnect
// plus reconciliation and is not surfaced as a user-visible failure.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// SnapshotFetchError reports a failed or timed-out snapshot fetch. An
// aggregator receiving it keeps its last good state and retries on the next
// scheduled interval.
type SnapshotFetchError struct {
	Err error
}

func (e *SnapshotFetchError) Error() string {
	return fmt.Sprintf("snapshot fetch: %v", e.Err)
}

func (e *SnapshotFetchError) Unwrap() error { return e.Err }

// CartPersistenceError reports a corrupt or unreadable stored cart. The
// cart treats it as empty, never as fatal.
type CartPersistenceError struct {
	Err error
}

func (e *CartPersistenceError) Error() string {
	return fmt.Sprintf("cart persistence: %v", e.Err)
}

func (e *CartPersistenceError) Unwrap() error { return e.Err }

// ErrNotFound is returned by repositories when a record does not exist.
var ErrNotFound = errors.New("not found")
