package model

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a referenced transaction, account or project
// does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError reports bad input: a non-positive amount, a missing
// selection, an unknown account. It is never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Invalid builds a ValidationError.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// NoCapitalError is returned when no investor holds positive capital in the
// project being distributed.
type NoCapitalError struct {
	ProjectID string
}

func (e *NoCapitalError) Error() string {
	return fmt.Sprintf("project %s has no contributed capital to distribute against", e.ProjectID)
}

// NoEquityError is returned when no investor holds transferable equity in
// the source project.
type NoEquityError struct {
	ProjectID string
}

func (e *NoEquityError) Error() string {
	return fmt.Sprintf("project %s has no transferable equity", e.ProjectID)
}

// AmbiguousBatchError is returned when a multi-leg batch matches neither the
// distribution nor the equity-move shape, so its legs cannot be edited
// together safely.
type AmbiguousBatchError struct {
	BatchID string
	Legs    int
}

func (e *AmbiguousBatchError) Error() string {
	return fmt.Sprintf("batch %s (%d legs) is neither a distribution nor an equity move", e.BatchID, e.Legs)
}

// StoreWriteError wraps a failed store write. The whole batch is treated as
// failed; nothing from it remains in the store.
type StoreWriteError struct {
	Op      string
	BatchID string
	Err     error
}

func (e *StoreWriteError) Error() string {
	if e.BatchID == "" {
		return fmt.Sprintf("store %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store %s (batch %s): %v", e.Op, e.BatchID, e.Err)
}

func (e *StoreWriteError) Unwrap() error { return e.Err }
