/*
errors.go - Centralized error types for the data-access engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Storage packages wrap driver errors in StorageError; builders report
  caller mistakes as ValidationError.

ERROR CATEGORIES:
  1. Validation errors - Required field missing, null on a NOT NULL column
  2. Storage errors    - Engine rejected the statement (busy, constraint, IO)

NOT FOUND:
  Absence is a normal result, not an error. Get returns ok=false, Update and
  Delete return false. Callers map that to their own semantics.

USAGE:
  if errors.Is(err, generic.ErrBusy) {
      // the caller owns the retry policy
  }

SEE ALSO:
  - query.go: Produces ValidationError and ErrNothingToUpdate
  - store/sqlite/errors.go: Classifies driver errors into StorageError
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is returned when a required field is missing or a
	// non-nullable column is given an explicit null.
	ErrValidation = errors.New("validation failed")

	// ErrNothingToUpdate is returned by BuildUpdate when the change-set has
	// no populated field. Repositories turn it into a false result.
	ErrNothingToUpdate = errors.New("nothing to update")

	// ErrStorage is the generic storage failure.
	ErrStorage = errors.New("storage failure")

	// ErrBusy is returned when the engine reports lock contention.
	ErrBusy = errors.New("storage busy")

	// ErrConstraint is returned when the engine rejects a row on a constraint.
	ErrConstraint = errors.New("constraint violation")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError names the offending field.
type ValidationError struct {
	Table  string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s.%s: %s", e.Table, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// StorageError wraps a driver error with the operation that failed.
// Kind is one of ErrStorage, ErrBusy or ErrConstraint.
type StorageError struct {
	Op    string
	Table string
	Kind  error
	Err   error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Table, e.Err)
}

// Unwrap exposes ErrStorage, the specific Kind and the driver error.
func (e *StorageError) Unwrap() []error {
	errs := []error{ErrStorage}
	if e.Kind != nil && e.Kind != ErrStorage {
		errs = append(errs, e.Kind)
	}
	return append(errs, e.Err)
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRetryable returns true if the error might succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrBusy)
}

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrConstraint)
}
