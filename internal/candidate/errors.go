package candidate

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an operation references a candidate id that
// does not exist in the store.
var ErrNotFound = errors.New("candidate not found")

// ErrConflict is returned when a concurrent update is detected at the
// per-record boundary. The in-memory stores cannot produce it; the postgres
// store retries the upsert once and surfaces it if the race repeats.
var ErrConflict = errors.New("concurrent update conflict")

// ValidationError marks malformed or missing required input. It is surfaced
// synchronously to the caller and never silently defaulted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for the given field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
