package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when an update, delete or lookup names an
	// identifier the store does not hold.
	ErrNotFound = errors.New("not found")

	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrNumberConflict means a generated invoice number is already taken.
	ErrNumberConflict = errors.New("invoice number conflict")
)

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// CascadeError reports a multi-step delete that stopped part way.
type CascadeError struct {
	Completed []DeleteStep
	Pending   []DeleteStep
	Err       error
}

func (e *CascadeError) Error() string {
	pending := make([]string, 0, len(e.Pending))
	for _, s := range e.Pending {
		pending = append(pending, s.String())
	}
	return fmt.Sprintf("cascade stopped after %d of %d steps (pending: %s): %v",
		len(e.Completed), len(e.Completed)+len(e.Pending), strings.Join(pending, ", "), e.Err)
}

func (e *CascadeError) Unwrap() error { return e.Err }
