package engine

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrValidation        = errors.New("validation failed")
	ErrConflict          = errors.New("appointment was modified concurrently")
	ErrDownstream        = errors.New("downstream failure")
)

// ValidationError matches ErrValidation with errors.Is.
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

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

var ErrNothingToUpdate error = &ValidationError{Reason: "nothing to update"}

func downstream(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrDownstream, err)
}
