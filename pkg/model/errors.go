package model

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the ledger. Callers classify with errors.Is.
var (
	ErrInvalidInput   = errors.New("ledger: invalid input")
	ErrStorageFailure = errors.New("ledger: storage failure")
)

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("ledger: invalid %s: %s", e.Field, e.Message)
}

// Unwrap makes every ValidationError match ErrInvalidInput.
func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// IsInvalidInput reports whether err was caused by caller-correctable input.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsStorageFailure reports whether err came from the underlying store.
func IsStorageFailure(err error) bool {
	return errors.Is(err, ErrStorageFailure)
}
