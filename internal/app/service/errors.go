package service

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrMemoNotFound means the memo does not exist.
	ErrMemoNotFound = errors.New("memo not found")
	// ErrMemoAccessDenied means the memo exists but the viewer may not see or change it.
	ErrMemoAccessDenied = errors.New("memo access denied")
	// ErrStoreUnavailable wraps any failure of the relational store. Callers may retry.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func newValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func storeError(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
