package models

import (
	"errors"
	"fmt"
)

// ErrValidation marks a rejected input: negative amounts, bad ids, illegal transitions.
var ErrValidation = errors.New("validation failed")

// ErrPersistence marks an I/O or parse failure at a storage boundary.
var ErrPersistence = errors.New("persistence failed")

// ErrNotFound indicates the requested entity does not exist in the collection.
var ErrNotFound = errors.New("not found")

var (
	ErrInsufficientStock   = fmt.Errorf("%w: insufficient stock", ErrValidation)
	ErrUnknownSupplier     = fmt.Errorf("%w: unknown supplier", ErrValidation)
	ErrInvalidStatus       = fmt.Errorf("%w: invalid status", ErrValidation)
	ErrInvalidTransition   = fmt.Errorf("%w: invalid status transition", ErrValidation)
	ErrNotBatchTracked     = fmt.Errorf("%w: product is not batch tracked", ErrValidation)
	ErrBatchTracked        = fmt.Errorf("%w: product quantity is derived from its batches", ErrValidation)
	ErrUnsupportedFormat   = fmt.Errorf("%w: unsupported format", ErrPersistence)
	ErrEmptyDataset        = fmt.Errorf("%w: no data", ErrPersistence)
	ErrMultipleCollections = fmt.Errorf("%w: format holds a single collection", ErrPersistence)
)

// FieldError describes a single invalid field in a payload.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrValidation.Error(), e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrValidation.
func (e *FieldError) Unwrap() error { return ErrValidation }

// InvalidField builds a FieldError.
func InvalidField(field, reason string, args ...any) error {
	if len(args) > 0 {
		reason = fmt.Sprintf(reason, args...)
	}
	return &FieldError{Field: field, Reason: reason}
}

// PersistenceError wraps an underlying I/O or decode failure with the operation and path.
func PersistenceError(op, path string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", ErrPersistence, op, path, err)
}
