// internal/pkg/apperr/errors.go
package apperr

import (
	"errors"
	"fmt"
)

// ValidationError reports a request rejected before any write, with the
// offending field when known.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// NewValidation creates a validation error for a field
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError reports a reference to a nonexistent resource.
type NotFoundError struct {
	Resource string
	ID       uint
}

func (e *NotFoundError) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// NewNotFound creates a not-found error for a resource
func NewNotFound(resource string, id uint) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ConflictError reports a concurrent write collision that survived the
// bounded retry loop. The operation left no partial state; callers may retry.
type ConflictError struct {
	Operation string
	Attempts  int
	Err       error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: write conflict after %d attempts, try again", e.Operation, e.Attempts)
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}

// NewConflict creates a conflict error for an operation
func NewConflict(operation string, attempts int, err error) *ConflictError {
	return &ConflictError{Operation: operation, Attempts: attempts, Err: err}
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is a NotFoundError
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsConflict reports whether err is a ConflictError
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
