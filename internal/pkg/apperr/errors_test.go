// internal/pkg/apperr/errors_test.go
package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	validation := NewValidation("quantity", "must be positive")
	notFound := NewNotFound("batch", 7)
	conflict := NewConflict("record movement", 3, errors.New("database is locked"))

	assert.True(t, IsValidation(validation))
	assert.False(t, IsValidation(notFound))

	assert.True(t, IsNotFound(notFound))
	assert.False(t, IsNotFound(conflict))

	assert.True(t, IsConflict(conflict))
	assert.False(t, IsConflict(validation))

	assert.False(t, IsValidation(nil))
	assert.False(t, IsNotFound(errors.New("plain")))
}

func TestClassificationThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("posting count: %w", NewValidation("status", "already posted"))
	assert.True(t, IsValidation(wrapped))

	deep := fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", NewNotFound("location", 3)))
	assert.True(t, IsNotFound(deep))
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "quantity: must be positive", NewValidation("quantity", "must be positive").Error())
	assert.Equal(t, "bad request", NewValidation("", "bad request").Error())

	assert.Equal(t, "batch 7 not found", NewNotFound("batch", 7).Error())
	assert.Equal(t, "supplier not found", NewNotFound("supplier", 0).Error())

	conflict := NewConflict("record movement", 3, errors.New("deadlock detected"))
	assert.Equal(t, "record movement: write conflict after 3 attempts, try again", conflict.Error())
	assert.EqualError(t, errors.Unwrap(conflict), "deadlock detected")
}
