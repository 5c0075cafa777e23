package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	err := fmt.Errorf("create task: %w", Invalid("title", "must not be empty"))
	assert.True(t, IsValidation(err))
	assert.False(t, IsStorage(err))
	assert.EqualError(t, err, "create task: validation: title: must not be empty")
}

func TestStorageErrorUnwraps(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("save: %w", &StorageError{Op: "save", Err: cause})
	assert.True(t, IsStorage(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "storage save: disk full")
}
