package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_ChainHelpers(t *testing.T) {
	base := NewNotFoundError("household 7")
	wrapped := fmt.Errorf("load: %w", base)

	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsValidation(wrapped))
	assert.Equal(t, http.StatusNotFound, StatusOf(wrapped))
	assert.Equal(t, "NOT_FOUND: household 7 not found", base.Error())
}

func TestAppError_Cause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := NewDatabaseError("insert household", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, http.StatusInternalServerError, err.Status())
}

func TestStatusOf_PlainError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, StatusOf(stderrors.New("boom")))
	assert.Equal(t, http.StatusInternalServerError, (&AppError{}).Status())
}
