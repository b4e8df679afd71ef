package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithInternalKeepsIdentity(t *testing.T) {
	cause := errors.New("row missing")
	err := ErrNotFound.WithInternal(cause)

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.Equal(t, "Resource not found: row missing", err.Error())
	assert.Nil(t, ErrNotFound.Internal, "sentinel must not be mutated")
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	wrapped := fmt.Errorf("service: %w", ErrConflict)
	assert.Same(t, ErrConflict, FromError(wrapped))

	plain := FromError(errors.New("disk on fire"))
	require.NotNil(t, plain)
	assert.Equal(t, http.StatusInternalServerError, plain.StatusCode)
	assert.Equal(t, ErrInternalServer.Code, plain.Code)
}

func TestNewBadRequest(t *testing.T) {
	err := NewBadRequest("title is too long")
	assert.Equal(t, "title is too long", err.Message)
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.True(t, errors.Is(err, ErrBadRequest))
}

func TestNilAppError(t *testing.T) {
	var err *AppError
	assert.Equal(t, "<nil>", err.Error())
	assert.Nil(t, err.Unwrap())
	assert.Nil(t, err.WithInternal(errors.New("x")))
}
