package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindsMapToStatus(t *testing.T) {
	cases := []struct {
		err    *AppError
		code   string
		status int
	}{
		{Validation("bad", nil), CodeValidation, http.StatusBadRequest},
		{InvalidTransition("already accepted"), CodeInvalidTransition, http.StatusConflict},
		{Persistence("store down", nil), CodePersistence, http.StatusServiceUnavailable},
		{NotFound("Chat", nil), CodeNotFound, http.StatusNotFound},
		{Forbidden("no", nil), CodeForbidden, http.StatusForbidden},
		{Unauthorized("who", nil), CodeUnauthorized, http.StatusUnauthorized},
		{TooManyRequests("slow down"), CodeTooManyRequests, http.StatusTooManyRequests},
		{Internal("boom", nil), CodeInternal, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.code, tc.err.Code)
		assert.Equal(t, tc.status, tc.err.Status)
	}
}

func TestIsUnwrapsWrappedErrors(t *testing.T) {
	cause := fmt.Errorf("deadline exceeded")
	err := fmt.Errorf("listing trades: %w", Persistence("Failed to list trade requests", cause))

	assert.True(t, Is(err, CodePersistence))
	assert.False(t, Is(err, CodeNotFound))
	assert.False(t, Is(cause, CodePersistence))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Chat not found", NotFound("Chat", nil).Message)
}
