package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewErrorRetryableByCode(t *testing.T) {
	tests := []struct {
		code      ErrorCode
		retryable bool
	}{
		{ErrModelRateLimited, true},
		{ErrModelTimeout, true},
		{ErrModelInvalidResponse, true},
		{ErrTemplate, false},
		{ErrDependencyNotReady, false},
		{ErrExtraction, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			err := NewError(tt.code, "boom")
			assert.Equal(t, tt.retryable, err.Retryable)
			assert.Equal(t, tt.retryable, IsRetryable(err))
		})
	}
}

func TestErrorBuilders(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewError(ErrModelTimeout, "deadline hit").
		WithCause(cause).
		WithRole(RoleResults).
		WithProvider("openai-compatible")

	assert.Equal(t, RoleResults, err.Role)
	assert.Equal(t, "openai-compatible", err.Provider)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "MODEL_TIMEOUT")
	assert.Contains(t, err.Error(), "connection reset")
}

func TestWithRetryableOverride(t *testing.T) {
	err := NewError(ErrModelTimeout, "give up").WithRetryable(false)
	assert.False(t, IsRetryable(err))
}

func TestGetErrorCodeThroughWrapping(t *testing.T) {
	inner := NewError(ErrModelRateLimited, "throttled")
	wrapped := fmt.Errorf("failed after 4 attempts: %w", inner)

	require.Equal(t, ErrModelRateLimited, GetErrorCode(wrapped))
	assert.True(t, IsModelError(wrapped))
	assert.True(t, IsRetryable(wrapped))
}

func TestGetErrorCodePlainError(t *testing.T) {
	assert.Equal(t, ErrorCode(""), GetErrorCode(errors.New("plain")))
	assert.False(t, IsModelError(errors.New("plain")))
	assert.False(t, IsRetryable(nil))
}
