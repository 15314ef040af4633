package llm

import (
	"context"
	"errors"

	"github.com/avelkey/paperflow/types"
)

// NewRateLimitedError builds a retryable MODEL_RATE_LIMITED error.
func NewRateLimitedError(provider string, cause error) *types.Error {
	return types.NewError(types.ErrModelRateLimited, "provider rate limited").
		WithProvider(provider).
		WithCause(cause)
}

// NewTimeoutError builds a retryable MODEL_TIMEOUT error.
func NewTimeoutError(provider string, cause error) *types.Error {
	return types.NewError(types.ErrModelTimeout, "provider call exceeded deadline").
		WithProvider(provider).
		WithCause(cause)
}

// NewInvalidResponseError builds a retryable MODEL_INVALID_RESPONSE error.
func NewInvalidResponseError(provider, detail string) *types.Error {
	return types.NewError(types.ErrModelInvalidResponse, detail).
		WithProvider(provider)
}

// MapContextError converts context cancellation/deadline errors into the
// model error taxonomy. A deadline hit is a timeout; an explicit cancel
// passes through unchanged so callers can distinguish session aborts.
func MapContextError(provider string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return NewTimeoutError(provider, err)
	default:
		return err
	}
}
