package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProvider struct {
	calls int
}

func (p *countingProvider) Complete(ctx context.Context, req *Request) (*Response, error) {
	p.calls++
	return &Response{Content: "ok", Provider: p.Name()}, nil
}

func (p *countingProvider) Name() string { return "counting" }

func TestRateLimitedProviderDisabled(t *testing.T) {
	inner := &countingProvider{}
	p := NewRateLimitedProvider(inner, 0, 0)

	for i := 0; i < 10; i++ {
		_, err := p.Complete(context.Background(), &Request{})
		require.NoError(t, err)
	}
	assert.Equal(t, 10, inner.calls)
	assert.Equal(t, "counting", p.Name())
}

func TestRateLimitedProviderThrottles(t *testing.T) {
	inner := &countingProvider{}
	// 50 rps, burst 1: the second call must wait about 20ms.
	p := NewRateLimitedProvider(inner, 50, 1)

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := p.Complete(context.Background(), &Request{})
		require.NoError(t, err)
	}
	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, 30*time.Millisecond, "limiter did not delay calls")
	assert.Equal(t, 3, inner.calls)
}

func TestRateLimitedProviderCancelledWait(t *testing.T) {
	inner := &countingProvider{}
	p := NewRateLimitedProvider(inner, 0.001, 1)

	// Drain the single token.
	_, err := p.Complete(context.Background(), &Request{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = p.Complete(ctx, &Request{})
	require.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}

func TestApplyTimeout(t *testing.T) {
	ctx, cancel := ApplyTimeout(context.Background(), &Request{Timeout: 5 * time.Millisecond})
	defer cancel()
	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(5*time.Millisecond), deadline, 50*time.Millisecond)

	ctx, cancel = ApplyTimeout(context.Background(), &Request{})
	defer cancel()
	_, ok = ctx.Deadline()
	assert.False(t, ok)
}
