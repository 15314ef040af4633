package llm

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimitedProvider wraps a Provider with a token-bucket limiter so
// concurrent sessions cannot exceed the upstream request budget.
type RateLimitedProvider struct {
	inner   Provider
	limiter *rate.Limiter
}

// NewRateLimitedProvider wraps inner with a limiter of rps requests per
// second and the given burst. A non-positive rps disables limiting.
func NewRateLimitedProvider(inner Provider, rps float64, burst int) *RateLimitedProvider {
	var limiter *rate.Limiter
	if rps > 0 {
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return &RateLimitedProvider{inner: inner, limiter: limiter}
}

// Complete waits for limiter admission, then delegates to the wrapped
// provider. Context cancellation during the wait aborts the call.
func (p *RateLimitedProvider) Complete(ctx context.Context, req *Request) (*Response, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, MapContextError(p.inner.Name(), err)
		}
	}
	return p.inner.Complete(ctx, req)
}

// Name returns the wrapped provider's identifier.
func (p *RateLimitedProvider) Name() string {
	return p.inner.Name()
}
