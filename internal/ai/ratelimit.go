package ai

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimitedProvider spaces out calls to a provider with a token bucket.
type RateLimitedProvider struct {
	Provider
	limiter *rate.Limiter
}

// WithRateLimit wraps p. A non-positive rps disables limiting.
func WithRateLimit(p Provider, rps float64, burst int) Provider {
	if rps <= 0 {
		return p
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedProvider{
		Provider: p,
		limiter:  rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Generate blocks until a token is available or ctx is done.
func (r *RateLimitedProvider) Generate(ctx context.Context, req Request) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return r.Provider.Generate(ctx, req)
}
