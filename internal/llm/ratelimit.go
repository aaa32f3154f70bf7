package llm

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitProvider is a decorator that waits for a token bucket before each
// request so bursts of turns cannot exceed the provider's quota.
type RateLimitProvider struct {
	inner   Provider
	limiter *rate.Limiter
}

// WithRateLimit wraps a Provider with a token bucket limiter. A zero rate
// returns p unchanged.
func WithRateLimit(p Provider, cfg RateLimitConfig) Provider {
	if cfg.RequestsPerSecond <= 0 {
		return p
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return &RateLimitProvider{inner: p, limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)}
}

func (r *RateLimitProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, &Error{Kind: KindRateLimited, Err: fmt.Errorf("local limiter: %w", err)}
	}
	return r.inner.Generate(ctx, req)
}

// Model implements Provider.
func (r *RateLimitProvider) Model() string { return r.inner.Model() }

// TimeoutProvider bounds every Generate call with a deadline.
type TimeoutProvider struct {
	inner   Provider
	timeout time.Duration
}

// WithTimeout wraps a Provider so each call runs under timeout. A zero
// timeout returns p unchanged.
func WithTimeout(p Provider, timeout time.Duration) Provider {
	if timeout <= 0 {
		return p
	}
	return &TimeoutProvider{inner: p, timeout: timeout}
}

func (t *TimeoutProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Generate(ctx, req)
}

// Model implements Provider.
func (t *TimeoutProvider) Model() string { return t.inner.Model() }
