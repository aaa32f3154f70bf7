package llm

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// RetryProvider retries transient failures with jittered exponential
// backoff. Rate limits and unavailable vendors are retried up to
// MaxAttempts; an invalid reply gets one more try; truncation, context
// errors and vendor 4xx errors are returned at once.
type RetryProvider struct {
	inner Provider
	cfg   RetryConfig
	log   *zap.Logger
}

// WithRetry wraps p with retries. A nil logger discards retry logs.
func WithRetry(p Provider, cfg RetryConfig, log *zap.Logger) Provider {
	if log == nil {
		log = zap.NewNop()
	}
	return &RetryProvider{inner: p, cfg: cfg, log: log}
}

// Generate implements Provider.
func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	attempts := max(r.cfg.MaxAttempts, 1)
	invalidLeft := 1

	for attempt := 1; ; attempt++ {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		if attempt >= attempts || !retryable(err, &invalidLeft) {
			return nil, err
		}

		wait := r.delay(attempt, err)
		r.log.Debug("retrying llm request",
			zap.String("purpose", req.purpose()),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
}

// Model implements Provider.
func (r *RetryProvider) Model() string { return r.inner.Model() }

func retryable(err error, invalidLeft *int) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	switch KindOf(err) {
	case KindUnavailable, KindRateLimited:
		return true
	case KindInvalidResponse:
		if *invalidLeft == 0 {
			return false
		}
		*invalidLeft--
		return true
	}
	return false
}

// delay is the wait after the given 1-based attempt: the vendor's
// Retry-After when it sent one, otherwise InitialWait*Multiplier^(attempt-1)
// capped at MaxWait, with 20% jitter either way.
func (r *RetryProvider) delay(attempt int, err error) time.Duration {
	var e *Error
	if errors.As(err, &e) && e.RetryAfter > 0 {
		return e.RetryAfter
	}
	wait := float64(r.cfg.InitialWait)
	for i := 1; i < attempt; i++ {
		wait *= r.cfg.Multiplier
	}
	if limit := float64(r.cfg.MaxWait); limit > 0 && wait > limit {
		wait = limit
	}
	wait *= 0.8 + 0.4*rand.Float64()
	return time.Duration(wait)
}
