package api

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// RetryDoer is a decorator that retries transient failures of idempotent
// requests with exponential backoff and jitter. Other methods pass through
// once: a repeated POST could record progress twice.
type RetryDoer struct {
	inner  Doer
	config RetryConfig
}

// WithRetry wraps a Doer with retry logic.
func WithRetry(d Doer, cfg RetryConfig) Doer {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &RetryDoer{inner: d, config: cfg}
}

func (r *RetryDoer) Do(ctx context.Context, req *Request) (*Response, error) {
	if !req.Idempotent() {
		return r.inner.Do(ctx, req)
	}

	var lastErr error
	for attempt := range r.config.MaxAttempts {
		resp, err := r.inner.Do(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !shouldRetry(err) {
			return nil, err
		}

		// Last attempt: don't sleep, just return the error.
		if attempt == r.config.MaxAttempts-1 {
			break
		}

		// Every attempt gets its own request id.
		req.RequestID = ""

		wait := r.backoff(attempt, err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}

	return nil, lastErr
}

// shouldRetry determines if an error is retryable.
func shouldRetry(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var rl *ErrRateLimit
	if errors.As(err, &rl) {
		return true
	}
	var unavail *ErrServerUnavailable
	if errors.As(err, &unavail) {
		return true
	}

	// Auth failures, 4xx and bad payloads won't change on a retry.
	return false
}

// backoff computes the wait duration for the given attempt.
func (r *RetryDoer) backoff(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}

	wait := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt))
	if r.config.MaxWait > 0 && wait > float64(r.config.MaxWait) {
		wait = float64(r.config.MaxWait)
	}

	// Add ±20% jitter.
	jitter := wait * 0.2 * (2*rand.Float64() - 1)
	wait += jitter

	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}
