// Package retry runs an operation under an explicit attempt/backoff policy.
package retry

import (
	"context"
	"time"

	"github.com/nulzo/model-catalog-api/internal/platform/clock"
)

// Policy bounds the number of attempts and the wait before each retry.
type Policy struct {
	MaxAttempts int
	// Backoff returns the wait after the failed attempt with the given zero-based index.
	Backoff func(attempt int) time.Duration
}

// Exponential waits initial * 2^attempt between attempts, for maxRetries+1 attempts in total.
func Exponential(maxRetries int, initial time.Duration) Policy {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return Policy{
		MaxAttempts: maxRetries + 1,
		Backoff: func(attempt int) time.Duration {
			return initial * time.Duration(1<<uint(attempt))
		},
	}
}

// Func is one attempt. attempt is zero-based.
type Func func(ctx context.Context, attempt int) error

// Do calls fn until it succeeds or the policy is exhausted and returns the
// number of attempts made and the last error. No wait follows the final
// attempt. If ctx is cancelled while waiting, Do stops and returns the last
// attempt's error.
func Do(ctx context.Context, p Policy, c clock.Clock, fn Func) (int, error) {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		lastErr = fn(ctx, attempt)
		if lastErr == nil {
			return attempt + 1, nil
		}

		if attempt == maxAttempts-1 {
			break
		}

		var wait time.Duration
		if p.Backoff != nil {
			wait = p.Backoff(attempt)
		}
		if err := c.Sleep(ctx, wait); err != nil {
			return attempt + 1, lastErr
		}
	}

	return maxAttempts, lastErr
}
