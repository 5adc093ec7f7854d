package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nulzo/model-catalog-api/internal/platform/clock"
	"github.com/stretchr/testify/assert"
)

func TestExponentialBackoff(t *testing.T) {
	p := Exponential(3, 100*time.Millisecond)

	assert.Equal(t, 4, p.MaxAttempts)
	assert.Equal(t, 100*time.Millisecond, p.Backoff(0))
	assert.Equal(t, 200*time.Millisecond, p.Backoff(1))
	assert.Equal(t, 400*time.Millisecond, p.Backoff(2))
}

func TestDo_StopsOnSuccess(t *testing.T) {
	fake := clock.NewFake(time.Unix(0, 0))
	calls := 0

	attempts, err := Do(context.Background(), Exponential(5, time.Second), fake, func(ctx context.Context, attempt int) error {
		calls++
		if attempt < 1 {
			return errors.New("boom")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, 2, calls)
	assert.Equal(t, []time.Duration{time.Second}, fake.Sleeps())
}

func TestDo_ExhaustsPolicy(t *testing.T) {
	fake := clock.NewFake(time.Unix(0, 0))
	calls := 0

	attempts, err := Do(context.Background(), Exponential(2, 50*time.Millisecond), fake, func(ctx context.Context, attempt int) error {
		calls++
		return errors.New("attempt failed")
	})

	assert.EqualError(t, err, "attempt failed")
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 3, calls)
	// no wait after the final attempt
	assert.Equal(t, []time.Duration{50 * time.Millisecond, 100 * time.Millisecond}, fake.Sleeps())
}

func TestDo_CancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	attempts, err := Do(ctx, Exponential(3, time.Hour), clock.Real{}, func(ctx context.Context, attempt int) error {
		calls++
		cancel()
		return errors.New("upstream unavailable")
	})

	assert.EqualError(t, err, "upstream unavailable")
	assert.Equal(t, 1, attempts)
	assert.Equal(t, 1, calls)
}

func TestDo_ZeroAttemptsStillRunsOnce(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), Policy{}, clock.NewFake(time.Now()), func(ctx context.Context, attempt int) error {
		calls++
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}
