package catalog

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nulzo/model-catalog-api/internal/platform/clock"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_FixedWindow(t *testing.T) {
	fc := clock.NewFake(epoch)
	l := NewRateLimiter(fc, map[string]RateLimitPolicy{
		"p": {RequestsPerWindow: 2, Window: time.Minute},
	})

	assert.True(t, l.Allow("p"))
	assert.True(t, l.Allow("p"))
	assert.False(t, l.Allow("p"))

	// The window only resets strictly after the reset instant.
	fc.Advance(time.Minute)
	assert.False(t, l.Allow("p"))

	fc.Advance(time.Nanosecond)
	assert.True(t, l.Allow("p"))
	assert.True(t, l.Allow("p"))
	assert.False(t, l.Allow("p"))
}

func TestRateLimiter_NoPolicyAlwaysAllows(t *testing.T) {
	l := NewRateLimiter(clock.NewFake(epoch), nil)
	for i := 0; i < 100; i++ {
		assert.True(t, l.Allow("unlimited"))
	}
}

func TestRateLimiter_WindowsArePerProvider(t *testing.T) {
	l := NewRateLimiter(clock.NewFake(epoch), map[string]RateLimitPolicy{
		"a": {RequestsPerWindow: 1, Window: time.Minute},
		"b": {RequestsPerWindow: 1, Window: time.Minute},
	})

	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"))
}

func TestRateLimiter_ConcurrentCallersNeverExceedLimit(t *testing.T) {
	l := NewRateLimiter(clock.NewFake(epoch), map[string]RateLimitPolicy{
		"p": {RequestsPerWindow: 10, Window: time.Minute},
	})

	var allowed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("p") {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(10), allowed.Load())
}
