package catalog

import (
	"sync"
	"time"

	"github.com/nulzo/model-catalog-api/internal/platform/clock"
)

// RateLimiter is a per-provider fixed-window counter. A burst of up to
// twice the limit is possible across a window boundary.
type RateLimiter struct {
	clock    clock.Clock
	policies map[string]RateLimitPolicy

	mu      sync.RWMutex
	windows map[string]*window
}

type window struct {
	mu      sync.Mutex
	count   int
	resetAt time.Time
	started bool
}

func NewRateLimiter(c clock.Clock, policies map[string]RateLimitPolicy) *RateLimiter {
	if c == nil {
		c = clock.Real{}
	}
	return &RateLimiter{
		clock:    c,
		policies: policies,
		windows:  make(map[string]*window),
	}
}

// Allow records a call attempt for key and reports whether it may proceed.
// Keys without a policy are always allowed.
func (l *RateLimiter) Allow(key string) bool {
	policy, ok := l.policies[key]
	if !ok {
		return true
	}

	w := l.window(key)
	w.mu.Lock()
	defer w.mu.Unlock()

	now := l.clock.Now()
	if !w.started || now.After(w.resetAt) {
		w.started = true
		w.count = 1
		w.resetAt = now.Add(policy.Window)
		return true
	}
	if w.count < policy.RequestsPerWindow {
		w.count++
		return true
	}
	return false
}

func (l *RateLimiter) window(key string) *window {
	l.mu.RLock()
	w, exists := l.windows[key]
	l.mu.RUnlock()
	if exists {
		return w
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	// Double check
	if w, exists = l.windows[key]; exists {
		return w
	}
	w = &window{}
	l.windows[key] = w
	return w
}
