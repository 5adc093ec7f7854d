package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/nulzo/model-catalog-api/internal/platform/clock"
	"github.com/nulzo/model-catalog-api/internal/store/cache"
	"github.com/nulzo/model-catalog-api/pkg/api"
	"go.uber.org/zap"
)

const DefaultCacheTTL = time.Hour

// ProviderCache applies a uniform TTL over a cache.Store. Stale entries are
// kept until overwritten or invalidated.
type ProviderCache struct {
	store  cache.Store
	ttl    time.Duration
	clock  clock.Clock
	logger *zap.Logger
}

func NewProviderCache(store cache.Store, ttl time.Duration, c clock.Clock, logger *zap.Logger) *ProviderCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if c == nil {
		c = clock.Real{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProviderCache{store: store, ttl: ttl, clock: c, logger: logger}
}

// NewEntry stamps a successful fetch with its creation and expiry times.
func (c *ProviderCache) NewEntry(models []api.ModelInfo, info api.ProviderInfo) *cache.Entry {
	now := c.clock.Now()
	return &cache.Entry{
		Models:    models,
		Provider:  info,
		CreatedAt: now,
		ExpiresAt: now.Add(c.ttl),
	}
}

// Get returns the entry for key only while it is fresh. Store errors are
// logged and reported as a miss.
func (c *ProviderCache) Get(ctx context.Context, key string) (*cache.Entry, bool) {
	entry, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			c.logger.Warn("cache read failed", zap.String("provider", key), zap.Error(err))
		}
		return nil, false
	}
	if !entry.FreshAt(c.clock.Now()) {
		return nil, false
	}
	return entry, true
}

// Put replaces any previous entry for key.
func (c *ProviderCache) Put(ctx context.Context, key string, entry *cache.Entry) {
	if err := c.store.Set(ctx, key, entry); err != nil {
		c.logger.Warn("cache write failed", zap.String("provider", key), zap.Error(err))
	}
}

// Invalidate drops the entry for key, or every entry when key is empty.
func (c *ProviderCache) Invalidate(ctx context.Context, key string) error {
	if key == "" {
		return c.store.Clear(ctx)
	}
	return c.store.Delete(ctx, key)
}

func (c *ProviderCache) Stats(ctx context.Context) (api.CacheStats, error) {
	entries, err := c.store.List(ctx)
	if err != nil {
		return api.CacheStats{}, err
	}

	now := c.clock.Now()
	stats := api.CacheStats{TotalEntries: len(entries)}
	for _, e := range entries {
		if e.FreshAt(now) {
			stats.ValidEntries++
		} else {
			stats.ExpiredEntries++
		}
	}
	return stats, nil
}
