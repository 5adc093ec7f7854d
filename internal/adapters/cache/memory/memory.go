package memory

import (
	"context"
	"sync"

	"github.com/nulzo/model-catalog-api/internal/store/cache"
)

// MemoryCache keeps entries in process memory. Entries are copied on the way
// in and out so callers never share slices with the store.
type MemoryCache struct {
	items map[string]*cache.Entry
	mu    sync.RWMutex
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		items: make(map[string]*cache.Entry),
	}
}

func (c *MemoryCache) Get(ctx context.Context, key string) (*cache.Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.items[key]
	if !exists {
		return nil, cache.ErrNotFound
	}
	return entry.Clone(), nil
}

func (c *MemoryCache) Set(ctx context.Context, key string, entry *cache.Entry) error {
	stored := entry.Clone()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = stored
	return nil
}

func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

func (c *MemoryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*cache.Entry)
	return nil
}

func (c *MemoryCache) List(ctx context.Context) ([]*cache.Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entries := make([]*cache.Entry, 0, len(c.items))
	for _, e := range c.items {
		entries = append(entries, e.Clone())
	}
	return entries, nil
}
