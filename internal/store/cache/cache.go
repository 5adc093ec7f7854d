package cache

import (
	"context"
	"errors"
	"time"

	"github.com/nulzo/model-catalog-api/pkg/api"
)

// ErrNotFound is returned by Store.Get when no entry exists for the key.
var ErrNotFound = errors.New("cache entry not found")

// Entry is the result of the most recent successful fetch for one provider.
// Entries are replaced wholesale and never mutated after being stored.
type Entry struct {
	Models    []api.ModelInfo  `json:"models"`
	Provider  api.ProviderInfo `json:"provider"`
	CreatedAt time.Time        `json:"created_at"`
	ExpiresAt time.Time        `json:"expires_at"`
}

// FreshAt reports whether the entry is still valid at now.
func (e *Entry) FreshAt(now time.Time) bool {
	return now.Before(e.ExpiresAt)
}

// Clone returns a copy that shares no slices with e.
func (e *Entry) Clone() *Entry {
	c := *e
	if e.Models != nil {
		c.Models = make([]api.ModelInfo, len(e.Models))
		copy(c.Models, e.Models)
	}
	return &c
}

// Store persists provider entries. Implementations must be safe for
// concurrent use and must not expire entries on their own: freshness is
// decided by the caller from Entry.ExpiresAt.
type Store interface {
	// Get returns ErrNotFound when the key has no entry.
	Get(ctx context.Context, key string) (*Entry, error)

	// Set replaces any previous entry for the key.
	Set(ctx context.Context, key string, entry *Entry) error

	Delete(ctx context.Context, key string) error

	// Clear removes every entry.
	Clear(ctx context.Context) error

	// List returns every stored entry, fresh or not.
	List(ctx context.Context) ([]*Entry, error)
}
