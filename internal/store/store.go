package store

import (
	"context"
	"time"

	"github.com/nulzo/model-catalog-api/internal/store/model"
)

// Repository is the main contract for the data layer.
type Repository interface {
	Checks() CheckRepository

	// WithTx runs fn against a repository bound to one transaction.
	WithTx(ctx context.Context, fn func(repo Repository) error) error

	Close() error
}

// CheckRepository stores the per-provider outcome of every aggregation run.
type CheckRepository interface {
	// Log stores a single provider check.
	Log(ctx context.Context, check *model.ProviderCheck) error
	// Recent returns the newest checks for a provider, newest first.
	Recent(ctx context.Context, provider string, limit int) ([]model.ProviderCheck, error)
	// DailyUptime aggregates checks recorded at or after since by day and provider.
	DailyUptime(ctx context.Context, since time.Time) ([]model.DailyUptime, error)
}
