package catalog

import (
	"context"
	"time"

	"github.com/nulzo/model-catalog-api/pkg/api"
)

// StatusRecorder receives every per-provider outcome of an aggregation run.
// Implementations must not block.
type StatusRecorder interface {
	RecordStatus(ctx context.Context, runID, providerKey string, info api.ProviderInfo, fromCache bool)
}

// Observer receives fetch and cache measurements.
type Observer interface {
	ObserveFetch(providerKey string, status api.ProviderStatus, attempts int, elapsed time.Duration)
	ObserveCacheHit(providerKey string)
}

type nopRecorder struct{}

func (nopRecorder) RecordStatus(context.Context, string, string, api.ProviderInfo, bool) {}

type nopObserver struct{}

func (nopObserver) ObserveFetch(string, api.ProviderStatus, int, time.Duration) {}
func (nopObserver) ObserveCacheHit(string)                                       {}
