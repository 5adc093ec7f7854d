package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nulzo/model-catalog-api/internal/platform/clock"
	"github.com/nulzo/model-catalog-api/pkg/api"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const tracerName = "github.com/nulzo/model-catalog-api/internal/catalog"

// Aggregator merges the catalogs of a fixed, ordered set of providers.
type Aggregator struct {
	providers []Provider
	fetcher   *Fetcher
	cache     *ProviderCache
	clock     clock.Clock
	logger    *zap.Logger
	recorder  StatusRecorder
	observer  Observer
	tracer    trace.Tracer
	parallel  bool
}

type Option func(*Aggregator)

func WithClock(c clock.Clock) Option {
	return func(a *Aggregator) { a.clock = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(a *Aggregator) { a.logger = l }
}

func WithRecorder(r StatusRecorder) Option {
	return func(a *Aggregator) { a.recorder = r }
}

func WithObserver(o Observer) Option {
	return func(a *Aggregator) { a.observer = o }
}

// WithParallel fans provider fetches out concurrently. Merge order stays
// the configured order.
func WithParallel(parallel bool) Option {
	return func(a *Aggregator) { a.parallel = parallel }
}

func NewAggregator(providers []Provider, fetcher *Fetcher, cache *ProviderCache, opts ...Option) *Aggregator {
	a := &Aggregator{
		providers: providers,
		fetcher:   fetcher,
		cache:     cache,
		clock:     clock.Real{},
		logger:    zap.NewNop(),
		recorder:  nopRecorder{},
		observer:  nopObserver{},
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Providers returns the configured providers in enumeration order.
func (a *Aggregator) Providers() []Provider {
	out := make([]Provider, len(a.providers))
	copy(out, a.providers)
	return out
}

type outcome struct {
	models    []api.ModelInfo
	info      api.ProviderInfo
	fromCache bool
}

// Aggregate always returns a response, even when every provider failed.
func (a *Aggregator) Aggregate(ctx context.Context, creds Credentials, forceRefresh bool) *api.AggregatedResponse {
	runID := uuid.NewString()
	ctx, span := a.tracer.Start(ctx, "catalog.Aggregate", trace.WithAttributes(
		attribute.String("catalog.run_id", runID),
		attribute.Bool("catalog.force_refresh", forceRefresh),
	))
	defer span.End()

	outcomes := make([]outcome, len(a.providers))
	if a.parallel {
		var g errgroup.Group
		for i, p := range a.providers {
			g.Go(func() error {
				outcomes[i] = a.process(ctx, runID, p, creds, forceRefresh)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, p := range a.providers {
			outcomes[i] = a.process(ctx, runID, p, creds, forceRefresh)
		}
	}

	resp := a.merge(outcomes, creds)
	span.SetAttributes(
		attribute.Int("catalog.total_models", resp.Metadata.TotalModels),
		attribute.Bool("catalog.cache_hit", resp.Metadata.CacheHit),
	)

	a.logger.Info("catalog aggregated",
		zap.String("run_id", runID),
		zap.Int("total_models", resp.Metadata.TotalModels),
		zap.Bool("cache_hit", resp.Metadata.CacheHit),
		zap.Bool("force_refresh", forceRefresh),
	)

	return resp
}

func (a *Aggregator) process(ctx context.Context, runID string, p Provider, creds Credentials, forceRefresh bool) outcome {
	ctx, span := a.tracer.Start(ctx, "catalog.provider", trace.WithAttributes(
		attribute.String("catalog.provider", p.Key),
	))
	defer span.End()

	var out outcome
	if !forceRefresh {
		if entry, ok := a.cache.Get(ctx, p.Key); ok {
			a.logger.Debug("cache hit", zap.String("provider", p.Key))
			a.observer.ObserveCacheHit(p.Key)
			out = outcome{models: entry.Models, info: entry.Provider, fromCache: true}
		}
	}

	if !out.fromCache {
		start := time.Now()
		res := a.fetcher.Fetch(ctx, p, creds)
		a.observer.ObserveFetch(p.Key, res.Provider.Status, res.Attempts, time.Since(start))
		if res.Success {
			a.cache.Put(ctx, p.Key, a.cache.NewEntry(res.Models, res.Provider))
		}
		out = outcome{models: res.Models, info: res.Provider}
	}

	span.SetAttributes(
		attribute.String("catalog.status", string(out.info.Status)),
		attribute.Bool("catalog.from_cache", out.fromCache),
		attribute.Int("catalog.model_count", out.info.ModelCount),
	)
	a.recorder.RecordStatus(ctx, runID, p.Key, out.info, out.fromCache)

	return out
}

// merge applies first-occurrence-wins deduplication in configured order.
func (a *Aggregator) merge(outcomes []outcome, creds Credentials) *api.AggregatedResponse {
	providers := make(map[string]api.ProviderInfo, len(a.providers))
	seen := make(map[string]struct{})
	models := make([]api.ModelInfo, 0)
	var userKeys []string
	cacheHit := false

	for i, p := range a.providers {
		if creds.CallerSupplied(p.CredentialKey) {
			userKeys = append(userKeys, p.Key)
		}
		o := outcomes[i]
		if o.fromCache {
			cacheHit = true
		}
		providers[p.Key] = o.info
		for _, m := range o.models {
			if _, dup := seen[m.ID]; dup {
				continue
			}
			seen[m.ID] = struct{}{}
			models = append(models, m)
		}
	}

	return &api.AggregatedResponse{
		Models: models,
		Metadata: api.CatalogMetadata{
			LastUpdated:      a.clock.Now(),
			Providers:        providers,
			TotalModels:      len(models),
			CacheHit:         cacheHit,
			UserProvidedKeys: userKeys,
		},
	}
}

// ModelDetails looks a model up in the aggregated catalog.
func (a *Aggregator) ModelDetails(ctx context.Context, creds Credentials, id string) (api.ModelInfo, bool) {
	return a.Aggregate(ctx, creds, false).Find(id)
}

// CheckCapability reports false for unknown models.
func (a *Aggregator) CheckCapability(ctx context.Context, creds Credentials, id string, c api.Capability) bool {
	m, ok := a.ModelDetails(ctx, creds, id)
	return ok && m.Has(c)
}

// ClearCache invalidates one provider, or all when key is empty.
func (a *Aggregator) ClearCache(ctx context.Context, key string) error {
	return a.cache.Invalidate(ctx, key)
}

func (a *Aggregator) CacheStats(ctx context.Context) (api.CacheStats, error) {
	return a.cache.Stats(ctx)
}
