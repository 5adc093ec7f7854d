package catalog

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/nulzo/model-catalog-api/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAggregate_CacheFreshness(t *testing.T) {
	u := newUpstream(t, "p/a")
	h := newHarness([]Provider{testProvider("p", u)})
	ctx := context.Background()
	creds := envCreds("p_KEY")

	first := h.agg.Aggregate(ctx, creds, false)
	assert.False(t, first.Metadata.CacheHit)

	second := h.agg.Aggregate(ctx, creds, false)
	assert.True(t, second.Metadata.CacheHit)
	assert.Equal(t, int32(1), u.hits.Load())
	assert.Equal(t, first.Models, second.Models)

	h.clock.Advance(time.Hour + time.Second)
	third := h.agg.Aggregate(ctx, creds, false)
	assert.False(t, third.Metadata.CacheHit)
	assert.Equal(t, int32(2), u.hits.Load())
}

func TestAggregate_ForceRefreshBypassesCache(t *testing.T) {
	u := newUpstream(t, "p/a")
	h := newHarness([]Provider{testProvider("p", u)})
	ctx := context.Background()
	creds := envCreds("p_KEY")

	h.agg.Aggregate(ctx, creds, false)
	u.setModels("p/b")

	resp := h.agg.Aggregate(ctx, creds, true)
	assert.False(t, resp.Metadata.CacheHit)
	assert.Equal(t, []string{"p/b"}, modelIDs(resp.Models))
	assert.Equal(t, int32(2), u.hits.Load())

	// A failed forced refresh must not overwrite the cached catalog.
	u.fail(http.StatusInternalServerError)
	failed := h.agg.Aggregate(ctx, creds, true)
	assert.Empty(t, failed.Models)
	assert.NotEmpty(t, failed.Metadata.Providers["p"].Error)

	cached := h.agg.Aggregate(ctx, creds, false)
	assert.True(t, cached.Metadata.CacheHit)
	assert.Equal(t, []string{"p/b"}, modelIDs(cached.Models))
}

func TestAggregate_PartialFailure(t *testing.T) {
	a := newUpstream(t)
	a.fail(http.StatusServiceUnavailable)
	b := newUpstream(t, "b/1", "b/2")

	h := newHarness([]Provider{testProvider("a", a), testProvider("b", b)})
	resp := h.agg.Aggregate(context.Background(), envCreds("a_KEY", "b_KEY"), false)

	assert.Equal(t, []string{"b/1", "b/2"}, modelIDs(resp.Models))
	assert.Equal(t, 2, resp.Metadata.TotalModels)
	assert.NotEmpty(t, resp.Metadata.Providers["a"].Error)
	assert.Equal(t, api.StatusDown, resp.Metadata.Providers["a"].Status)
	assert.Equal(t, api.StatusHealthy, resp.Metadata.Providers["b"].Status)

	stats, err := h.agg.CacheStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalEntries, "failures are never cached")
}

func TestAggregate_AllProvidersFail(t *testing.T) {
	a := newUpstream(t)
	a.fail(http.StatusInternalServerError)

	h := newHarness([]Provider{testProvider("a", a), testProvider("b", a)})
	resp := h.agg.Aggregate(context.Background(), envCreds("a_KEY"), false)

	require.NotNil(t, resp)
	assert.NotNil(t, resp.Models)
	assert.Empty(t, resp.Models)
	assert.Zero(t, resp.Metadata.TotalModels)
	assert.Len(t, resp.Metadata.Providers, 2)
	assert.Equal(t, "No API key available", resp.Metadata.Providers["b"].Error)
}

func TestAggregate_DedupFirstOccurrenceWins(t *testing.T) {
	a := newUpstream(t, "m1", "a-only")
	b := newUpstream(t, "m1", "b-only")

	for _, parallel := range []bool{false, true} {
		h := newHarness([]Provider{testProvider("a", a), testProvider("b", b)}, WithParallel(parallel))
		resp := h.agg.Aggregate(context.Background(), envCreds("a_KEY", "b_KEY"), false)

		assert.Equal(t, []string{"m1", "a-only", "b-only"}, modelIDs(resp.Models))
		m1, ok := resp.Find("m1")
		require.True(t, ok)
		assert.Equal(t, "a-name", m1.Provider)
		assert.Equal(t, 3, resp.Metadata.TotalModels)
	}
}

func TestAggregate_RateLimitEnforcement(t *testing.T) {
	u := newUpstream(t, "p/a")
	p := testProvider("p", u)
	p.RateLimit = &RateLimitPolicy{RequestsPerWindow: 1, Window: 60 * time.Second}
	h := newHarness([]Provider{p})
	ctx := context.Background()
	creds := envCreds("p_KEY")

	first := h.agg.Aggregate(ctx, creds, true)
	assert.Equal(t, api.StatusHealthy, first.Metadata.Providers["p"].Status)

	second := h.agg.Aggregate(ctx, creds, true)
	assert.Equal(t, api.StatusDegraded, second.Metadata.Providers["p"].Status)
	assert.Equal(t, "Rate limit exceeded", second.Metadata.Providers["p"].Error)
	assert.Equal(t, int32(1), u.hits.Load())

	h.clock.Advance(61 * time.Second)
	third := h.agg.Aggregate(ctx, creds, true)
	assert.Equal(t, api.StatusHealthy, third.Metadata.Providers["p"].Status)
	assert.Equal(t, int32(2), u.hits.Load())
}

func TestAggregate_UserProvidedKeys(t *testing.T) {
	a := newUpstream(t, "a/1")
	b := newUpstream(t, "b/1")
	providers := []Provider{testProvider("a", a), testProvider("b", b)}

	h := newHarness(providers)
	resp := h.agg.Aggregate(context.Background(), envCreds("a_KEY", "b_KEY"), false)
	assert.Nil(t, resp.Metadata.UserProvidedKeys)

	h = newHarness(providers)
	resp = h.agg.Aggregate(context.Background(), Credentials{
		User:      map[string]string{"b_KEY": "mine"},
		Overrides: map[string]string{"a_KEY": "override"},
	}, false)
	assert.Equal(t, []string{"a", "b"}, resp.Metadata.UserProvidedKeys)
	assert.Equal(t, "Bearer override", a.header().Get("Authorization"))
	assert.Equal(t, "Bearer mine", b.header().Get("Authorization"))
	assert.False(t, resp.Metadata.Providers["b"].HasEnvironmentKey)
}

func TestAggregate_EndToEnd(t *testing.T) {
	one := newUpstream(t, "1/a", "1/b", "1/c", "1/d", "1/e")
	two := newUpstream(t)
	two.fail(http.StatusInternalServerError)
	three := newUpstream(t, "3/a")

	providers := []Provider{testProvider("1", one), testProvider("2", two), testProvider("3", three)}

	for _, parallel := range []bool{false, true} {
		h := newHarness(providers, WithParallel(parallel))
		resp := h.agg.Aggregate(context.Background(), envCreds("1_KEY", "2_KEY"), false)

		assert.Equal(t, 5, resp.Metadata.TotalModels)
		assert.Len(t, resp.Models, 5)
		assert.Equal(t, api.StatusHealthy, resp.Metadata.Providers["1"].Status)
		assert.Equal(t, api.StatusDown, resp.Metadata.Providers["2"].Status)
		assert.Equal(t, "HTTP 500: Internal Server Error", resp.Metadata.Providers["2"].Error)
		assert.Equal(t, "No API key available", resp.Metadata.Providers["3"].Error)
		assert.False(t, resp.Metadata.CacheHit)
		assert.Equal(t, epoch.Add(300*time.Millisecond), resp.Metadata.LastUpdated)
	}

	assert.Equal(t, int32(6), two.hits.Load(), "three attempts per aggregation")
	assert.Zero(t, three.hits.Load())
}

func TestAggregate_CacheHitWhenAnyProviderCached(t *testing.T) {
	a := newUpstream(t, "a/1")
	b := newUpstream(t, "b/1")
	h := newHarness([]Provider{testProvider("a", a), testProvider("b", b)})
	ctx := context.Background()

	h.agg.Aggregate(ctx, envCreds("a_KEY", "b_KEY"), false)
	require.NoError(t, h.agg.ClearCache(ctx, "b"))

	resp := h.agg.Aggregate(ctx, envCreds("a_KEY", "b_KEY"), false)
	assert.True(t, resp.Metadata.CacheHit)
	assert.Equal(t, int32(1), a.hits.Load())
	assert.Equal(t, int32(2), b.hits.Load())
}

func TestAggregate_ModelDetailsAndCapabilities(t *testing.T) {
	u := newUpstream(t)
	u.setRaw(`{"models":[{"id":"p/vision","name":"V","vision":true,"premium":true},{"id":"p/plain","name":"P"}]}`)
	h := newHarness([]Provider{testProvider("p", u)})
	ctx := context.Background()
	creds := envCreds("p_KEY")

	m, ok := h.agg.ModelDetails(ctx, creds, "p/vision")
	require.True(t, ok)
	assert.Equal(t, "V", m.Name)

	_, ok = h.agg.ModelDetails(ctx, creds, "missing")
	assert.False(t, ok)

	assert.True(t, h.agg.CheckCapability(ctx, creds, "p/vision", api.CapabilityVision))
	assert.True(t, h.agg.CheckCapability(ctx, creds, "p/vision", api.CapabilityPremium))
	assert.False(t, h.agg.CheckCapability(ctx, creds, "p/vision", api.CapabilityWebSearch))
	assert.False(t, h.agg.CheckCapability(ctx, creds, "p/plain", api.CapabilityVision))
	assert.False(t, h.agg.CheckCapability(ctx, creds, "missing", api.CapabilityVision))
	assert.Equal(t, int32(1), u.hits.Load())
}

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) RecordStatus(ctx context.Context, runID, providerKey string, info api.ProviderInfo, fromCache bool) {
	m.Called(runID, providerKey, info.Status, fromCache)
}

type mockObserver struct {
	mock.Mock
}

func (m *mockObserver) ObserveFetch(providerKey string, status api.ProviderStatus, attempts int, _ time.Duration) {
	m.Called(providerKey, status, attempts)
}

func (m *mockObserver) ObserveCacheHit(providerKey string) {
	m.Called(providerKey)
}

func TestAggregate_RecordsEveryOutcome(t *testing.T) {
	a := newUpstream(t, "a/1")
	rec := new(mockRecorder)
	obs := new(mockObserver)
	rec.On("RecordStatus", mock.AnythingOfType("string"), "a", api.StatusHealthy, false).Once()
	rec.On("RecordStatus", mock.AnythingOfType("string"), "a", api.StatusHealthy, true).Once()
	rec.On("RecordStatus", mock.AnythingOfType("string"), "b", api.StatusDown, false).Twice()
	obs.On("ObserveFetch", "a", api.StatusHealthy, 1).Once()
	obs.On("ObserveFetch", "b", api.StatusDown, 0).Twice()
	obs.On("ObserveCacheHit", "a").Once()

	h := newHarness([]Provider{testProvider("a", a), testProvider("b", a)}, WithRecorder(rec), WithObserver(obs))
	h.agg.Aggregate(context.Background(), envCreds("a_KEY"), false)
	h.agg.Aggregate(context.Background(), envCreds("a_KEY"), false)

	rec.AssertExpectations(t)
	obs.AssertExpectations(t)
}

func TestAggregator_ProvidersKeepsOrder(t *testing.T) {
	u := newUpstream(t)
	h := newHarness([]Provider{testProvider("z", u), testProvider("a", u)})
	ps := h.agg.Providers()
	require.Len(t, ps, 2)
	assert.Equal(t, "z", ps[0].Key)
	assert.Equal(t, "a", ps[1].Key)
}
