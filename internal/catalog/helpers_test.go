package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nulzo/model-catalog-api/internal/adapters/cache/memory"
	"github.com/nulzo/model-catalog-api/internal/catalog/parser"
	"github.com/nulzo/model-catalog-api/internal/platform/clock"
	"github.com/nulzo/model-catalog-api/pkg/api"
	"go.uber.org/zap"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// upstream is a fake catalog endpoint that counts hits.
type upstream struct {
	*httptest.Server
	hits    atomic.Int32
	status  atomic.Int32
	body    atomic.Value
	lastReq atomic.Value
}

func newUpstream(t *testing.T, ids ...string) *upstream {
	t.Helper()
	u := &upstream{}
	u.status.Store(http.StatusOK)
	u.setModels(ids...)
	u.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.hits.Add(1)
		u.lastReq.Store(r.Header.Clone())
		status := int(u.status.Load())
		w.WriteHeader(status)
		if status == http.StatusOK {
			_, _ = w.Write(u.body.Load().([]byte))
		}
	}))
	t.Cleanup(u.Close)
	return u
}

func (u *upstream) setModels(ids ...string) {
	models := make([]map[string]string, 0, len(ids))
	for _, id := range ids {
		models = append(models, map[string]string{"id": id, "name": id})
	}
	b, _ := json.Marshal(map[string]any{"models": models})
	u.body.Store(b)
}

func (u *upstream) setRaw(body string) { u.body.Store([]byte(body)) }

func (u *upstream) fail(status int) { u.status.Store(int32(status)) }

func (u *upstream) heal() { u.status.Store(http.StatusOK) }

func (u *upstream) header() http.Header {
	h, _ := u.lastReq.Load().(http.Header)
	return h
}

func simpleParse(name string) parser.ParseFunc {
	return func(payload []byte) ([]api.ModelInfo, error) {
		var body struct {
			Models []api.ModelInfo `json:"models"`
		}
		if err := json.Unmarshal(payload, &body); err != nil {
			return nil, err
		}
		if body.Models == nil {
			return nil, errors.New("missing models")
		}
		for i := range body.Models {
			body.Models[i].Provider = name
			body.Models[i].Status = api.ModelAvailable
		}
		return body.Models, nil
	}
}

func testProvider(key string, u *upstream) Provider {
	return Provider{
		Key:           key,
		Name:          key + "-name",
		Endpoint:      u.URL,
		CredentialKey: key + "_KEY",
		Retry:         &RetryPolicy{MaxRetries: 2, InitialBackoff: 100 * time.Millisecond},
		Parse:         simpleParse(key + "-name"),
	}
}

type harness struct {
	clock *clock.Fake
	store *memory.MemoryCache
	cache *ProviderCache
	agg   *Aggregator
}

func newHarness(providers []Provider, opts ...Option) *harness {
	fc := clock.NewFake(epoch)
	limiter := NewRateLimiter(fc, RateLimitPolicies(providers))
	fetcher := NewFetcher(http.DefaultClient, limiter, NewProber(nil, 0, nil), nil, fc, FetcherConfig{}, zap.NewNop())
	store := memory.NewMemoryCache()
	pc := NewProviderCache(store, time.Hour, fc, nil)
	return &harness{
		clock: fc,
		store: store,
		cache: pc,
		agg:   NewAggregator(providers, fetcher, pc, append([]Option{WithClock(fc)}, opts...)...),
	}
}

func envCreds(keys ...string) Credentials {
	env := make(map[string]string, len(keys))
	for _, k := range keys {
		env[k] = "env-" + k
	}
	return Credentials{Environment: env}
}

func modelIDs(models []api.ModelInfo) []string {
	ids := make([]string, 0, len(models))
	for _, m := range models {
		ids = append(ids, m.ID)
	}
	return ids
}
