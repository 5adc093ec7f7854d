package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nulzo/model-catalog-api/internal/catalog/blocklist"
	"github.com/nulzo/model-catalog-api/internal/httpclient"
	"github.com/nulzo/model-catalog-api/internal/platform/clock"
	"github.com/nulzo/model-catalog-api/internal/retry"
	"github.com/nulzo/model-catalog-api/pkg/api"
	"go.uber.org/zap"
)

var (
	ErrNoCredential      = errors.New("No API key available")
	ErrRateLimited       = errors.New("Rate limit exceeded")
	ErrHealthCheckFailed = errors.New("Health check failed")
)

// FetchResult is the outcome of one provider fetch. Failures are carried in
// Provider.Error; Err holds the same failure for callers that want it typed.
type FetchResult struct {
	Success  bool
	Models   []api.ModelInfo
	Provider api.ProviderInfo
	Err      error
	Attempts int
}

// FetcherConfig holds the fetch settings shared by every provider.
type FetcherConfig struct {
	Referer string
	Title   string
	// RequestTimeout bounds a single catalog attempt. Zero means no bound.
	RequestTimeout time.Duration
}

// Fetcher performs the guarded catalog call for a single provider.
type Fetcher struct {
	client    httpclient.HTTPClient
	limiter   *RateLimiter
	prober    *Prober
	blocklist *blocklist.List
	clock     clock.Clock
	cfg       FetcherConfig
	logger    *zap.Logger
}

func NewFetcher(
	client httpclient.HTTPClient,
	limiter *RateLimiter,
	prober *Prober,
	blocked *blocklist.List,
	c clock.Clock,
	cfg FetcherConfig,
	logger *zap.Logger,
) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if c == nil {
		c = clock.Real{}
	}
	if limiter == nil {
		limiter = NewRateLimiter(c, nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if prober == nil {
		prober = NewProber(client, 0, logger)
	}
	return &Fetcher{
		client:    client,
		limiter:   limiter,
		prober:    prober,
		blocklist: blocked,
		clock:     c,
		cfg:       cfg,
		logger:    logger,
	}
}

// Fetch never returns a Go error: every failure mode is reported through
// the result so a single provider cannot abort an aggregation.
func (f *Fetcher) Fetch(ctx context.Context, p Provider, creds Credentials) FetchResult {
	info := api.ProviderInfo{
		Name:              p.Name,
		Status:            api.StatusDown,
		LastChecked:       f.clock.Now(),
		HasEnvironmentKey: creds.Environment[p.CredentialKey] != "",
		SupportsUserKeys:  true,
	}

	key, ok := creds.Resolve(p.CredentialKey)
	if !ok {
		return f.fail(p, info, ErrNoCredential, 0)
	}

	if !f.limiter.Allow(p.Key) {
		info.Status = api.StatusDegraded
		return f.fail(p, info, ErrRateLimited, 0)
	}

	if !f.prober.Probe(ctx, p, key) {
		return f.fail(p, info, ErrHealthCheckFailed, 0)
	}

	var models []api.ModelInfo
	attempts, err := retry.Do(ctx, p.RetryPolicy().Policy(), f.clock, func(ctx context.Context, attempt int) error {
		body, err := f.call(ctx, p, key)
		if err != nil {
			f.logger.Debug("catalog attempt failed",
				zap.String("provider", p.Key),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			return err
		}
		parsed, err := p.Parse(body)
		if err != nil {
			return fmt.Errorf("malformed catalog payload: %w", err)
		}
		models = parsed
		return nil
	})
	info.LastChecked = f.clock.Now()
	if err != nil {
		return f.fail(p, info, err, attempts)
	}

	models = f.blocklist.Filter(models)
	info.Status = api.StatusHealthy
	info.ModelCount = len(models)

	return FetchResult{
		Success:  true,
		Models:   models,
		Provider: info,
		Attempts: attempts,
	}
}

func (f *Fetcher) call(ctx context.Context, p Provider, key string) ([]byte, error) {
	if f.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.cfg.RequestTimeout)
		defer cancel()
	}

	headers := map[string]string{
		"Authorization": "Bearer " + key,
	}
	if f.cfg.Referer != "" {
		headers["HTTP-Referer"] = f.cfg.Referer
	}
	if f.cfg.Title != "" {
		headers["X-Title"] = f.cfg.Title
	}

	return httpclient.Get(ctx, f.client, p.Endpoint, headers)
}

func (f *Fetcher) fail(p Provider, info api.ProviderInfo, err error, attempts int) FetchResult {
	info.Error = err.Error()
	info.ModelCount = 0

	f.logger.Warn("provider fetch failed",
		zap.String("provider", p.Key),
		zap.String("status", string(info.Status)),
		zap.Int("attempts", attempts),
		zap.Error(err),
	)

	return FetchResult{
		Provider: info,
		Err:      err,
		Attempts: attempts,
	}
}
