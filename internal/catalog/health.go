package catalog

import (
	"context"
	"net/http"
	"time"

	"github.com/nulzo/model-catalog-api/internal/httpclient"
	"go.uber.org/zap"
)

// Prober runs the optional liveness check before a catalog fetch.
type Prober struct {
	client  httpclient.HTTPClient
	timeout time.Duration
	logger  *zap.Logger
}

func NewProber(client httpclient.HTTPClient, timeout time.Duration, logger *zap.Logger) *Prober {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Prober{client: client, timeout: timeout, logger: logger}
}

// Probe returns true when p has no health check or the check answers 2xx.
// Network errors, non-2xx and cancellation all report false.
func (pr *Prober) Probe(ctx context.Context, p Provider, credential string) bool {
	if p.HealthCheckURL == "" {
		return true
	}
	if pr.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, pr.timeout)
		defer cancel()
	}

	_, err := httpclient.Get(ctx, pr.client, p.HealthCheckURL, map[string]string{
		"Authorization": "Bearer " + credential,
	})
	if err != nil {
		pr.logger.Debug("health check failed", zap.String("provider", p.Key), zap.Error(err))
		return false
	}
	return true
}
