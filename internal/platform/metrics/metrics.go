// Package metrics exposes catalog fetch and cache measurements to Prometheus.
package metrics

import (
	"strconv"
	"time"

	"github.com/nulzo/model-catalog-api/pkg/api"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "catalog"

// Metrics implements catalog.Observer.
type Metrics struct {
	FetchTotal    *prometheus.CounterVec
	FetchAttempts *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec
	CacheHits     *prometheus.CounterVec
	HTTPRequests  *prometheus.CounterVec
}

// New registers the collectors with reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		FetchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_total",
				Help:      "Catalog fetches by provider and resulting status",
			},
			[]string{"provider", "status"},
		),
		FetchAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_attempts_total",
				Help:      "Upstream catalog call attempts, retries included",
			},
			[]string{"provider"},
		),
		FetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "fetch_duration_seconds",
				Help:      "Time spent fetching one provider catalog, backoff included",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"provider"},
		),
		CacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hits_total",
				Help:      "Provider catalogs served from cache",
			},
			[]string{"provider"},
		),
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests served by route and status code",
			},
			[]string{"method", "route", "code"},
		),
	}
}

func (m *Metrics) ObserveFetch(provider string, status api.ProviderStatus, attempts int, elapsed time.Duration) {
	m.FetchTotal.WithLabelValues(provider, string(status)).Inc()
	if attempts > 0 {
		m.FetchAttempts.WithLabelValues(provider).Add(float64(attempts))
	}
	m.FetchDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveCacheHit(provider string) {
	m.CacheHits.WithLabelValues(provider).Inc()
}

func (m *Metrics) ObserveRequest(method, route string, code int) {
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
}
