package catalog

import (
	"time"

	"github.com/nulzo/model-catalog-api/internal/catalog/parser"
	"github.com/nulzo/model-catalog-api/internal/retry"
)

const (
	DefaultMaxRetries     = 3
	DefaultInitialBackoff = time.Second
)

// RateLimitPolicy caps outbound catalog calls in a fixed window.
type RateLimitPolicy struct {
	RequestsPerWindow int
	Window            time.Duration
}

// RetryPolicy bounds the catalog call: MaxRetries+1 attempts in total.
type RetryPolicy struct {
	MaxRetries     int
	InitialBackoff time.Duration
}

// Policy converts r to the generic exponential retry policy.
func (r RetryPolicy) Policy() retry.Policy {
	return retry.Exponential(r.MaxRetries, r.InitialBackoff)
}

// Provider is one upstream catalog. It is immutable once built.
type Provider struct {
	Key            string
	Name           string
	Type           string
	Endpoint       string
	CredentialKey  string
	HealthCheckURL string
	RateLimit      *RateLimitPolicy
	Retry          *RetryPolicy
	Parse          parser.ParseFunc
}

// RetryPolicy returns the provider policy or the default {3, 1s}.
func (p Provider) RetryPolicy() RetryPolicy {
	if p.Retry != nil {
		return *p.Retry
	}
	return RetryPolicy{MaxRetries: DefaultMaxRetries, InitialBackoff: DefaultInitialBackoff}
}
