package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type ProviderHandler struct {
	catalog     Catalog
	environment EnvironmentFunc
}

func NewProviderHandler(cat Catalog, env EnvironmentFunc) *ProviderHandler {
	return &ProviderHandler{catalog: cat, environment: env}
}

type providerView struct {
	Key               string          `json:"key"`
	Name              string          `json:"name"`
	Type              string          `json:"type"`
	Endpoint          string          `json:"endpoint"`
	CredentialKey     string          `json:"credential_key"`
	HasEnvironmentKey bool            `json:"has_environment_key"`
	HealthCheck       bool            `json:"health_check"`
	RateLimit         *rateLimitView  `json:"rate_limit,omitempty"`
	Retry             retryPolicyView `json:"retry"`
}

type rateLimitView struct {
	RequestsPerWindow int   `json:"requests_per_window"`
	WindowMs          int64 `json:"window_ms"`
}

type retryPolicyView struct {
	MaxRetries       int   `json:"max_retries"`
	InitialBackoffMs int64 `json:"initial_backoff_ms"`
}

// List returns the configured providers in precedence order. Key values
// are never exposed, only whether one is present in the environment.
//
// GET /v1/providers
func (h *ProviderHandler) List(c *gin.Context) {
	var env map[string]string
	if h.environment != nil {
		env = h.environment()
	}

	providers := h.catalog.Providers()
	views := make([]providerView, 0, len(providers))
	for _, p := range providers {
		retry := p.RetryPolicy()
		v := providerView{
			Key:               p.Key,
			Name:              p.Name,
			Type:              p.Type,
			Endpoint:          p.Endpoint,
			CredentialKey:     p.CredentialKey,
			HasEnvironmentKey: env[p.CredentialKey] != "",
			HealthCheck:       p.HealthCheckURL != "",
			Retry: retryPolicyView{
				MaxRetries:       retry.MaxRetries,
				InitialBackoffMs: retry.InitialBackoff.Milliseconds(),
			},
		}
		if rl := p.RateLimit; rl != nil {
			v.RateLimit = &rateLimitView{RequestsPerWindow: rl.RequestsPerWindow, WindowMs: rl.Window.Milliseconds()}
		}
		views = append(views, v)
	}

	c.JSON(http.StatusOK, gin.H{
		"object": "list",
		"data":   views,
	})
}
