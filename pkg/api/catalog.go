package api

import "time"

// ProviderStatus is the health of an upstream catalog as observed by the last fetch.
type ProviderStatus string

const (
	StatusHealthy  ProviderStatus = "healthy"
	StatusDegraded ProviderStatus = "degraded"
	StatusDown     ProviderStatus = "down"
)

// ProviderInfo is the per-call status record of one provider.
type ProviderInfo struct {
	Name              string         `json:"name"`
	Status            ProviderStatus `json:"status"`
	LastChecked       time.Time      `json:"last_checked"`
	ModelCount        int            `json:"model_count"`
	HasEnvironmentKey bool           `json:"has_environment_key"`
	SupportsUserKeys  bool           `json:"supports_user_keys"`
	Error             string         `json:"error,omitempty"`
}

// CatalogMetadata describes how an AggregatedResponse was assembled.
type CatalogMetadata struct {
	LastUpdated      time.Time               `json:"last_updated"`
	Providers        map[string]ProviderInfo `json:"providers"`
	TotalModels      int                     `json:"total_models"`
	CacheHit         bool                    `json:"cache_hit"`
	UserProvidedKeys []string                `json:"user_provided_keys,omitempty"`
}

// AggregatedResponse is the merged, deduplicated catalog across all providers.
type AggregatedResponse struct {
	Models   []ModelInfo     `json:"models"`
	Metadata CatalogMetadata `json:"metadata"`
}

// Find returns the model with the given id.
func (r *AggregatedResponse) Find(id string) (ModelInfo, bool) {
	for _, m := range r.Models {
		if m.ID == id {
			return m, true
		}
	}
	return ModelInfo{}, false
}

// CacheStats counts provider cache entries by freshness.
type CacheStats struct {
	TotalEntries   int `json:"total_entries"`
	ValidEntries   int `json:"valid_entries"`
	ExpiredEntries int `json:"expired_entries"`
}
