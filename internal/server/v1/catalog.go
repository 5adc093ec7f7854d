package v1

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/model-catalog-api/internal/catalog"
	"github.com/nulzo/model-catalog-api/pkg/api"
)

const (
	// ProviderKeysHeader carries caller-supplied keys as a JSON object of
	// credential key name to API key.
	ProviderKeysHeader = "X-Provider-Keys"
	// ProviderOverridesHeader has the same shape and wins over everything.
	ProviderOverridesHeader = "X-Provider-Overrides"
)

// Catalog is the aggregation engine as seen by the HTTP layer.
type Catalog interface {
	Aggregate(ctx context.Context, creds catalog.Credentials, forceRefresh bool) *api.AggregatedResponse
	ModelDetails(ctx context.Context, creds catalog.Credentials, id string) (api.ModelInfo, bool)
	CheckCapability(ctx context.Context, creds catalog.Credentials, id string, c api.Capability) bool
	ClearCache(ctx context.Context, providerKey string) error
	CacheStats(ctx context.Context) (api.CacheStats, error)
	Providers() []catalog.Provider
}

// EnvironmentFunc returns the process-wide provider keys. It is called per
// request so rotated keys are picked up without a restart.
type EnvironmentFunc func() map[string]string

// credentials builds the credential context of one request.
func credentials(c *gin.Context, env EnvironmentFunc) (catalog.Credentials, error) {
	user, err := keyHeader(c, ProviderKeysHeader)
	if err != nil {
		return catalog.Credentials{}, err
	}
	overrides, err := keyHeader(c, ProviderOverridesHeader)
	if err != nil {
		return catalog.Credentials{}, err
	}

	creds := catalog.Credentials{User: user, Overrides: overrides}
	if env != nil {
		creds.Environment = env()
	}
	return creds, nil
}

func keyHeader(c *gin.Context, name string) (map[string]string, error) {
	raw := c.GetHeader(name)
	if raw == "" {
		return nil, nil
	}
	var keys map[string]string
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		return nil, api.BadRequestError(
			fmt.Sprintf("%s must be a JSON object of credential key to API key", name),
			api.WithExtension("header", name),
		)
	}
	return keys, nil
}
