package catalog

import (
	"testing"
	"time"

	"github.com/nulzo/model-catalog-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/nulzo/model-catalog-api/internal/catalog/parser/openaicompat"
	_ "github.com/nulzo/model-catalog-api/internal/catalog/parser/openrouter"
)

func TestBuildProviders(t *testing.T) {
	cfgs := []config.ProviderConfig{
		{
			Key: "openrouter", Name: "OpenRouter", Type: "openrouter",
			Endpoint: "https://openrouter.ai/api/v1/models", CredentialKey: "OPENROUTER_API_KEY",
			Enabled:   true,
			RateLimit: &config.ProviderRateLimit{RequestsPerWindow: 10, Window: time.Minute},
		},
		{
			Key: "disabled", Name: "Disabled", Type: "openrouter",
			Endpoint: "https://example.com/models", CredentialKey: "X",
		},
		{
			Key: "broken", Name: "Broken", Type: "openrouter",
			Endpoint: "not a url", CredentialKey: "X", Enabled: true,
		},
		{
			Key: "mystery", Name: "Mystery", Type: "unknown-kind",
			Endpoint: "https://example.com/models", CredentialKey: "X", Enabled: true,
		},
		{
			Key: "groq", Name: "Groq", Type: "openaicompat",
			Endpoint: "https://api.groq.com/openai/v1/models", CredentialKey: "GROQ_API_KEY",
			Enabled: true,
			Retry:   &config.ProviderRetryPolicy{MaxRetries: 1, InitialBackoff: 250 * time.Millisecond},
		},
		{
			Key: "groq", Name: "Groq again", Type: "openaicompat",
			Endpoint: "https://api.groq.com/openai/v1/models", CredentialKey: "GROQ_API_KEY",
			Enabled: true,
		},
	}

	providers, err := BuildProviders(cfgs, nil)
	require.NoError(t, err)
	require.Len(t, providers, 2)

	assert.Equal(t, "openrouter", providers[0].Key)
	require.NotNil(t, providers[0].RateLimit)
	assert.Equal(t, 10, providers[0].RateLimit.RequestsPerWindow)
	assert.NotNil(t, providers[0].Parse)
	assert.Equal(t, RetryPolicy{MaxRetries: DefaultMaxRetries, InitialBackoff: DefaultInitialBackoff}, providers[0].RetryPolicy())

	assert.Equal(t, "groq", providers[1].Key)
	assert.Equal(t, "Groq", providers[1].Name)
	assert.Equal(t, RetryPolicy{MaxRetries: 1, InitialBackoff: 250 * time.Millisecond}, providers[1].RetryPolicy())

	policies := RateLimitPolicies(providers)
	assert.Len(t, policies, 1)
	assert.Contains(t, policies, "openrouter")
}

func TestBuildProviders_NoneUsable(t *testing.T) {
	_, err := BuildProviders(nil, nil)
	assert.ErrorIs(t, err, ErrNoProviders)

	_, err = BuildProviders([]config.ProviderConfig{{Key: "x", Enabled: true}}, nil)
	assert.ErrorIs(t, err, ErrNoProviders)
}
