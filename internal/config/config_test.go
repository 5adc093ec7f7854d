package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Chdir(t.TempDir())
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SERVER_ENV", "test")
	t.Setenv("REDIS_ENABLED", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "test", cfg.Server.Env)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, time.Hour, cfg.Catalog.CacheTTL)
	assert.Equal(t, "catalog:", cfg.Redis.KeyPrefix)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Empty(t, cfg.Providers)
}

func TestLoadConfig_Providers(t *testing.T) {
	configContent := `
catalog:
  cache_ttl: 10m
  parallel: true
providers:
  - key: "openrouter"
    name: "OpenRouter"
    type: "openrouter"
    endpoint: "https://openrouter.ai/api/v1/models"
    credential_key: "OPENROUTER_API_KEY"
    health_check: "https://openrouter.ai/api/v1/auth/key"
    enabled: true
    rate_limit:
      requests_per_window: 10
      window: 1m
    retry:
      max_retries: 2
      initial_backoff: 500ms
  - key: "requesty"
    name: "Requesty"
    type: "requesty"
    endpoint: "https://router.requesty.ai/v1/models"
    credential_key: "REQUESTY_API_KEY"
    enabled: false
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(configContent), 0o644))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 10*time.Minute, cfg.Catalog.CacheTTL)
	assert.True(t, cfg.Catalog.Parallel)
	require.Len(t, cfg.Providers, 2)

	or := cfg.Providers[0]
	assert.Equal(t, "openrouter", or.Key)
	assert.Equal(t, "OPENROUTER_API_KEY", or.CredentialKey)
	assert.True(t, or.Enabled)
	require.NotNil(t, or.RateLimit)
	assert.Equal(t, 10, or.RateLimit.RequestsPerWindow)
	assert.Equal(t, time.Minute, or.RateLimit.Window)
	require.NotNil(t, or.Retry)
	assert.Equal(t, 2, or.Retry.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, or.Retry.InitialBackoff)

	assert.False(t, cfg.Providers[1].Enabled)
	assert.Nil(t, cfg.Providers[1].RateLimit)
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("providers: [unterminated"), 0o644))
	t.Setenv("CONFIG_FILE", path)

	_, err := LoadConfig()
	assert.Error(t, err)
}
