package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig     `mapstructure:"server"`
	Log       LogConfig        `mapstructure:"log"`
	Redis     RedisConfig      `mapstructure:"redis"`
	Database  DatabaseConfig   `mapstructure:"database"`
	RateLimit RateLimitConfig  `mapstructure:"rate_limit"`
	Catalog   CatalogConfig    `mapstructure:"catalog"`
	Telemetry TelemetryConfig  `mapstructure:"telemetry"`
	Providers []ProviderConfig `mapstructure:"providers"`
}

type ServerConfig struct {
	Port         string   `mapstructure:"port"`
	Env          string   `mapstructure:"env"`
	AdminKeys    []string `mapstructure:"admin_keys"`
	CheckUpdates bool     `mapstructure:"check_updates"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}

// RateLimitConfig throttles inbound API calls per client IP.
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type CatalogConfig struct {
	CacheTTL               time.Duration `mapstructure:"cache_ttl"`
	Parallel               bool          `mapstructure:"parallel"`
	RefreshIntervalMinutes int           `mapstructure:"refresh_interval_minutes"`
	BlocklistPath          string        `mapstructure:"blocklist_path"`
	Referer                string        `mapstructure:"referer"`
	Title                  string        `mapstructure:"title"`
	RequestTimeout         time.Duration `mapstructure:"request_timeout"`
	HealthTimeout          time.Duration `mapstructure:"health_timeout"`
}

type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	Enabled   bool   `mapstructure:"enabled"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type DatabaseConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Driver  string `mapstructure:"driver"`
	DSN     string `mapstructure:"dsn"`
}

type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
}

// ProviderConfig is one upstream catalog as declared in the config file.
type ProviderConfig struct {
	Key           string               `mapstructure:"key" json:"key" validate:"required"`
	Name          string               `mapstructure:"name" json:"name" validate:"required"`
	Type          string               `mapstructure:"type" json:"type" validate:"required"`
	Endpoint      string               `mapstructure:"endpoint" json:"endpoint" validate:"required,url"`
	CredentialKey string               `mapstructure:"credential_key" json:"credential_key" validate:"required"`
	HealthCheck   string               `mapstructure:"health_check" json:"health_check,omitempty" validate:"omitempty,url"`
	Enabled       bool                 `mapstructure:"enabled" json:"enabled"`
	RateLimit     *ProviderRateLimit   `mapstructure:"rate_limit" json:"rate_limit,omitempty"`
	Retry         *ProviderRetryPolicy `mapstructure:"retry" json:"retry,omitempty"`
}

type ProviderRateLimit struct {
	RequestsPerWindow int           `mapstructure:"requests_per_window" json:"requests_per_window" validate:"gt=0"`
	Window            time.Duration `mapstructure:"window" json:"window" validate:"gt=0"`
}

type ProviderRetryPolicy struct {
	MaxRetries     int           `mapstructure:"max_retries" json:"max_retries" validate:"gte=0,lte=10"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff" json:"initial_backoff" validate:"gte=0"`
}

// LoadConfig reads configuration from file or environment variables.
// CONFIG_FILE selects an explicit file; otherwise config.yaml is searched
// in the working directory and ./config.
func LoadConfig() (*Config, error) {
	// Load .env file if present
	_ = godotenv.Load()

	v := viper.New()

	if file := os.Getenv("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.admin_keys", []string{})
	v.SetDefault("server.check_updates", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.color", true)

	v.SetDefault("rate_limit.requests_per_second", 10.0)
	v.SetDefault("rate_limit.burst", 20)

	v.SetDefault("catalog.cache_ttl", time.Hour)
	v.SetDefault("catalog.parallel", false)
	v.SetDefault("catalog.refresh_interval_minutes", 0)
	v.SetDefault("catalog.blocklist_path", "")
	v.SetDefault("catalog.referer", "https://www.chatlima.com/")
	v.SetDefault("catalog.title", "Aproject")
	v.SetDefault("catalog.request_timeout", 30*time.Second)
	v.SetDefault("catalog.health_timeout", 5*time.Second)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "catalog:")

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.dsn", "file:catalog.db?_journal_mode=WAL&_busy_timeout=5000")

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "model-catalog-api")
}
