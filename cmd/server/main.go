package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nulzo/model-catalog-api/internal/adapters/cache/memory"
	rediscache "github.com/nulzo/model-catalog-api/internal/adapters/cache/redis"
	"github.com/nulzo/model-catalog-api/internal/analytics"
	"github.com/nulzo/model-catalog-api/internal/catalog"
	"github.com/nulzo/model-catalog-api/internal/catalog/blocklist"
	"github.com/nulzo/model-catalog-api/internal/cli"
	"github.com/nulzo/model-catalog-api/internal/config"
	"github.com/nulzo/model-catalog-api/internal/platform/clock"
	"github.com/nulzo/model-catalog-api/internal/platform/logger"
	"github.com/nulzo/model-catalog-api/internal/platform/metrics"
	"github.com/nulzo/model-catalog-api/internal/platform/otel"
	"github.com/nulzo/model-catalog-api/internal/scheduler"
	"github.com/nulzo/model-catalog-api/internal/server"
	"github.com/nulzo/model-catalog-api/internal/store/cache"
	"github.com/nulzo/model-catalog-api/internal/store/sqlstore"
	"github.com/nulzo/model-catalog-api/internal/version"
	"github.com/nulzo/model-catalog-api/pkg/api"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	// Catalog parsers register themselves by provider type
	_ "github.com/nulzo/model-catalog-api/internal/catalog/parser/openaicompat"
	_ "github.com/nulzo/model-catalog-api/internal/catalog/parser/openrouter"
	_ "github.com/nulzo/model-catalog-api/internal/catalog/parser/requesty"
)

const banner = `
              _     _               _        _
  _ __   ___ | | __| | ___ _  __ __| |_ __ _| | ___   __ _
 | '  \ / _ \| |/ _' |/ -_) | / _/ _' | _/ _' | |/ _ \ / _' |
 |_|_|_|\___/|_|\__,_|\___|_| \__\__,_|\__\__,_|_|\___/ \__, |
                                                       |___/`

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Initialize(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		EnableColor: cfg.Log.Color,
	})
	defer logger.Sync()
	log := logger.Get()

	if cfg.Log.Format != "json" {
		fmt.Println(cli.Gradient(banner, cli.BrandBlue, cli.BrandPurple))
		fmt.Printf("  %s %s\n\n", cli.Style("version", cli.DimCode), cli.Style(version.Version, cli.Bold))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("Server exited with error", zap.Error(err))
	}
	log.Info("Server stopped")
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	shutdownTracer, err := otel.InitTracer(cfg.Telemetry.ServiceName, cfg.Telemetry.Enabled, log, os.Stdout)
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			log.Warn("Tracer shutdown failed", zap.Error(err))
		}
	}()

	if cfg.Server.CheckUpdates {
		go version.NewChecker().WarnIfOutdated(ctx, log)
	}

	providers, err := catalog.BuildProviders(cfg.Providers, log)
	if err != nil {
		return err
	}

	blocked, err := blocklist.Load(cfg.Catalog.BlocklistPath)
	if err != nil {
		return err
	}
	if blocked.Len() > 0 {
		log.Info("Loaded model blocklist", zap.Int("models", blocked.Len()))
	}

	store, closeStore, err := cacheStore(ctx, cfg.Redis, log)
	if err != nil {
		return err
	}
	defer closeStore()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	clk := clock.Real{}
	client := &http.Client{}
	fetcher := catalog.NewFetcher(
		client,
		catalog.NewRateLimiter(clk, catalog.RateLimitPolicies(providers)),
		catalog.NewProber(client, cfg.Catalog.HealthTimeout, log),
		blocked,
		clk,
		catalog.FetcherConfig{
			Referer:        cfg.Catalog.Referer,
			Title:          cfg.Catalog.Title,
			RequestTimeout: cfg.Catalog.RequestTimeout,
		},
		log,
	)
	providerCache := catalog.NewProviderCache(store, cfg.Catalog.CacheTTL, clk, log)

	opts := []catalog.Option{
		catalog.WithClock(clk),
		catalog.WithLogger(log),
		catalog.WithObserver(m),
		catalog.WithParallel(cfg.Catalog.Parallel),
	}

	deps := server.Deps{
		Environment: func() map[string]string {
			return catalog.EnvironmentKeys(providers, nil)
		},
		Metrics:  m,
		Gatherer: reg,
	}

	if cfg.Database.Enabled {
		repo, err := sqlstore.Open(cfg.Database.Driver, cfg.Database.DSN, log)
		if err != nil {
			return err
		}
		defer repo.Close()

		ingestor := analytics.NewIngestor(log, repo)
		// Outlives ctx so checks recorded while the server drains are still flushed.
		ingestor.Start(context.Background())
		defer ingestor.Stop()

		opts = append(opts, catalog.WithRecorder(ingestor))
		deps.Analytics = analytics.NewService(repo)
	}

	aggregator := catalog.NewAggregator(providers, fetcher, providerCache, opts...)
	deps.Catalog = aggregator

	if minutes := cfg.Catalog.RefreshIntervalMinutes; minutes > 0 {
		refresh := scheduler.RefreshFunc(func(ctx context.Context) *api.AggregatedResponse {
			env := deps.Environment()
			return aggregator.Aggregate(ctx, catalog.Credentials{Environment: env}, true)
		})
		go func() {
			if err := scheduler.New(refresh, minutes, log).Run(ctx); err != nil {
				log.Error("Catalog refresh scheduler stopped", zap.Error(err))
			}
		}()
	}

	return server.New(cfg, log, deps).Run(ctx)
}

// cacheStore picks the provider cache backend. Redis is used only when
// enabled and reachable at startup.
func cacheStore(ctx context.Context, cfg config.RedisConfig, log *zap.Logger) (cache.Store, func(), error) {
	if !cfg.Enabled {
		log.Info("Using in-memory provider cache")
		return memory.NewMemoryCache(), func() {}, nil
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("redis unavailable at %s: %w", cfg.Addr, err)
	}

	log.Info("Using redis provider cache", zap.String("addr", cfg.Addr), zap.String("prefix", cfg.KeyPrefix))
	return rediscache.NewRedisCache(client, cfg.KeyPrefix), func() { _ = client.Close() }, nil
}
