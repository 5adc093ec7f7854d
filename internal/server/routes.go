package server

import (
	"github.com/gin-gonic/gin"
	"github.com/nulzo/model-catalog-api/internal/server/middleware"
	v1 "github.com/nulzo/model-catalog-api/internal/server/v1"
	"github.com/nulzo/model-catalog-api/internal/server/validator"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func (s *Server) SetupRoutes() {
	s.router.Use(middleware.CORS())
	s.router.Use(middleware.ErrorHandler(s.logger))
	if s.deps.Metrics != nil {
		s.router.Use(middleware.Metrics(s.deps.Metrics))
	}

	healthHandler := v1.NewHealthHandler()
	s.router.GET("/health", healthHandler.Health)

	if s.deps.Gatherer != nil {
		s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{})))
	}

	validate := validator.New()
	limiter := middleware.NewRateLimiter(s.config.RateLimit.RequestsPerSecond, s.config.RateLimit.Burst, s.logger)

	api := s.router.Group("/v1")
	api.Use(otelgin.Middleware(s.config.Telemetry.ServiceName))
	api.Use(limiter.Middleware())
	{
		models := v1.NewModelHandler(s.deps.Catalog, s.deps.Environment, validate)
		api.GET("/models", models.List)
		api.GET("/models/schema", models.Schema)
		api.GET("/models/details", models.Details)
		api.GET("/models/capabilities", models.Capability)

		providers := v1.NewProviderHandler(s.deps.Catalog, s.deps.Environment)
		api.GET("/providers", providers.List)

		history := v1.NewAnalyticsHandler(s.deps.Analytics, validate)
		api.GET("/providers/:key/checks", history.Checks)
		api.GET("/analytics/uptime", history.Uptime)

		admin := api.Group("/cache")
		admin.Use(middleware.AdminAuth(s.config.Server.AdminKeys))
		{
			cache := v1.NewCacheHandler(s.deps.Catalog)
			admin.GET("/stats", cache.Stats)
			admin.DELETE("", cache.Clear)
		}
	}
}
