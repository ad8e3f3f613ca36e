package handlers

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	portssvc "github.com/SscSPs/crypto_converter/internal/core/ports/services"
	"github.com/SscSPs/crypto_converter/internal/core/services"
	"github.com/SscSPs/crypto_converter/internal/middleware"
	"github.com/SscSPs/crypto_converter/internal/platform/metrics"
)

// Dependencies bundles everything the HTTP layer needs.
type Dependencies struct {
	ConversionService portssvc.ConversionSvcFacade
	AmountFactory     *services.AmountFactory
	Metrics           *metrics.Metrics
	Registry          *prometheus.Registry
	DB                *pgxpool.Pool
	Cache             *redis.Client
	Logger            *slog.Logger
}

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces.
func RegisterRoutes(r *gin.Engine, deps Dependencies) {
	r.Use(middleware.StructuredLoggingMiddleware(deps.Logger))

	health := newHealthHandler(deps.DB, deps.Cache)
	r.GET("/health", health.health)

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))

	v1 := r.Group("/api/v1")
	registerConvertRoutes(v1, deps.ConversionService, deps.AmountFactory, deps.Metrics)
}
