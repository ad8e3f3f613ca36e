package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/SscSPs/crypto_converter/internal/consumer"
	"github.com/SscSPs/crypto_converter/internal/core/services"
	"github.com/SscSPs/crypto_converter/internal/handlers"
	"github.com/SscSPs/crypto_converter/internal/platform/config"
	"github.com/SscSPs/crypto_converter/internal/platform/metrics"
	"github.com/SscSPs/crypto_converter/internal/providers/binance"
	"github.com/SscSPs/crypto_converter/internal/repositories/cache/redisrepo"
	"github.com/SscSPs/crypto_converter/internal/repositories/composite"
	"github.com/SscSPs/crypto_converter/internal/repositories/database/pgsql"
	"github.com/SscSPs/crypto_converter/internal/scheduler"
	"github.com/SscSPs/crypto_converter/pkg/cache"
	"github.com/SscSPs/crypto_converter/pkg/database"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database connection pool (for application use)
	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)

	if err := runMigrations(cfg.DatabaseURL, logger); err != nil {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	redisClient, err := cache.NewRedisClient(ctx, cache.RedisOptions{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		logger.Error("Failed to initialize Redis client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cache.CloseRedisClient(redisClient)

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	// Domain services
	precision := services.NewPrecisionService(services.DefaultPrecisionPolicy())
	amountFactory := services.NewAmountFactory(precision)
	rateFactory := services.NewRateFactory(precision)
	freshness := services.NewQuoteFreshnessService(services.FreshnessPolicy{
		MaxAgeSeconds: cfg.MaxQuoteAgeSeconds(),
	})
	conversion := services.NewConversionService(freshness)

	// Storage tiers
	storeReader := pgsql.NewPgxQuoteRepository(dbPool, rateFactory, logger)
	storeWriter := pgsql.NewPgxQuoteWriter(dbPool, logger)
	cacheReader := redisrepo.NewQuoteCache(redisClient, rateFactory, m, logger)
	cacheWriter := redisrepo.NewQuoteCacheWriter(redisClient, cfg.CacheTTL, m, logger)
	reader := composite.NewQuoteRepository(cacheReader, storeReader, logger)
	writer := composite.NewQuoteWriter(storeWriter, cacheWriter, m, logger)

	quoteService := services.NewQuoteService(reader, writer, conversion, logger)

	// Rate ingestion pipeline
	client := binance.NewClient(binance.ClientConfig{
		BaseURL:               cfg.ProviderBaseURL,
		Timeout:               cfg.ProviderTimeout,
		MaxConnections:        cfg.ProviderMaxConns,
		MaxConnectionsPerHost: cfg.ProviderMaxConnsPerHost,
		BreakerEnabled:        cfg.BreakerEnabled,
		BreakerThreshold:      cfg.BreakerThreshold,
		BreakerRecovery:       cfg.BreakerRecovery,
	}, logger)
	mapper := binance.NewMapper(rateFactory, logger)
	rateSource := binance.NewStreamingRateSource(client, mapper,
		scheduler.NewFixedRateScheduler(logger),
		binance.RateSourceConfig{
			RatesInterval:   cfg.RatesInterval,
			SymbolsInterval: cfg.SymbolsInterval,
			QueueCapacity:   cfg.QueueCapacity,
			ShutdownGrace:   cfg.ShutdownGrace,
		}, logger)

	quoteConsumer := consumer.New(rateSource, quoteService, logger)
	consumerErr := make(chan error, 1)
	go func() {
		consumerErr <- quoteConsumer.Run(ctx)
	}()

	// HTTP API
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, handlers.Dependencies{
		ConversionService: quoteService,
		AmountFactory:     amountFactory,
		Metrics:           m,
		Registry:          registry,
		DB:                dbPool,
		Cache:             redisClient,
		Logger:            logger,
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		serverErr <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-serverErr:
		logger.Error("Server failed to run", slog.String("error", err.Error()))
	case err := <-consumerErr:
		if err != nil {
			logger.Error("Quote consumer failed", slog.String("error", err.Error()))
		}
	}

	// Stop ingestion first so no more writes are in flight, then drain HTTP.
	stop()
	if err := quoteConsumer.Stop(); err != nil {
		logger.Error("Failed to stop quote consumer", slog.String("error", err.Error()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", slog.String("error", err.Error()))
	}
	logger.Info("Shutdown complete")
}

// runMigrations applies all pending "up" migrations using a short-lived
// database/sql connection.
func runMigrations(databaseURL string, logger *slog.Logger) error {
	logger.Info("Running database migrations...")

	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()

	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	upErr := m.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return upErr
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if errors.Is(upErr, migrate.ErrNoChange) {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
