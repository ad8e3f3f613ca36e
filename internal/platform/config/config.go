package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/SscSPs/crypto_converter/internal/apperrors"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Quote semantics
	CacheTTL    time.Duration
	MaxQuoteAge time.Duration

	// Provider
	ProviderBaseURL         string
	ProviderTimeout         time.Duration
	ProviderMaxConns        int
	ProviderMaxConnsPerHost int

	// Circuit breaker
	BreakerEnabled   bool
	BreakerThreshold int
	BreakerRecovery  time.Duration

	// Ingestion schedule
	RatesInterval   time.Duration
	SymbolsInterval time.Duration
	QueueCapacity   int

	ShutdownGrace time.Duration
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("CACHE_TTL", "90s")
	viper.SetDefault("MAX_QUOTE_AGE", "60s")
	viper.SetDefault("PROVIDER_BASE_URL", "https://api.binance.com")
	viper.SetDefault("PROVIDER_TIMEOUT", "10s")
	viper.SetDefault("PROVIDER_MAX_CONNS", 100)
	viper.SetDefault("PROVIDER_MAX_CONNS_PER_HOST", 20)
	viper.SetDefault("BREAKER_ENABLED", true)
	viper.SetDefault("BREAKER_THRESHOLD", 5)
	viper.SetDefault("BREAKER_RECOVERY", "60s")
	viper.SetDefault("RATES_INTERVAL", "30s")
	viper.SetDefault("SYMBOLS_INTERVAL", "60s")
	viper.SetDefault("QUEUE_CAPACITY", 10)
	viper.SetDefault("SHUTDOWN_GRACE", "5s")

	viper.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:             viper.GetString("PGSQL_URL"),
		Port:                    viper.GetString("PORT"),
		IsProduction:            viper.GetBool("IS_PRODUCTION"),
		RedisAddr:               viper.GetString("REDIS_ADDR"),
		RedisPassword:           viper.GetString("REDIS_PASSWORD"),
		RedisDB:                 viper.GetInt("REDIS_DB"),
		CacheTTL:                viper.GetDuration("CACHE_TTL"),
		MaxQuoteAge:             viper.GetDuration("MAX_QUOTE_AGE"),
		ProviderBaseURL:         viper.GetString("PROVIDER_BASE_URL"),
		ProviderTimeout:         viper.GetDuration("PROVIDER_TIMEOUT"),
		ProviderMaxConns:        viper.GetInt("PROVIDER_MAX_CONNS"),
		ProviderMaxConnsPerHost: viper.GetInt("PROVIDER_MAX_CONNS_PER_HOST"),
		BreakerEnabled:          viper.GetBool("BREAKER_ENABLED"),
		BreakerThreshold:        viper.GetInt("BREAKER_THRESHOLD"),
		BreakerRecovery:         viper.GetDuration("BREAKER_RECOVERY"),
		RatesInterval:           viper.GetDuration("RATES_INTERVAL"),
		SymbolsInterval:         viper.GetDuration("SYMBOLS_INTERVAL"),
		QueueCapacity:           viper.GetInt("QUEUE_CAPACITY"),
		ShutdownGrace:           viper.GetDuration("SHUTDOWN_GRACE"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects configurations that would misbehave at runtime.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("%w: PGSQL_URL must be set", apperrors.ErrValidation)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("%w: CACHE_TTL must be positive", apperrors.ErrValidation)
	}
	if c.MaxQuoteAge <= 0 {
		return fmt.Errorf("%w: MAX_QUOTE_AGE must be positive", apperrors.ErrValidation)
	}
	// A cache entry must outlive the freshness window, otherwise the cache
	// would evict quotes that are still servable and every read would fall
	// through to the database.
	if c.CacheTTL <= c.MaxQuoteAge {
		return fmt.Errorf("%w: CACHE_TTL (%s) must be greater than MAX_QUOTE_AGE (%s)",
			apperrors.ErrValidation, c.CacheTTL, c.MaxQuoteAge)
	}
	if c.RatesInterval <= 0 || c.SymbolsInterval <= 0 {
		return fmt.Errorf("%w: RATES_INTERVAL and SYMBOLS_INTERVAL must be positive", apperrors.ErrValidation)
	}
	if c.QueueCapacity <= 0 {
		return fmt.Errorf("%w: QUEUE_CAPACITY must be positive", apperrors.ErrValidation)
	}
	if c.BreakerThreshold <= 0 {
		return fmt.Errorf("%w: BREAKER_THRESHOLD must be positive", apperrors.ErrValidation)
	}
	return nil
}

// MaxQuoteAgeSeconds returns the freshness window in whole seconds.
func (c *Config) MaxQuoteAgeSeconds() int {
	return int(c.MaxQuoteAge / time.Second)
}
