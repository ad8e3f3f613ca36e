package redisrepo

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/SscSPs/crypto_converter/internal/core/domain"
	"github.com/SscSPs/crypto_converter/internal/core/services"
	"github.com/SscSPs/crypto_converter/internal/platform/metrics"
)

const keyPrefix = "quote:latest:"

func cacheKey(pair domain.Pair) string {
	return keyPrefix + pair.Symbol()
}

// QuoteCache serves the latest quote per pair from Redis. It is strictly a
// read-through accelerator: every failure, including unreachable Redis and
// corrupt payloads, is reported as a cache miss so callers fall back to the
// durable store.
type QuoteCache struct {
	client      *redis.Client
	rateFactory *services.RateFactory
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// NewQuoteCache creates a new QuoteCache.
func NewQuoteCache(client *redis.Client, rateFactory *services.RateFactory, m *metrics.Metrics, logger *slog.Logger) *QuoteCache {
	return &QuoteCache{
		client:      client,
		rateFactory: rateFactory,
		metrics:     m,
		logger:      logger,
	}
}

// GetLatest returns the cached quote for a pair, or nil on any kind of miss.
func (c *QuoteCache) GetLatest(ctx context.Context, pair domain.Pair) (*domain.Quote, error) {
	key := cacheKey(pair)

	data, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache read failed, treating as miss",
				slog.String("key", key), slog.String("error", err.Error()))
		}
		c.metrics.CacheMisses.Inc()
		return nil, nil
	}

	var cached cachedQuote
	if err := json.Unmarshal([]byte(data), &cached); err != nil {
		c.logger.Warn("cache payload is not valid JSON, treating as miss",
			slog.String("key", key), slog.String("error", err.Error()))
		c.metrics.CacheMisses.Inc()
		return nil, nil
	}

	quote, err := cached.toDomain(pair, c.rateFactory)
	if err != nil {
		c.logger.Warn("cache payload failed validation, treating as miss",
			slog.String("key", key), slog.String("error", err.Error()))
		c.metrics.CacheMisses.Inc()
		return nil, nil
	}

	c.metrics.CacheHits.Inc()
	return &quote, nil
}

// GetLatestBefore always misses. The cache holds only the single latest quote
// per pair, so historical lookups must go to the durable store.
func (c *QuoteCache) GetLatestBefore(ctx context.Context, pair domain.Pair, timestamp domain.TimestampUTC) (*domain.Quote, error) {
	return nil, nil
}

// QuoteCacheWriter refreshes cache entries after quotes are persisted. Writes
// are best-effort: failures are logged and counted but never surfaced, since
// the durable store already holds the data.
type QuoteCacheWriter struct {
	client  *redis.Client
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewQuoteCacheWriter creates a new QuoteCacheWriter.
func NewQuoteCacheWriter(client *redis.Client, ttl time.Duration, m *metrics.Metrics, logger *slog.Logger) *QuoteCacheWriter {
	return &QuoteCacheWriter{
		client:  client,
		ttl:     ttl,
		metrics: m,
		logger:  logger,
	}
}

// SaveBatch writes every quote of the batch to its cache key in one pipeline.
// Later quotes for the same pair within the batch win.
func (w *QuoteCacheWriter) SaveBatch(ctx context.Context, quotes []domain.Quote) error {
	if len(quotes) == 0 {
		return nil
	}

	pipe := w.client.Pipeline()
	for _, quote := range quotes {
		data, err := json.Marshal(toCachedQuote(quote))
		if err != nil {
			w.logger.Warn("failed to encode quote for cache",
				slog.String("symbol", quote.Pair().Symbol()), slog.String("error", err.Error()))
			w.metrics.CacheWriteFailures.Inc()
			continue
		}
		pipe.Set(ctx, cacheKey(quote.Pair()), data, w.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		w.logger.Warn("cache write pipeline failed",
			slog.Int("count", len(quotes)), slog.String("error", err.Error()))
		w.metrics.CacheWriteFailures.Inc()
	}
	return nil
}
