package composite

import (
	"context"
	"log/slog"

	"github.com/SscSPs/crypto_converter/internal/core/domain"
	"github.com/SscSPs/crypto_converter/internal/core/ports/repositories"
	"github.com/SscSPs/crypto_converter/internal/platform/metrics"
)

// QuoteWriter persists batches to the durable store first and then refreshes
// the cache. Store failures abort the write and propagate; cache refresh is
// best-effort and never fails the batch.
type QuoteWriter struct {
	store   repositories.QuoteWriter
	cache   repositories.QuoteWriter
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewQuoteWriter creates a new composite QuoteWriter.
func NewQuoteWriter(store, cache repositories.QuoteWriter, m *metrics.Metrics, logger *slog.Logger) *QuoteWriter {
	return &QuoteWriter{store: store, cache: cache, metrics: m, logger: logger}
}

// SaveBatch writes the batch through both tiers. The cache is only touched
// once the store write succeeded, so the cache never holds a quote the store
// does not.
func (w *QuoteWriter) SaveBatch(ctx context.Context, quotes []domain.Quote) error {
	if err := w.store.SaveBatch(ctx, quotes); err != nil {
		return err
	}
	w.metrics.QuotesStored.WithLabelValues("postgres").Add(float64(len(quotes)))

	if err := w.cache.SaveBatch(ctx, quotes); err != nil {
		// Cache writers swallow their own failures; guard anyway.
		w.logger.Warn("cache refresh failed after store write",
			slog.Int("count", len(quotes)), slog.String("error", err.Error()))
		return nil
	}
	w.metrics.QuotesStored.WithLabelValues("redis").Add(float64(len(quotes)))
	return nil
}
