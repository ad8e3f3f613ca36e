package composite

import (
	"context"
	"log/slog"

	"github.com/SscSPs/crypto_converter/internal/core/domain"
	"github.com/SscSPs/crypto_converter/internal/core/ports/repositories"
)

// QuoteRepository layers a cache in front of the durable store for reads.
// Latest-quote lookups try the cache first and fall back to the store on a
// miss; historical lookups skip the cache entirely.
type QuoteRepository struct {
	cache  repositories.QuoteReader
	store  repositories.QuoteReader
	logger *slog.Logger
}

// NewQuoteRepository creates a new composite QuoteRepository.
func NewQuoteRepository(cache, store repositories.QuoteReader, logger *slog.Logger) *QuoteRepository {
	return &QuoteRepository{cache: cache, store: store, logger: logger}
}

// GetLatest returns the latest quote for a pair, consulting the cache before
// the store. A nil quote with a nil error means neither tier has the pair.
func (r *QuoteRepository) GetLatest(ctx context.Context, pair domain.Pair) (*domain.Quote, error) {
	quote, err := r.cache.GetLatest(ctx, pair)
	if err != nil {
		return nil, err
	}
	if quote != nil {
		return quote, nil
	}

	r.logger.Debug("cache miss, reading from store", slog.String("symbol", pair.Symbol()))
	return r.store.GetLatest(ctx, pair)
}

// GetLatestBefore resolves historical lookups against the store only.
func (r *QuoteRepository) GetLatestBefore(ctx context.Context, pair domain.Pair, timestamp domain.TimestampUTC) (*domain.Quote, error) {
	return r.store.GetLatestBefore(ctx, pair, timestamp)
}
