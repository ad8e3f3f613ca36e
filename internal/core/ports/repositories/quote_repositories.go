package repositories

import (
	"context"

	"github.com/SscSPs/crypto_converter/internal/core/domain"
)

// QuoteReader defines read operations for quote data.
// A nil quote with a nil error means "no quote available" (a miss, not a
// failure); implementations reserve errors for real infrastructure faults.
type QuoteReader interface {
	// GetLatest retrieves the most recent quote for a pair, if any.
	GetLatest(ctx context.Context, pair domain.Pair) (*domain.Quote, error)

	// GetLatestBefore retrieves the most recent quote at or before the given
	// timestamp, if any.
	GetLatestBefore(ctx context.Context, pair domain.Pair, timestamp domain.TimestampUTC) (*domain.Quote, error)
}

// QuoteWriter defines write operations for quote data.
type QuoteWriter interface {
	// SaveBatch persists a batch of quotes. An empty batch is a no-op.
	// Redelivery of an already-stored quote must not fail or duplicate.
	SaveBatch(ctx context.Context, quotes []domain.Quote) error
}

// QuoteRepositoryFacade combines all quote-related repository interfaces.
type QuoteRepositoryFacade interface {
	QuoteReader
	QuoteWriter
}
