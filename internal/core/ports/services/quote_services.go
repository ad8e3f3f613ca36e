package services

import (
	"context"

	"github.com/SscSPs/crypto_converter/internal/core/domain"
)

// ConversionRequest is the input to a conversion query.
// At == nil requests the latest quote; otherwise the most recent quote at or
// before At is used and freshness is judged against At.
type ConversionRequest struct {
	Pair   domain.Pair
	Amount domain.Amount
	At     *domain.TimestampUTC
}

// ConversionResponse is the outcome of a conversion query.
type ConversionResponse struct {
	OriginalAmount  domain.Amount
	ConvertedAmount domain.Amount
	Rate            domain.Rate
	Timestamp       domain.TimestampUTC
}

// StoreQuotesResult reports how many quotes a store command received.
type StoreQuotesResult struct {
	TotalReceived int
}

// ConversionSvcFacade exposes the read path consumed by the API layer.
type ConversionSvcFacade interface {
	// GetConversion fails with apperrors.ErrQuoteNotFound or
	// apperrors.ErrQuoteTooOld.
	GetConversion(ctx context.Context, req ConversionRequest) (*ConversionResponse, error)
}

// QuoteStoreSvcFacade exposes the write path consumed by the ingestion consumer.
type QuoteStoreSvcFacade interface {
	// StoreQuotes persists a batch. It succeeds as long as the durable store
	// accepts the write, even if the secondary cache write fails.
	StoreQuotes(ctx context.Context, quotes []domain.Quote) (*StoreQuotesResult, error)
}

// QuoteSvcFacade combines the conversion read path and the quote write path.
type QuoteSvcFacade interface {
	ConversionSvcFacade
	QuoteStoreSvcFacade
}
