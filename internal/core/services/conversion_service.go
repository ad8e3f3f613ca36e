package services

import (
	"github.com/SscSPs/crypto_converter/internal/core/domain"
)

// ConversionResult carries a converted amount together with the quote that
// produced it.
type ConversionResult struct {
	OriginalAmount  domain.Amount
	ConvertedAmount domain.Amount
	Quote           domain.Quote
}

// Pair returns the pair of the quote used for conversion.
func (r ConversionResult) Pair() domain.Pair { return r.Quote.Pair() }

// Rate returns the rate used for conversion.
func (r ConversionResult) Rate() domain.Rate { return r.Quote.Rate() }

// Timestamp returns the timestamp of the quote used for conversion.
func (r ConversionResult) Timestamp() domain.TimestampUTC { return r.Quote.Timestamp() }

// ConversionService applies a quote's rate to an amount after checking the
// quote is fresh enough. The rate is assumed to be source -> target; no pair
// inversion happens here.
type ConversionService struct {
	freshness *QuoteFreshnessService
}

// NewConversionService creates a ConversionService.
func NewConversionService(freshness *QuoteFreshnessService) *ConversionService {
	return &ConversionService{freshness: freshness}
}

// Convert validates freshness against the reference time (nil = now) and
// multiplies the amount by the quote's rate.
func (s *ConversionService) Convert(amount domain.Amount, quote domain.Quote, referenceTime *domain.TimestampUTC) (ConversionResult, error) {
	if err := s.freshness.ValidateFreshness(quote, referenceTime); err != nil {
		return ConversionResult{}, err
	}

	return ConversionResult{
		OriginalAmount:  amount,
		ConvertedAmount: quote.Convert(amount),
		Quote:           quote,
	}, nil
}
