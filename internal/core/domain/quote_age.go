package domain

import (
	"fmt"

	"github.com/SscSPs/crypto_converter/internal/apperrors"
)

// QuoteAge is the non-negative elapsed time, in seconds, between a quote's
// timestamp and some reference time.
type QuoteAge struct {
	seconds float64
}

// NewQuoteAge validates that the elapsed time is non-negative.
func NewQuoteAge(seconds float64) (QuoteAge, error) {
	if seconds < 0 {
		return QuoteAge{}, fmt.Errorf("%w: quote age cannot be negative: %f", apperrors.ErrValidation, seconds)
	}
	return QuoteAge{seconds: seconds}, nil
}

// QuoteAgeBetween computes the age of quoteTime relative to referenceTime.
func QuoteAgeBetween(quoteTime, referenceTime TimestampUTC) (QuoteAge, error) {
	return NewQuoteAge(quoteTime.AgeSeconds(&referenceTime))
}

// QuoteAgeSince computes the age of quoteTime relative to now.
func QuoteAgeSince(quoteTime TimestampUTC) (QuoteAge, error) {
	return NewQuoteAge(quoteTime.AgeSeconds(nil))
}

// Seconds returns the age in seconds.
func (a QuoteAge) Seconds() float64 { return a.seconds }

// IsFresh reports whether the age is within the threshold. The boundary is
// inclusive on the fresh side: age == maxAgeSeconds is still fresh.
func (a QuoteAge) IsFresh(maxAgeSeconds int) bool {
	return a.seconds <= float64(maxAgeSeconds)
}

// IsStale is the negation of IsFresh.
func (a QuoteAge) IsStale(maxAgeSeconds int) bool {
	return !a.IsFresh(maxAgeSeconds)
}
