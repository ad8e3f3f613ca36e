package services

import (
	"fmt"

	"github.com/SscSPs/crypto_converter/internal/apperrors"
	"github.com/SscSPs/crypto_converter/internal/core/domain"
)

// FreshnessPolicy bounds how old a quote may be before conversions reject it.
type FreshnessPolicy struct {
	MaxAgeSeconds int
}

// DefaultFreshnessPolicy allows quotes up to 60 seconds old.
func DefaultFreshnessPolicy() FreshnessPolicy {
	return FreshnessPolicy{MaxAgeSeconds: 60}
}

// QuoteFreshnessService decides whether quotes are fresh enough to use.
type QuoteFreshnessService struct {
	policy FreshnessPolicy
}

// NewQuoteFreshnessService creates a QuoteFreshnessService.
func NewQuoteFreshnessService(policy FreshnessPolicy) *QuoteFreshnessService {
	return &QuoteFreshnessService{policy: policy}
}

// ValidateFreshness returns apperrors.ErrQuoteTooOld when the quote's age,
// relative to the reference time (nil = now), exceeds the policy threshold.
// A quote exactly at the threshold is still fresh.
func (s *QuoteFreshnessService) ValidateFreshness(quote domain.Quote, referenceTime *domain.TimestampUTC) error {
	age, err := quote.Age(referenceTime)
	if err != nil {
		return err
	}

	if age.IsStale(s.policy.MaxAgeSeconds) {
		return fmt.Errorf("%w: quote for %s is %.1fs old, max age is %ds",
			apperrors.ErrQuoteTooOld, quote.Pair(), age.Seconds(), s.policy.MaxAgeSeconds)
	}

	return nil
}

// IsFresh is the non-failing form of ValidateFreshness.
func (s *QuoteFreshnessService) IsFresh(quote domain.Quote, referenceTime *domain.TimestampUTC) bool {
	return s.ValidateFreshness(quote, referenceTime) == nil
}

// FilterFreshQuotes drops stale quotes from the slice, preserving order.
func (s *QuoteFreshnessService) FilterFreshQuotes(quotes []domain.Quote, referenceTime *domain.TimestampUTC) []domain.Quote {
	fresh := make([]domain.Quote, 0, len(quotes))
	for _, q := range quotes {
		if s.IsFresh(q, referenceTime) {
			fresh = append(fresh, q)
		}
	}
	return fresh
}
