package services

import (
	"fmt"

	"github.com/SscSPs/crypto_converter/internal/apperrors"
	"github.com/SscSPs/crypto_converter/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PrecisionPolicy defines the quantization applied to amounts and rates.
// Rounding is half-up (away from zero for the non-negative values used here).
type PrecisionPolicy struct {
	AmountFractionDigits int32
	RateFractionDigits   int32
}

// DefaultPrecisionPolicy quantizes both amounts and rates to 8 fractional digits.
func DefaultPrecisionPolicy() PrecisionPolicy {
	return PrecisionPolicy{
		AmountFractionDigits: 8,
		RateFractionDigits:   8,
	}
}

// PrecisionService normalizes decimal values to the configured precision.
// Pure functions, no side effects; used by the Amount/Rate factories and by
// every mapper crossing a storage or wire boundary.
type PrecisionService struct {
	policy PrecisionPolicy
}

// NewPrecisionService creates a PrecisionService with the given policy.
func NewPrecisionService(policy PrecisionPolicy) *PrecisionService {
	return &PrecisionService{policy: policy}
}

// NormalizeAmount rounds an amount value half-up to the policy precision.
func (s *PrecisionService) NormalizeAmount(value decimal.Decimal) decimal.Decimal {
	return value.Round(s.policy.AmountFractionDigits)
}

// NormalizeRate rounds a rate value half-up to the policy precision.
func (s *PrecisionService) NormalizeRate(value decimal.Decimal) decimal.Decimal {
	return value.Round(s.policy.RateFractionDigits)
}

// ValidatePrecision reports whether a value already matches the given
// quantization, e.g. ValidatePrecision(d, 2) for cent-level values.
func (s *PrecisionService) ValidatePrecision(value decimal.Decimal, fractionDigits int32) bool {
	return value.Equal(value.Round(fractionDigits))
}

// AmountFactory builds normalized Amount values.
type AmountFactory struct {
	precision *PrecisionService
}

// NewAmountFactory creates an AmountFactory.
func NewAmountFactory(precision *PrecisionService) *AmountFactory {
	return &AmountFactory{precision: precision}
}

// Create normalizes the value and builds an Amount, rejecting negatives.
func (f *AmountFactory) Create(value decimal.Decimal) (domain.Amount, error) {
	return domain.NewAmount(f.precision.NormalizeAmount(value))
}

// FromString parses and normalizes a decimal string into an Amount.
func (f *AmountFactory) FromString(value string) (domain.Amount, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return domain.Amount{}, fmt.Errorf("%w: invalid amount %q", apperrors.ErrValidation, value)
	}
	return f.Create(d)
}

// minRate is the floor applied to rates after normalization; anything lower
// would quantize to zero and produce degenerate conversions.
var minRate = decimal.New(1, -8)

// RateFactory builds normalized Rate values.
type RateFactory struct {
	precision *PrecisionService
}

// NewRateFactory creates a RateFactory.
func NewRateFactory(precision *PrecisionService) *RateFactory {
	return &RateFactory{precision: precision}
}

// Create normalizes the value and builds a Rate. Non-positive values are
// rejected; positive values below the minimum rate are floored to it.
func (f *RateFactory) Create(value decimal.Decimal) (domain.Rate, error) {
	normalized := f.precision.NormalizeRate(value)

	if !value.IsPositive() {
		return domain.Rate{}, fmt.Errorf("%w: rate must be positive, got %s", apperrors.ErrValidation, value)
	}
	if normalized.LessThan(minRate) {
		normalized = minRate
	}

	return domain.NewRate(normalized)
}

// FromString parses and normalizes a decimal string into a Rate.
func (f *RateFactory) FromString(value string) (domain.Rate, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return domain.Rate{}, fmt.Errorf("%w: invalid rate %q", apperrors.ErrValidation, value)
	}
	return f.Create(d)
}
