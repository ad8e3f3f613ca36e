package domain

import (
	"fmt"

	"github.com/SscSPs/crypto_converter/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Rate is a strictly positive conversion rate for a pair, in
// source -> target direction.
type Rate struct {
	value decimal.Decimal
}

// NewRate wraps a decimal value, rejecting zero and negatives.
// Flooring to the minimum positive rate is the RateFactory's job; by the
// time a Rate exists it is always > 0.
func NewRate(value decimal.Decimal) (Rate, error) {
	if !value.IsPositive() {
		return Rate{}, fmt.Errorf("%w: rate must be positive: %s", apperrors.ErrValidation, value)
	}
	return Rate{value: value}, nil
}

// Value returns the underlying decimal.
func (r Rate) Value() decimal.Decimal { return r.value }

// ApplyTo converts an amount using this rate.
func (r Rate) ApplyTo(amount Amount) Amount {
	return amount.Mul(r.value)
}

// Inverse returns the reciprocal rate.
func (r Rate) Inverse() Rate {
	return Rate{value: decimal.NewFromInt(1).Div(r.value)}
}

func (r Rate) String() string { return r.value.String() }
