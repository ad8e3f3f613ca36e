package domain

import (
	"fmt"

	"github.com/SscSPs/crypto_converter/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Amount is a non-negative monetary quantity.
// Construction goes through services.AmountFactory so values are normalized
// to the precision policy before they reach the rest of the system.
type Amount struct {
	value decimal.Decimal
}

// NewAmount wraps a decimal value, rejecting negatives.
func NewAmount(value decimal.Decimal) (Amount, error) {
	if value.IsNegative() {
		return Amount{}, fmt.Errorf("%w: amount cannot be negative: %s", apperrors.ErrValidation, value)
	}
	return Amount{value: value}, nil
}

// Value returns the underlying decimal.
func (a Amount) Value() decimal.Decimal { return a.value }

// Mul returns a new Amount scaled by the given factor.
func (a Amount) Mul(factor decimal.Decimal) Amount {
	return Amount{value: a.value.Mul(factor)}
}

// IsZero reports whether the amount is exactly zero.
func (a Amount) IsZero() bool { return a.value.IsZero() }

func (a Amount) String() string { return a.value.String() }
