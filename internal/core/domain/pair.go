package domain

import (
	"fmt"

	"github.com/SscSPs/crypto_converter/internal/apperrors"
)

// Pair is an ordered (base, quote) currency tuple, e.g. BTC/USDT.
type Pair struct {
	base  Currency
	quote Currency
}

// NewPair builds a pair from two currencies. Base and quote must differ.
func NewPair(base, quote Currency) (Pair, error) {
	if base.Equal(quote) {
		return Pair{}, fmt.Errorf("%w: base and quote currencies must be different: %s",
			apperrors.ErrValidation, base)
	}
	return Pair{base: base, quote: quote}, nil
}

// NewPairFromCodes builds a pair from raw currency codes.
func NewPairFromCodes(baseCode, quoteCode string) (Pair, error) {
	base, err := NewCurrency(baseCode)
	if err != nil {
		return Pair{}, err
	}
	quote, err := NewCurrency(quoteCode)
	if err != nil {
		return Pair{}, err
	}
	return NewPair(base, quote)
}

// Base returns the base currency (the currency being priced).
func (p Pair) Base() Currency { return p.base }

// Quote returns the quote currency (the currency the rate is expressed in).
func (p Pair) Quote() Currency { return p.quote }

// String returns the concatenated symbol form, BTC/USDT -> "BTCUSDT".
func (p Pair) String() string { return p.base.Code() + p.quote.Code() }

// Symbol is an alias for the concatenated code used as a storage key.
func (p Pair) Symbol() string { return p.String() }

// Inverse swaps base and quote (BTC/USDT -> USDT/BTC).
func (p Pair) Inverse() Pair {
	return Pair{base: p.quote, quote: p.base}
}

// Equal reports whether two pairs have the same base and quote.
func (p Pair) Equal(other Pair) bool {
	return p.base.Equal(other.base) && p.quote.Equal(other.quote)
}
