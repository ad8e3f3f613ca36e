package domain

import (
	"fmt"
	"strings"

	"github.com/SscSPs/crypto_converter/internal/apperrors"
)

const (
	minCurrencyCodeLen = 1
	maxCurrencyCodeLen = 20
)

// Currency is a normalized currency code (e.g. "BTC", "USDT").
// Codes are stored uppercase; equality is equality of codes.
type Currency struct {
	code string
}

// NewCurrency validates and normalizes a currency code.
func NewCurrency(code string) (Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	if len(code) < minCurrencyCodeLen || len(code) > maxCurrencyCodeLen {
		return Currency{}, fmt.Errorf("%w: currency code must be %d-%d characters, got %q",
			apperrors.ErrValidation, minCurrencyCodeLen, maxCurrencyCodeLen, code)
	}

	for _, r := range code {
		if !isCurrencyCodeRune(r) {
			return Currency{}, fmt.Errorf("%w: currency code must only contain letters, numbers and underscores: %q",
				apperrors.ErrValidation, code)
		}
	}

	return Currency{code: code}, nil
}

func isCurrencyCodeRune(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_'
}

// Code returns the normalized currency code.
func (c Currency) Code() string { return c.code }

func (c Currency) String() string { return c.code }

// Equal reports whether two currencies share the same code.
func (c Currency) Equal(other Currency) bool { return c.code == other.code }
