package binance

import (
	"fmt"
	"strings"

	"github.com/SscSPs/crypto_converter/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ServerTime is the response of GET /api/v3/time.
//
// Example: {"serverTime": 1499827319559}
type ServerTime struct {
	ServerTimeMs int64 `json:"serverTime"`
}

// Validate rejects the zero value left behind by a missing field.
func (t ServerTime) Validate() error {
	if t.ServerTimeMs <= 0 {
		return fmt.Errorf("invalid server time response: serverTime missing or non-positive")
	}
	return nil
}

// AsTimestamp converts the millisecond epoch value to a domain timestamp.
func (t ServerTime) AsTimestamp() domain.TimestampUTC {
	return domain.TimestampFromUnixMilli(t.ServerTimeMs)
}

// Ticker is one entry of GET /api/v3/ticker/price. Binance serializes the
// price as a decimal string.
//
// Example: {"symbol": "BTCUSDT", "price": "25000.50000000"}
type Ticker struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
}

// Validate enforces the shape the rest of the pipeline relies on.
func (t Ticker) Validate() error {
	if t.Symbol == "" {
		return fmt.Errorf("ticker symbol cannot be empty")
	}
	if t.Symbol != strings.ToUpper(t.Symbol) {
		return fmt.Errorf("ticker symbol must be uppercase: %q", t.Symbol)
	}
	if t.Price.IsNegative() {
		return fmt.Errorf("ticker price cannot be negative: %s@%s", t.Symbol, t.Price)
	}
	return nil
}

// SymbolInfo is one entry of the exchangeInfo symbols list.
type SymbolInfo struct {
	Symbol     string `json:"symbol"`
	BaseAsset  string `json:"baseAsset"`
	QuoteAsset string `json:"quoteAsset"`
}

// Validate checks required fields and that symbol = baseAsset + quoteAsset.
func (s SymbolInfo) Validate() error {
	if s.Symbol == "" {
		return fmt.Errorf("symbol cannot be empty")
	}
	if s.BaseAsset == "" || s.QuoteAsset == "" {
		return fmt.Errorf("symbol %q: base and quote assets are required", s.Symbol)
	}
	if expected := s.BaseAsset + s.QuoteAsset; s.Symbol != expected {
		return fmt.Errorf("symbol %q does not match base %q + quote %q", s.Symbol, s.BaseAsset, s.QuoteAsset)
	}
	return nil
}

// ExchangeInfo is the response of GET /api/v3/exchangeInfo, reduced to the
// fields this service consumes.
type ExchangeInfo struct {
	Symbols []SymbolInfo `json:"symbols"`
}

// Validate checks every listed symbol.
func (e ExchangeInfo) Validate() error {
	if e.Symbols == nil {
		return fmt.Errorf("invalid exchange info response: symbols missing")
	}
	for _, s := range e.Symbols {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}
