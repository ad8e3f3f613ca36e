package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is the persistence model for the quotes table. The table is
// append-only, keyed by (symbol, quote_timestamp); new rates supersede old
// rows rather than overwriting them.
type Quote struct {
	Symbol         string          `json:"symbol"`        // Composite PK, e.g. "BTCUSDT"
	BaseCurrency   string          `json:"baseCurrency"`  // e.g. "BTC"
	QuoteCurrency  string          `json:"quoteCurrency"` // e.g. "USDT"
	Rate           decimal.Decimal `json:"rate"`          // numeric(36,8)
	QuoteTimestamp time.Time       `json:"quoteTimestamp"`
	CreatedAt      time.Time       `json:"createdAt"`
}
