package binance

import (
	"log/slog"

	"github.com/SscSPs/crypto_converter/internal/core/domain"
	"github.com/SscSPs/crypto_converter/internal/core/services"
)

// Mapper converts Binance API payloads into domain objects.
type Mapper struct {
	rateFactory *services.RateFactory
	logger      *slog.Logger
}

// NewMapper creates a Mapper.
func NewMapper(rateFactory *services.RateFactory, logger *slog.Logger) *Mapper {
	return &Mapper{rateFactory: rateFactory, logger: logger}
}

// ToPair converts exchange symbol metadata into a domain pair.
func (m *Mapper) ToPair(info SymbolInfo) (domain.Pair, error) {
	return domain.NewPairFromCodes(info.BaseAsset, info.QuoteAsset)
}

// ToPairs converts the tracked symbol list, dropping entries whose assets do
// not form a valid pair.
func (m *Mapper) ToPairs(info ExchangeInfo) []domain.Pair {
	pairs := make([]domain.Pair, 0, len(info.Symbols))
	for _, sym := range info.Symbols {
		pair, err := m.ToPair(sym)
		if err != nil {
			m.logger.Warn("skipping invalid symbol",
				slog.String("symbol", sym.Symbol),
				slog.String("error", err.Error()),
			)
			continue
		}
		pairs = append(pairs, pair)
	}
	return pairs
}

// TickersToQuotes maps the ticker list onto the tracked pairs, all stamped
// with the provider's server time. Tickers with a non-positive price and
// symbols with no tracked pair are dropped.
func (m *Mapper) TickersToQuotes(tickers []Ticker, pairs []domain.Pair, timestamp domain.TimestampUTC) []domain.Quote {
	bySymbol := make(map[string]Ticker, len(tickers))
	for _, t := range tickers {
		bySymbol[t.Symbol] = t
	}

	quotes := make([]domain.Quote, 0, len(pairs))
	for _, pair := range pairs {
		ticker, ok := bySymbol[pair.Symbol()]
		if !ok {
			continue
		}

		if !ticker.Price.IsPositive() {
			m.logger.Debug("skipping non-positive ticker",
				slog.String("symbol", ticker.Symbol),
				slog.String("price", ticker.Price.String()),
			)
			continue
		}

		rate, err := m.rateFactory.Create(ticker.Price)
		if err != nil {
			m.logger.Warn("skipping invalid ticker",
				slog.String("symbol", ticker.Symbol),
				slog.String("price", ticker.Price.String()),
				slog.String("error", err.Error()),
			)
			continue
		}

		quotes = append(quotes, domain.NewQuote(pair, rate, timestamp))
	}

	return quotes
}
