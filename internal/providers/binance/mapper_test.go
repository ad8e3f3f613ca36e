package binance_test

import (
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/crypto_converter/internal/core/domain"
	"github.com/SscSPs/crypto_converter/internal/core/services"
	"github.com/SscSPs/crypto_converter/internal/providers/binance"
)

func newMapper() *binance.Mapper {
	precision := services.NewPrecisionService(services.DefaultPrecisionPolicy())
	return binance.NewMapper(services.NewRateFactory(precision), slog.Default())
}

func TestMapper_ToPairs(t *testing.T) {
	mapper := newMapper()

	info := binance.ExchangeInfo{Symbols: []binance.SymbolInfo{
		{Symbol: "BTCUSDT", BaseAsset: "BTC", QuoteAsset: "USDT"},
		{Symbol: "ETHETH", BaseAsset: "ETH", QuoteAsset: "ETH"}, // same base and quote, dropped
		{Symbol: "SOLUSDT", BaseAsset: "SOL", QuoteAsset: "USDT"},
	}}

	pairs := mapper.ToPairs(info)

	require.Len(t, pairs, 2)
	assert.Equal(t, "BTCUSDT", pairs[0].Symbol())
	assert.Equal(t, "SOLUSDT", pairs[1].Symbol())
}

func TestMapper_TickersToQuotes(t *testing.T) {
	mapper := newMapper()
	timestamp := domain.NowUTC()

	btc, err := domain.NewPairFromCodes("BTC", "USDT")
	require.NoError(t, err)
	eth, err := domain.NewPairFromCodes("ETH", "USDT")
	require.NoError(t, err)
	sol, err := domain.NewPairFromCodes("SOL", "USDT")
	require.NoError(t, err)

	tickers := []binance.Ticker{
		{Symbol: "BTCUSDT", Price: decimal.RequireFromString("25000.5")},
		{Symbol: "ETHUSDT", Price: decimal.Zero},                      // non-positive, dropped
		{Symbol: "DOGEUSDT", Price: decimal.RequireFromString("0.1")}, // untracked, dropped
	}

	quotes := mapper.TickersToQuotes(tickers, []domain.Pair{btc, eth, sol}, timestamp)

	// SOL has no ticker, ETH has price zero; only BTC survives.
	require.Len(t, quotes, 1)
	assert.Equal(t, "BTCUSDT", quotes[0].Pair().Symbol())
	assert.True(t, quotes[0].Rate().Value().Equal(decimal.RequireFromString("25000.5")))
	assert.True(t, quotes[0].Timestamp().Equal(timestamp))
}

func TestMapper_TickersToQuotes_FloorsTinyPrices(t *testing.T) {
	mapper := newMapper()

	shib, err := domain.NewPairFromCodes("SHIB", "BTC")
	require.NoError(t, err)

	tickers := []binance.Ticker{
		{Symbol: "SHIBBTC", Price: decimal.RequireFromString("0.000000001")},
	}

	quotes := mapper.TickersToQuotes(tickers, []domain.Pair{shib}, domain.NowUTC())

	require.Len(t, quotes, 1)
	assert.True(t, quotes[0].Rate().Value().Equal(decimal.RequireFromString("0.00000001")))
}
