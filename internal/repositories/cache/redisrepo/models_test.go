package redisrepo

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/crypto_converter/internal/core/domain"
	"github.com/SscSPs/crypto_converter/internal/core/services"
)

func testRateFactory() *services.RateFactory {
	precision := services.NewPrecisionService(services.DefaultPrecisionPolicy())
	return services.NewRateFactory(precision)
}

func TestCachedQuoteRoundTrip(t *testing.T) {
	pair, err := domain.NewPairFromCodes("BTC", "USDT")
	require.NoError(t, err)
	rate, err := domain.NewRate(decimal.RequireFromString("25000.12345678"))
	require.NoError(t, err)
	ts, err := domain.ParseTimestampUTC("2024-05-01T12:00:00Z")
	require.NoError(t, err)

	original := domain.NewQuote(pair, rate, ts)

	data, err := json.Marshal(toCachedQuote(original))
	require.NoError(t, err)

	var cached cachedQuote
	require.NoError(t, json.Unmarshal(data, &cached))
	assert.Equal(t, "BTCUSDT", cached.Symbol)
	assert.Equal(t, "25000.12345678", cached.Rate)

	restored, err := cached.toDomain(pair, testRateFactory())
	require.NoError(t, err)
	assert.True(t, restored.Rate().Value().Equal(original.Rate().Value()))
	assert.True(t, restored.Timestamp().Equal(original.Timestamp()))
}

func TestCachedQuoteRejectsGarbage(t *testing.T) {
	pair, err := domain.NewPairFromCodes("BTC", "USDT")
	require.NoError(t, err)

	tests := []struct {
		name   string
		cached cachedQuote
	}{
		{name: "bad rate", cached: cachedQuote{Symbol: "BTCUSDT", Rate: "much", Timestamp: "2024-05-01T12:00:00Z"}},
		{name: "zero rate", cached: cachedQuote{Symbol: "BTCUSDT", Rate: "0", Timestamp: "2024-05-01T12:00:00Z"}},
		{name: "bad timestamp", cached: cachedQuote{Symbol: "BTCUSDT", Rate: "25000", Timestamp: "noonish"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.cached.toDomain(pair, testRateFactory())
			assert.Error(t, err)
		})
	}
}

func TestCacheKey(t *testing.T) {
	pair, err := domain.NewPairFromCodes("BTC", "USDT")
	require.NoError(t, err)
	assert.Equal(t, "quote:latest:BTCUSDT", cacheKey(pair))
}
