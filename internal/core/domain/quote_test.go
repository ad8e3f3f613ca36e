package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/crypto_converter/internal/apperrors"
	"github.com/SscSPs/crypto_converter/internal/core/domain"
)

func mustPair(t *testing.T, base, quote string) domain.Pair {
	t.Helper()
	pair, err := domain.NewPairFromCodes(base, quote)
	require.NoError(t, err)
	return pair
}

func mustRate(t *testing.T, value string) domain.Rate {
	t.Helper()
	rate, err := domain.NewRate(decimal.RequireFromString(value))
	require.NoError(t, err)
	return rate
}

func mustAmount(t *testing.T, value string) domain.Amount {
	t.Helper()
	amount, err := domain.NewAmount(decimal.RequireFromString(value))
	require.NoError(t, err)
	return amount
}

func TestNewCurrency(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		want    string
		wantErr bool
	}{
		{name: "uppercase code", code: "BTC", want: "BTC"},
		{name: "lowercase is normalized", code: "usdt", want: "USDT"},
		{name: "whitespace is trimmed", code: "  ETH ", want: "ETH"},
		{name: "digits and underscores allowed", code: "1INCH_V2", want: "1INCH_V2"},
		{name: "single character", code: "T", want: "T"},
		{name: "empty code", code: "", wantErr: true},
		{name: "blank code", code: "   ", wantErr: true},
		{name: "too long", code: "ABCDEFGHIJKLMNOPQRSTU", wantErr: true},
		{name: "punctuation rejected", code: "BTC-USD", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			currency, err := domain.NewCurrency(tt.code)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, currency.Code())
		})
	}
}

func TestNewPair(t *testing.T) {
	btc, err := domain.NewCurrency("BTC")
	require.NoError(t, err)
	usdt, err := domain.NewCurrency("USDT")
	require.NoError(t, err)

	pair, err := domain.NewPair(btc, usdt)
	require.NoError(t, err)
	assert.Equal(t, "BTCUSDT", pair.Symbol())
	assert.Equal(t, "BTC", pair.Base().Code())
	assert.Equal(t, "USDT", pair.Quote().Code())

	_, err = domain.NewPair(btc, btc)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestPairInverse(t *testing.T) {
	pair := mustPair(t, "BTC", "USDT")
	inverse := pair.Inverse()

	assert.Equal(t, "USDTBTC", inverse.Symbol())
	assert.True(t, inverse.Inverse().Equal(pair))
}

func TestNewRate_RejectsNonPositive(t *testing.T) {
	_, err := domain.NewRate(decimal.Zero)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = domain.NewRate(decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestRateInverse(t *testing.T) {
	rate := mustRate(t, "4")
	assert.True(t, rate.Inverse().Value().Equal(decimal.RequireFromString("0.25")))
}

func TestNewAmount_RejectsNegative(t *testing.T) {
	_, err := domain.NewAmount(decimal.NewFromInt(-5))
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	zero, err := domain.NewAmount(decimal.Zero)
	require.NoError(t, err)
	assert.True(t, zero.IsZero())
}

func TestQuoteConvert(t *testing.T) {
	quote := domain.NewQuote(mustPair(t, "BTC", "USDT"), mustRate(t, "25000"), domain.NowUTC())

	converted := quote.Convert(mustAmount(t, "2"))
	assert.True(t, converted.Value().Equal(decimal.NewFromInt(50000)))
}

func TestQuoteAge(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	quoteTime := domain.NewTimestampUTC(base)
	reference := domain.NewTimestampUTC(base.Add(45 * time.Second))

	quote := domain.NewQuote(mustPair(t, "BTC", "USDT"), mustRate(t, "25000"), quoteTime)

	age, err := quote.Age(&reference)
	require.NoError(t, err)
	assert.InDelta(t, 45.0, age.Seconds(), 0.0001)

	// A reference before the quote's timestamp makes the age negative.
	past := domain.NewTimestampUTC(base.Add(-time.Second))
	_, err = quote.Age(&past)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestQuoteAgeFreshBoundary(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		maxAge  int
		fresh   bool
	}{
		{name: "well within threshold", seconds: 10, maxAge: 60, fresh: true},
		{name: "exactly at threshold", seconds: 60, maxAge: 60, fresh: true},
		{name: "just past threshold", seconds: 60.001, maxAge: 60, fresh: false},
		{name: "far past threshold", seconds: 300, maxAge: 60, fresh: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			age, err := domain.NewQuoteAge(tt.seconds)
			require.NoError(t, err)
			assert.Equal(t, tt.fresh, age.IsFresh(tt.maxAge))
			assert.Equal(t, !tt.fresh, age.IsStale(tt.maxAge))
		})
	}
}

func TestParseTimestampUTC(t *testing.T) {
	ts, err := domain.ParseTimestampUTC("2024-05-01T12:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), ts.Time())

	// Offsets are normalized to UTC.
	ts, err = domain.ParseTimestampUTC("2024-05-01T14:00:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), ts.Time())

	_, err = domain.ParseTimestampUTC("yesterday")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestRateBatch(t *testing.T) {
	assert.True(t, domain.RateBatch{}.IsEmpty())

	batch := domain.RateBatch{Quotes: []domain.Quote{
		domain.NewQuote(mustPair(t, "BTC", "USDT"), mustRate(t, "25000"), domain.NowUTC()),
	}}
	assert.False(t, batch.IsEmpty())
	assert.Equal(t, 1, batch.Len())
}
