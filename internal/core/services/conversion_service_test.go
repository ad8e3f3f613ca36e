package services_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/crypto_converter/internal/apperrors"
	"github.com/SscSPs/crypto_converter/internal/core/domain"
	"github.com/SscSPs/crypto_converter/internal/core/services"
)

func buildQuote(t *testing.T, base, quote, rate string, at time.Time) domain.Quote {
	t.Helper()
	pair, err := domain.NewPairFromCodes(base, quote)
	require.NoError(t, err)
	r, err := domain.NewRate(decimal.RequireFromString(rate))
	require.NoError(t, err)
	return domain.NewQuote(pair, r, domain.NewTimestampUTC(at))
}

func TestFreshnessService(t *testing.T) {
	freshness := services.NewQuoteFreshnessService(services.FreshnessPolicy{MaxAgeSeconds: 60})
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		quoteAge time.Duration
		wantErr  bool
	}{
		{name: "recent quote is fresh", quoteAge: 10 * time.Second},
		{name: "quote exactly at max age is fresh", quoteAge: 60 * time.Second},
		{name: "quote just past max age is stale", quoteAge: 60*time.Second + time.Millisecond, wantErr: true},
		{name: "old quote is stale", quoteAge: 5 * time.Minute, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote := buildQuote(t, "BTC", "USDT", "25000", base.Add(-tt.quoteAge))
			reference := domain.NewTimestampUTC(base)

			err := freshness.ValidateFreshness(quote, &reference)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrQuoteTooOld)
				assert.False(t, freshness.IsFresh(quote, &reference))
				return
			}
			assert.NoError(t, err)
			assert.True(t, freshness.IsFresh(quote, &reference))
		})
	}
}

func TestFilterFreshQuotes(t *testing.T) {
	freshness := services.NewQuoteFreshnessService(services.FreshnessPolicy{MaxAgeSeconds: 60})
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	reference := domain.NewTimestampUTC(base)

	fresh := buildQuote(t, "BTC", "USDT", "25000", base.Add(-10*time.Second))
	stale := buildQuote(t, "ETH", "USDT", "1800", base.Add(-2*time.Minute))
	alsoFresh := buildQuote(t, "SOL", "USDT", "140", base.Add(-30*time.Second))

	got := freshness.FilterFreshQuotes([]domain.Quote{fresh, stale, alsoFresh}, &reference)

	require.Len(t, got, 2)
	assert.Equal(t, "BTCUSDT", got[0].Pair().Symbol())
	assert.Equal(t, "SOLUSDT", got[1].Pair().Symbol())
}

func TestConversionService(t *testing.T) {
	freshness := services.NewQuoteFreshnessService(services.FreshnessPolicy{MaxAgeSeconds: 60})
	conversion := services.NewConversionService(freshness)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	reference := domain.NewTimestampUTC(base)

	amount, err := domain.NewAmount(decimal.NewFromInt(2))
	require.NoError(t, err)

	t.Run("fresh quote converts", func(t *testing.T) {
		quote := buildQuote(t, "BTC", "USDT", "25000", base.Add(-5*time.Second))

		result, err := conversion.Convert(amount, quote, &reference)
		require.NoError(t, err)
		assert.True(t, result.ConvertedAmount.Value().Equal(decimal.NewFromInt(50000)))
		assert.True(t, result.OriginalAmount.Value().Equal(decimal.NewFromInt(2)))
		assert.Equal(t, "BTCUSDT", result.Pair().Symbol())
	})

	t.Run("stale quote is rejected", func(t *testing.T) {
		quote := buildQuote(t, "BTC", "USDT", "25000", base.Add(-70*time.Second))

		_, err := conversion.Convert(amount, quote, &reference)
		assert.ErrorIs(t, err, apperrors.ErrQuoteTooOld)
	})

	t.Run("zero amount converts to zero", func(t *testing.T) {
		quote := buildQuote(t, "BTC", "USDT", "25000", base)
		zero, err := domain.NewAmount(decimal.Zero)
		require.NoError(t, err)

		result, err := conversion.Convert(zero, quote, &reference)
		require.NoError(t, err)
		assert.True(t, result.ConvertedAmount.IsZero())
	})
}
