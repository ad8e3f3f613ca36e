package services_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/crypto_converter/internal/apperrors"
	"github.com/SscSPs/crypto_converter/internal/core/services"
)

func newFactories() (*services.AmountFactory, *services.RateFactory) {
	precision := services.NewPrecisionService(services.DefaultPrecisionPolicy())
	return services.NewAmountFactory(precision), services.NewRateFactory(precision)
}

func TestNormalizeAmount_HalfUpRounding(t *testing.T) {
	precision := services.NewPrecisionService(services.DefaultPrecisionPolicy())

	tests := []struct {
		name  string
		value string
		want  string
	}{
		{name: "half rounds up", value: "1.234567895", want: "1.23456790"},
		{name: "below half rounds down", value: "1.234567894", want: "1.23456789"},
		{name: "already at precision", value: "1.23456789", want: "1.23456789"},
		{name: "integer untouched", value: "42", want: "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := precision.NormalizeAmount(decimal.RequireFromString(tt.value))
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
				"got %s, want %s", got, tt.want)
		})
	}
}

func TestValidatePrecision(t *testing.T) {
	precision := services.NewPrecisionService(services.DefaultPrecisionPolicy())

	assert.True(t, precision.ValidatePrecision(decimal.RequireFromString("1.25"), 2))
	assert.False(t, precision.ValidatePrecision(decimal.RequireFromString("1.255"), 2))
}

func TestAmountFactory(t *testing.T) {
	amountFactory, _ := newFactories()

	amount, err := amountFactory.FromString("1.234567895")
	require.NoError(t, err)
	assert.True(t, amount.Value().Equal(decimal.RequireFromString("1.23456790")))

	_, err = amountFactory.FromString("-1")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = amountFactory.FromString("not-a-number")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestRateFactory_FloorsTinyRates(t *testing.T) {
	_, rateFactory := newFactories()

	tests := []struct {
		name    string
		value   string
		want    string
		wantErr bool
	}{
		{name: "normal rate passes through", value: "25000.5", want: "25000.5"},
		{name: "rate at minimum unchanged", value: "0.00000001", want: "0.00000001"},
		{name: "tiny positive rate floored", value: "0.000000001", want: "0.00000001"},
		{name: "rounds to precision", value: "0.123456789", want: "0.12345679"},
		{name: "zero rejected", value: "0", wantErr: true},
		{name: "negative rejected", value: "-3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate, err := rateFactory.FromString(tt.value)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.True(t, rate.Value().Equal(decimal.RequireFromString(tt.want)),
				"got %s, want %s", rate.Value(), tt.want)
		})
	}
}
