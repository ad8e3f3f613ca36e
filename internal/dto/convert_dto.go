package dto

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/crypto_converter/internal/apperrors"
	"github.com/SscSPs/crypto_converter/internal/core/domain"
	portssvc "github.com/SscSPs/crypto_converter/internal/core/ports/services"
	"github.com/SscSPs/crypto_converter/internal/core/services"
)

// ConvertRequest defines the query parameters of the conversion endpoint.
type ConvertRequest struct {
	From   string `form:"from" binding:"required"`
	To     string `form:"to" binding:"required"`
	Amount string `form:"amount" binding:"required"`
	At     string `form:"at"` // optional RFC 3339 timestamp for historical conversion
}

// ToConversionRequest validates the raw query values and builds the service request.
func (r ConvertRequest) ToConversionRequest(amountFactory *services.AmountFactory) (portssvc.ConversionRequest, error) {
	pair, err := domain.NewPairFromCodes(r.From, r.To)
	if err != nil {
		return portssvc.ConversionRequest{}, err
	}

	amount, err := amountFactory.FromString(r.Amount)
	if err != nil {
		return portssvc.ConversionRequest{}, err
	}

	req := portssvc.ConversionRequest{Pair: pair, Amount: amount}

	if r.At != "" {
		at, err := domain.ParseTimestampUTC(r.At)
		if err != nil {
			return portssvc.ConversionRequest{}, fmt.Errorf("%w: invalid 'at' parameter: %v", apperrors.ErrValidation, err)
		}
		req.At = &at
	}

	return req, nil
}

// ConvertResponse defines the structure for conversion API responses.
type ConvertResponse struct {
	From            string          `json:"from"`
	To              string          `json:"to"`
	Amount          decimal.Decimal `json:"amount"`
	ConvertedAmount decimal.Decimal `json:"convertedAmount"`
	Rate            decimal.Decimal `json:"rate"`
	RateTimestamp   string          `json:"rateTimestamp"`
}

// ToConvertResponse converts a service conversion result to its API shape.
func ToConvertResponse(pair domain.Pair, resp *portssvc.ConversionResponse) ConvertResponse {
	return ConvertResponse{
		From:            pair.Base().Code(),
		To:              pair.Quote().Code(),
		Amount:          resp.OriginalAmount.Value(),
		ConvertedAmount: resp.ConvertedAmount.Value(),
		Rate:            resp.Rate.Value(),
		RateTimestamp:   resp.Timestamp.String(),
	}
}
