package mapping

import (
	"github.com/SscSPs/crypto_converter/internal/core/domain"
	"github.com/SscSPs/crypto_converter/internal/core/services"
	"github.com/SscSPs/crypto_converter/internal/models"
)

// ToModelQuote converts a domain Quote to its persistence model.
func ToModelQuote(q domain.Quote) models.Quote {
	return models.Quote{
		Symbol:         q.Pair().Symbol(),
		BaseCurrency:   q.Pair().Base().Code(),
		QuoteCurrency:  q.Pair().Quote().Code(),
		Rate:           q.Rate().Value(),
		QuoteTimestamp: q.Timestamp().Time(),
	}
}

// ToDomainQuote reconstructs a domain Quote from a persistence model,
// re-validating currencies and re-normalizing the rate on the way in.
func ToDomainQuote(m models.Quote, rateFactory *services.RateFactory) (domain.Quote, error) {
	pair, err := domain.NewPairFromCodes(m.BaseCurrency, m.QuoteCurrency)
	if err != nil {
		return domain.Quote{}, err
	}

	rate, err := rateFactory.Create(m.Rate)
	if err != nil {
		return domain.Quote{}, err
	}

	return domain.NewQuote(pair, rate, domain.NewTimestampUTC(m.QuoteTimestamp)), nil
}
