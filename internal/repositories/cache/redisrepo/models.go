package redisrepo

import (
	"github.com/SscSPs/crypto_converter/internal/core/domain"
	"github.com/SscSPs/crypto_converter/internal/core/services"
)

// cachedQuote is the JSON shape stored under each cache key. The rate travels
// as a string so no decimal precision is lost in transit.
type cachedQuote struct {
	Symbol    string `json:"symbol"`
	Rate      string `json:"rate"`
	Timestamp string `json:"timestamp"`
}

func toCachedQuote(q domain.Quote) cachedQuote {
	return cachedQuote{
		Symbol:    q.Pair().Symbol(),
		Rate:      q.Rate().Value().String(),
		Timestamp: q.Timestamp().String(),
	}
}

func (c cachedQuote) toDomain(pair domain.Pair, rateFactory *services.RateFactory) (domain.Quote, error) {
	rate, err := rateFactory.FromString(c.Rate)
	if err != nil {
		return domain.Quote{}, err
	}

	timestamp, err := domain.ParseTimestampUTC(c.Timestamp)
	if err != nil {
		return domain.Quote{}, err
	}

	return domain.NewQuote(pair, rate, timestamp), nil
}
