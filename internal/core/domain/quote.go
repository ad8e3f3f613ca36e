package domain

import "fmt"

// Quote is a priced snapshot of a currency pair at a timestamp. It is the
// unit of ingestion and storage: never mutated, a new rate arrival produces
// a new Quote superseding prior ones.
type Quote struct {
	pair      Pair
	rate      Rate
	timestamp TimestampUTC
}

// NewQuote assembles a quote from already-validated value objects.
func NewQuote(pair Pair, rate Rate, timestamp TimestampUTC) Quote {
	return Quote{pair: pair, rate: rate, timestamp: timestamp}
}

// Pair returns the quoted currency pair.
func (q Quote) Pair() Pair { return q.pair }

// Rate returns the conversion rate.
func (q Quote) Rate() Rate { return q.rate }

// Timestamp returns the quote's UTC timestamp.
func (q Quote) Timestamp() TimestampUTC { return q.timestamp }

// Age computes how old the quote is relative to the reference time.
// A nil reference means "now". A quote timestamped in the future relative
// to the reference is a validation error.
func (q Quote) Age(reference *TimestampUTC) (QuoteAge, error) {
	if reference == nil {
		return QuoteAgeSince(q.timestamp)
	}
	return QuoteAgeBetween(q.timestamp, *reference)
}

// Convert applies the quote's rate to the given amount.
func (q Quote) Convert(amount Amount) Amount {
	return q.rate.ApplyTo(amount)
}

func (q Quote) String() string {
	return fmt.Sprintf("Quote(%s, rate=%s, at=%s)", q.pair, q.rate, q.timestamp)
}

// RateBatch is the ordered set of quotes produced by one polling tick.
// An empty batch is valid and simply signals liveness.
type RateBatch struct {
	Quotes []Quote
}

// Len returns the number of quotes in the batch.
func (b RateBatch) Len() int { return len(b.Quotes) }

// IsEmpty reports whether the batch carries no quotes.
func (b RateBatch) IsEmpty() bool { return len(b.Quotes) == 0 }
