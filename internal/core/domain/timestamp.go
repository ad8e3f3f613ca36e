package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/crypto_converter/internal/apperrors"
)

// TimestampUTC is a point in time normalized to UTC. All timestamps compared
// across the system go through this type so comparisons are always UTC vs UTC.
type TimestampUTC struct {
	t time.Time
}

// NewTimestampUTC normalizes any time.Time to UTC.
func NewTimestampUTC(t time.Time) TimestampUTC {
	return TimestampUTC{t: t.UTC()}
}

// NowUTC returns the current wall-clock time as a TimestampUTC.
func NowUTC() TimestampUTC {
	return NewTimestampUTC(time.Now())
}

// TimestampFromUnixMilli converts a millisecond epoch timestamp.
func TimestampFromUnixMilli(ms int64) TimestampUTC {
	return NewTimestampUTC(time.UnixMilli(ms))
}

// ParseTimestampUTC parses an RFC 3339 / ISO-8601 timestamp string.
func ParseTimestampUTC(value string) (TimestampUTC, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return TimestampUTC{}, fmt.Errorf("%w: invalid timestamp %q: %v", apperrors.ErrValidation, value, err)
	}
	return NewTimestampUTC(t), nil
}

// Time returns the underlying UTC time.Time.
func (ts TimestampUTC) Time() time.Time { return ts.t }

// IsZero reports whether the timestamp is the zero value.
func (ts TimestampUTC) IsZero() bool { return ts.t.IsZero() }

// String renders the timestamp in RFC 3339 form.
func (ts TimestampUTC) String() string { return ts.t.Format(time.RFC3339Nano) }

// AgeSeconds returns the elapsed seconds between this timestamp and the
// reference. A nil reference means "now".
func (ts TimestampUTC) AgeSeconds(reference *TimestampUTC) float64 {
	ref := NowUTC()
	if reference != nil {
		ref = *reference
	}
	return ref.t.Sub(ts.t).Seconds()
}

// Before reports whether this timestamp is strictly before the other.
func (ts TimestampUTC) Before(other TimestampUTC) bool { return ts.t.Before(other.t) }

// Equal reports whether both timestamps denote the same instant.
func (ts TimestampUTC) Equal(other TimestampUTC) bool { return ts.t.Equal(other.t) }
