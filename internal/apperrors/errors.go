package apperrors

import "errors"

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrQuoteNotFound indicates that no quote exists for the requested pair
// (and timestamp, when a historical lookup was made).
var ErrQuoteNotFound = errors.New("quote not found")

// ErrQuoteTooOld indicates that a quote exists but its age exceeds the
// freshness policy. Kept distinct from ErrQuoteNotFound so callers can
// react differently (e.g. trigger a refresh instead of reporting a miss).
var ErrQuoteTooOld = errors.New("quote too old")

// ErrProviderUnavailable indicates an upstream provider failure: HTTP or
// parse errors after retries were exhausted, or an open circuit breaker.
var ErrProviderUnavailable = errors.New("quote provider unavailable")

// ErrStorage indicates a durable-store failure. Write-path storage errors
// are fatal to the operation; cache errors are never mapped to this.
var ErrStorage = errors.New("quote storage error")

// ErrStreamState indicates misuse of the rate source lifecycle, e.g.
// starting a single-use stream twice.
var ErrStreamState = errors.New("invalid rate source state")
