package resilience

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// RetryConfig describes a bounded exponential backoff schedule.
type RetryConfig struct {
	Name        string
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Retryable lets callers restrict which errors are worth another attempt.
type Retryable func(error) bool

// Retry runs fn up to MaxAttempts times, sleeping BaseDelay, 2*BaseDelay,
// 4*BaseDelay, ... (capped at MaxDelay) between attempts. A non-retryable
// error aborts immediately; context cancellation is observed both between
// attempts and during backoff sleeps. The last error is returned wrapped
// with the attempt count.
func Retry(ctx context.Context, config RetryConfig, logger *slog.Logger, retryable Retryable, fn func(ctx context.Context) error) error {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.BaseDelay <= 0 {
		config.BaseDelay = time.Second
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 10 * time.Second
	}

	var lastErr error

	delay := config.BaseDelay
	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}

		lastErr = err

		if retryable != nil && !retryable(err) {
			return err
		}
		if attempt == config.MaxAttempts {
			break
		}

		logger.Warn("operation failed, retrying",
			slog.String("operation", config.Name),
			slog.Int("attempt", attempt),
			slog.Duration("backoff", delay),
			slog.String("error", err.Error()),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
		if delay > config.MaxDelay {
			delay = config.MaxDelay
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", config.Name, config.MaxAttempts, lastErr)
}
