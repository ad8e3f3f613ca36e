package resilience

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// BreakerState is the current state of a circuit breaker.
type BreakerState int

const (
	StateClosed BreakerState = iota
	StateOpen
	StateHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// ErrCircuitOpen is returned when a call is rejected because the breaker is
// open and the recovery timeout has not yet elapsed.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// BreakerConfig holds configuration for a CircuitBreaker.
type BreakerConfig struct {
	Name             string
	FailureThreshold int           // consecutive failures before opening
	RecoveryTimeout  time.Duration // wait before OPEN -> HALF_OPEN
}

// CircuitBreaker isolates a flaky dependency. CLOSED -> OPEN after
// FailureThreshold consecutive failures; OPEN -> HALF_OPEN once
// RecoveryTimeout has elapsed since the last failure (inclusive comparison);
// HALF_OPEN -> CLOSED on the next success, back to OPEN on failure.
//
// State is mutated only under the mutex; the guarded call itself runs
// outside the lock so a slow call never blocks bookkeeping for other calls.
type CircuitBreaker struct {
	config BreakerConfig
	logger *slog.Logger

	mu          sync.Mutex
	state       BreakerState
	failures    int
	lastFailure time.Time
}

// NewCircuitBreaker creates a breaker in the CLOSED state.
func NewCircuitBreaker(config BreakerConfig, logger *slog.Logger) *CircuitBreaker {
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 5
	}
	if config.RecoveryTimeout <= 0 {
		config.RecoveryTimeout = 60 * time.Second
	}
	if config.Name == "" {
		config.Name = "breaker"
	}

	return &CircuitBreaker{
		config: config,
		logger: logger,
		state:  StateClosed,
	}
}

// Execute runs fn under breaker protection. isFailure decides which errors
// count against the breaker; a nil isFailure counts every error.
func (cb *CircuitBreaker) Execute(fn func() error, isFailure func(error) bool) error {
	if err := cb.allow(); err != nil {
		return err
	}

	err := fn()

	if err == nil {
		cb.reportSuccess()
		return nil
	}
	if isFailure == nil || isFailure(err) {
		cb.reportFailure()
	}
	return err
}

// State returns the breaker's current state.
func (cb *CircuitBreaker) State() BreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state != StateOpen {
		return nil
	}

	if time.Since(cb.lastFailure) >= cb.config.RecoveryTimeout {
		cb.state = StateHalfOpen
		cb.logger.Info("circuit breaker half-open",
			slog.String("breaker", cb.config.Name))
		return nil
	}

	return ErrCircuitOpen
}

func (cb *CircuitBreaker) reportSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateHalfOpen || cb.failures > 0 {
		cb.failures = 0
		if cb.state != StateClosed {
			cb.logger.Info("circuit breaker closed",
				slog.String("breaker", cb.config.Name))
		}
		cb.state = StateClosed
	}
}

func (cb *CircuitBreaker) reportFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures++
	cb.lastFailure = time.Now()

	if cb.failures >= cb.config.FailureThreshold && cb.state != StateOpen {
		cb.state = StateOpen
		cb.logger.Warn("circuit breaker opened",
			slog.String("breaker", cb.config.Name),
			slog.Int("failures", cb.failures),
		)
	}
}
