package binance

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/SscSPs/crypto_converter/internal/apperrors"
	"github.com/SscSPs/crypto_converter/internal/core/domain"
	"github.com/SscSPs/crypto_converter/internal/scheduler"
	"github.com/SscSPs/crypto_converter/internal/utils/resilience"
)

// RateSourceConfig tunes the streaming rate source.
type RateSourceConfig struct {
	RatesInterval   time.Duration
	SymbolsInterval time.Duration
	QueueCapacity   int
	ShutdownGrace   time.Duration
}

// StreamingRateSource polls Binance on a fixed schedule and exposes the
// resulting quote batches as a single-use, cancellable stream.
//
// Two jobs drive it: a symbols job refreshing the tracked pair list from
// exchange metadata, and a rates job fetching server time plus all ticker
// prices and mapping them into a RateBatch. Batches go through a bounded
// queue; when the consumer lags, batches are dropped rather than blocking
// the poller.
type StreamingRateSource struct {
	client    *Client
	mapper    *Mapper
	scheduler *scheduler.FixedRateScheduler
	config    RateSourceConfig
	logger    *slog.Logger

	queue chan domain.RateBatch

	mu      sync.Mutex
	started bool
	closed  bool
	cancel  context.CancelFunc

	pairsMu sync.RWMutex
	tracked []domain.Pair
}

// NewStreamingRateSource creates an unstarted rate source.
func NewStreamingRateSource(client *Client, mapper *Mapper, sched *scheduler.FixedRateScheduler, config RateSourceConfig, logger *slog.Logger) *StreamingRateSource {
	if config.RatesInterval <= 0 {
		config.RatesInterval = 30 * time.Second
	}
	if config.SymbolsInterval <= 0 {
		config.SymbolsInterval = 60 * time.Second
	}
	if config.QueueCapacity <= 0 {
		config.QueueCapacity = 10
	}
	if config.ShutdownGrace <= 0 {
		config.ShutdownGrace = 5 * time.Second
	}

	return &StreamingRateSource{
		client:    client,
		mapper:    mapper,
		scheduler: sched,
		config:    config,
		logger:    logger,
		queue:     make(chan domain.RateBatch, config.QueueCapacity),
	}
}

// Stream initializes the tracked pair list, starts the polling jobs and
// returns the batch channel. The source is single-use: a second call, or a
// call after Close, is a programming error.
func (s *StreamingRateSource) Stream(ctx context.Context) (<-chan domain.RateBatch, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: rate source is closed", apperrors.ErrStreamState)
	}
	if s.started {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: stream already started", apperrors.ErrStreamState)
	}
	s.started = true
	s.mu.Unlock()

	if err := s.initSymbols(ctx); err != nil {
		s.mu.Lock()
		s.started = false
		s.mu.Unlock()
		return nil, fmt.Errorf("rate source initialization failed: %w", err)
	}

	streamCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	if err := s.scheduler.Schedule("binance_rates", s.config.RatesInterval, s.ratesTick); err != nil {
		cancel()
		return nil, err
	}
	if err := s.scheduler.Schedule("binance_symbols", s.config.SymbolsInterval, s.symbolsTick); err != nil {
		cancel()
		return nil, err
	}
	if err := s.scheduler.Start(streamCtx); err != nil {
		cancel()
		return nil, err
	}

	s.logger.Info("rate source streaming",
		slog.Duration("rates_interval", s.config.RatesInterval),
		slog.Duration("symbols_interval", s.config.SymbolsInterval),
	)

	return s.queue, nil
}

// Close tears the source down: stops the scheduler (bounded grace period),
// releases HTTP connections and drains the pending-batch queue so no stale
// batches leak. Idempotent; the source cannot be restarted.
func (s *StreamingRateSource) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	cancel := s.cancel
	s.mu.Unlock()

	s.logger.Info("rate source closing")

	if cancel != nil {
		cancel()
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), s.config.ShutdownGrace)
	defer cancelShutdown()
	shutdownErr := s.scheduler.Shutdown(shutdownCtx)

	s.client.Close()

	// closed is already set, so offerBatch can no longer send even if a
	// straggling job outlived the grace period. The queue always closes so
	// a consumer blocked on the stream observes end of stream.
	drained := 0
drain:
	for {
		select {
		case <-s.queue:
			drained++
		default:
			break drain
		}
	}
	close(s.queue)

	s.logger.Info("rate source closed", slog.Int("dropped_batches", drained))
	return shutdownErr
}

func (s *StreamingRateSource) initSymbols(ctx context.Context) error {
	return resilience.Retry(ctx, resilience.RetryConfig{
		Name:        "binance symbols init",
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
		MaxDelay:    10 * time.Second,
	}, s.logger, nil, func(ctx context.Context) error {
		pairs, err := s.fetchPairs(ctx)
		if err != nil {
			return err
		}
		s.setTracked(pairs)
		s.logger.Info("binance symbols initialized", slog.Int("pair_count", len(pairs)))
		return nil
	})
}

func (s *StreamingRateSource) fetchPairs(ctx context.Context) ([]domain.Pair, error) {
	info, err := s.client.GetExchangeInfo(ctx)
	if err != nil {
		return nil, err
	}
	return s.mapper.ToPairs(info), nil
}

func (s *StreamingRateSource) setTracked(pairs []domain.Pair) {
	s.pairsMu.Lock()
	s.tracked = pairs
	s.pairsMu.Unlock()
}

func (s *StreamingRateSource) trackedPairs() []domain.Pair {
	s.pairsMu.RLock()
	defer s.pairsMu.RUnlock()
	return s.tracked
}

// ratesTick fetches server time and all ticker prices concurrently, maps
// them into quotes and offers the batch downstream. Both fetches must
// succeed for a batch to be emitted; the tick is all-or-nothing.
func (s *StreamingRateSource) ratesTick(ctx context.Context) error {
	pairs := s.trackedPairs()
	if len(pairs) == 0 {
		// Keep emitting so downstream consumers observe liveness.
		s.offerBatch(ctx, domain.RateBatch{})
		return nil
	}

	var (
		serverTime ServerTime
		tickers    []Ticker
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		serverTime, err = s.client.GetServerTime(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		tickers, err = s.client.GetAllTickerPrices(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("rates tick failed: %w", err)
	}

	quotes := s.mapper.TickersToQuotes(tickers, pairs, serverTime.AsTimestamp())

	s.logger.Info("binance rates fetched",
		slog.Int("quote_count", len(quotes)),
		slog.Int("tracked_pairs", len(pairs)),
	)

	if len(quotes) == 0 {
		s.logger.Warn("no valid quotes in batch")
		return nil
	}

	s.offerBatch(ctx, domain.RateBatch{Quotes: quotes})
	return nil
}

func (s *StreamingRateSource) symbolsTick(ctx context.Context) error {
	pairs, err := s.fetchPairs(ctx)
	if err != nil {
		return fmt.Errorf("symbols refresh failed: %w", err)
	}
	s.setTracked(pairs)
	s.logger.Info("binance symbols refreshed", slog.Int("pair_count", len(pairs)))
	return nil
}

// offerBatch delivers a batch without ever blocking the polling job: when
// the queue is full the batch is dropped, favoring liveness over
// completeness. Sends are serialized with Close under the lifecycle mutex
// so a straggling tick can never hit a closed queue.
func (s *StreamingRateSource) offerBatch(ctx context.Context, batch domain.RateBatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || ctx.Err() != nil {
		return
	}

	select {
	case s.queue <- batch:
	default:
		s.logger.Warn("batch queue full, dropping batch",
			slog.Int("quote_count", batch.Len()))
	}
}
