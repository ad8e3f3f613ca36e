package consumer

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/SscSPs/crypto_converter/internal/core/domain"
	portssvc "github.com/SscSPs/crypto_converter/internal/core/ports/services"
	"github.com/SscSPs/crypto_converter/internal/utils/resilience"
)

// RateSource produces batches of quotes until closed.
type RateSource interface {
	Stream(ctx context.Context) (<-chan domain.RateBatch, error)
	Close() error
}

// Consumer drains a rate source and persists each batch through the quote
// store service. A batch that still fails after retries is logged and
// dropped; the loop itself never stops on storage errors.
type Consumer struct {
	source     RateSource
	quoteStore portssvc.QuoteStoreSvcFacade
	logger     *slog.Logger

	started  atomic.Bool
	stopOnce sync.Once
	done     chan struct{}
}

// New creates a new Consumer.
func New(source RateSource, quoteStore portssvc.QuoteStoreSvcFacade, logger *slog.Logger) *Consumer {
	return &Consumer{
		source:     source,
		quoteStore: quoteStore,
		logger:     logger,
		done:       make(chan struct{}),
	}
}

// Run starts the source stream and consumes it until the stream channel is
// closed or ctx is cancelled. It blocks for the lifetime of the stream.
func (c *Consumer) Run(ctx context.Context) error {
	c.started.Store(true)
	defer close(c.done)

	batches, err := c.source.Stream(ctx)
	if err != nil {
		return err
	}

	c.logger.Info("quote consumer started")
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("quote consumer stopping", slog.String("reason", ctx.Err().Error()))
			return nil
		case batch, ok := <-batches:
			if !ok {
				c.logger.Info("rate stream closed, quote consumer stopping")
				return nil
			}
			c.handleBatch(ctx, batch)
		}
	}
}

// Stop shuts down the underlying rate source and, if Run was started, waits
// for it to drain. Safe to call more than once, including before Run.
func (c *Consumer) Stop() error {
	var err error
	c.stopOnce.Do(func() {
		err = c.source.Close()
		if c.started.Load() {
			<-c.done
		}
	})
	return err
}

func (c *Consumer) handleBatch(ctx context.Context, batch domain.RateBatch) {
	if batch.IsEmpty() {
		c.logger.Debug("skipping empty rate batch")
		return
	}

	retryConfig := resilience.RetryConfig{
		Name:        "store_quotes",
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxDelay:    10 * time.Second,
	}

	err := resilience.Retry(ctx, retryConfig, c.logger, nil, func(ctx context.Context) error {
		_, err := c.quoteStore.StoreQuotes(ctx, batch.Quotes)
		return err
	})
	if err != nil {
		c.logger.Error("dropping rate batch after storage retries",
			slog.Int("count", batch.Len()), slog.String("error", err.Error()))
		return
	}

	c.logger.Debug("rate batch persisted", slog.Int("count", batch.Len()))
}
