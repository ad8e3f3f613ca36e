package pgsql

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/crypto_converter/internal/apperrors"
	"github.com/SscSPs/crypto_converter/internal/core/domain"
	"github.com/SscSPs/crypto_converter/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxQuoteWriter appends quote batches to the quotes table.
type PgxQuoteWriter struct {
	BaseRepository
	logger *slog.Logger
}

// NewPgxQuoteWriter creates a new PgxQuoteWriter.
func NewPgxQuoteWriter(db *pgxpool.Pool, logger *slog.Logger) *PgxQuoteWriter {
	return &PgxQuoteWriter{
		BaseRepository: BaseRepository{Pool: db},
		logger:         logger,
	}
}

// SaveBatch inserts all quotes of the batch within one transaction.
// Duplicate (symbol, quote_timestamp) rows already present are skipped, so
// replaying an overlapping batch is safe.
func (w *PgxQuoteWriter) SaveBatch(ctx context.Context, quotes []domain.Quote) error {
	if len(quotes) == 0 {
		return nil
	}

	tx, err := w.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = w.Rollback(ctx, tx) }()

	batch := &pgx.Batch{}
	insertQuery := `
		INSERT INTO quotes (symbol, base_currency, quote_currency, rate, quote_timestamp, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (symbol, quote_timestamp) DO NOTHING;
	`

	now := time.Now().UTC()
	for _, quote := range quotes {
		model := mapping.ToModelQuote(quote)
		batch.Queue(insertQuery,
			model.Symbol, model.BaseCurrency, model.QuoteCurrency,
			model.Rate, model.QuoteTimestamp, now,
		)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("%w: failed to execute quote insert batch: %v", apperrors.ErrStorage, err)
	}

	if err := w.Commit(ctx, tx); err != nil {
		return err
	}

	w.logger.Debug("stored quote batch", slog.Int("count", len(quotes)))
	return nil
}
