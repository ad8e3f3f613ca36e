package pgsql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/crypto_converter/internal/apperrors"
	"github.com/SscSPs/crypto_converter/internal/core/domain"
	"github.com/SscSPs/crypto_converter/internal/core/services"
	"github.com/SscSPs/crypto_converter/internal/models"
	"github.com/SscSPs/crypto_converter/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxQuoteRepository reads quotes from the append-only quotes table.
type PgxQuoteRepository struct {
	BaseRepository
	rateFactory *services.RateFactory
	logger      *slog.Logger
}

// NewPgxQuoteRepository creates a new PgxQuoteRepository.
func NewPgxQuoteRepository(db *pgxpool.Pool, rateFactory *services.RateFactory, logger *slog.Logger) *PgxQuoteRepository {
	return &PgxQuoteRepository{
		BaseRepository: BaseRepository{Pool: db},
		rateFactory:    rateFactory,
		logger:         logger,
	}
}

// GetLatest retrieves the most recent quote for a pair, or nil when the
// table has no row for its symbol.
func (r *PgxQuoteRepository) GetLatest(ctx context.Context, pair domain.Pair) (*domain.Quote, error) {
	query := `
		SELECT symbol, base_currency, quote_currency, rate, quote_timestamp
		FROM quotes
		WHERE symbol = $1
		ORDER BY quote_timestamp DESC
		LIMIT 1;
	`
	return r.queryOne(ctx, "get_latest", query, pair.Symbol())
}

// GetLatestBefore retrieves the most recent quote at or before the given
// timestamp, or nil when none exists.
func (r *PgxQuoteRepository) GetLatestBefore(ctx context.Context, pair domain.Pair, timestamp domain.TimestampUTC) (*domain.Quote, error) {
	query := `
		SELECT symbol, base_currency, quote_currency, rate, quote_timestamp
		FROM quotes
		WHERE symbol = $1 AND quote_timestamp <= $2
		ORDER BY quote_timestamp DESC
		LIMIT 1;
	`
	return r.queryOne(ctx, "get_latest_before", query, pair.Symbol(), timestamp.Time())
}

func (r *PgxQuoteRepository) queryOne(ctx context.Context, operation, query string, args ...any) (*domain.Quote, error) {
	var model models.Quote
	err := r.Pool.QueryRow(ctx, query, args...).Scan(
		&model.Symbol, &model.BaseCurrency, &model.QuoteCurrency,
		&model.Rate, &model.QuoteTimestamp,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("postgres quote miss", slog.String("operation", operation))
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %s failed: %v", apperrors.ErrStorage, operation, err)
	}

	quote, err := mapping.ToDomainQuote(model, r.rateFactory)
	if err != nil {
		return nil, fmt.Errorf("%w: %s returned an invalid row: %v", apperrors.ErrStorage, operation, err)
	}

	return &quote, nil
}
