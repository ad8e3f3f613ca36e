package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/crypto_converter/internal/apperrors"
	"github.com/SscSPs/crypto_converter/internal/core/domain"
	portsrepo "github.com/SscSPs/crypto_converter/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/crypto_converter/internal/core/ports/services"
)

// QuoteService implements the conversion query and the store-quotes command
// on top of the quote repository ports.
type QuoteService struct {
	reader     portsrepo.QuoteReader
	writer     portsrepo.QuoteWriter
	conversion *ConversionService
	logger     *slog.Logger
}

// NewQuoteService creates a QuoteService.
func NewQuoteService(reader portsrepo.QuoteReader, writer portsrepo.QuoteWriter, conversion *ConversionService, logger *slog.Logger) *QuoteService {
	return &QuoteService{
		reader:     reader,
		writer:     writer,
		conversion: conversion,
		logger:     logger,
	}
}

// GetConversion resolves a quote for the requested pair (latest, or latest
// at-or-before the historical timestamp) and applies it to the amount.
func (s *QuoteService) GetConversion(ctx context.Context, req portssvc.ConversionRequest) (*portssvc.ConversionResponse, error) {
	quote, err := s.lookupQuote(ctx, req)
	if err != nil {
		return nil, err
	}

	result, err := s.conversion.Convert(req.Amount, *quote, req.At)
	if err != nil {
		return nil, err
	}

	return &portssvc.ConversionResponse{
		OriginalAmount:  result.OriginalAmount,
		ConvertedAmount: result.ConvertedAmount,
		Rate:            result.Rate(),
		Timestamp:       result.Timestamp(),
	}, nil
}

func (s *QuoteService) lookupQuote(ctx context.Context, req portssvc.ConversionRequest) (*domain.Quote, error) {
	var (
		quote *domain.Quote
		err   error
	)

	if req.At == nil {
		quote, err = s.reader.GetLatest(ctx, req.Pair)
	} else {
		quote, err = s.reader.GetLatestBefore(ctx, req.Pair, *req.At)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to look up quote for %s: %w", req.Pair, err)
	}

	if quote == nil {
		if req.At != nil {
			return nil, fmt.Errorf("%w: no quote for pair %s at %s", apperrors.ErrQuoteNotFound, req.Pair, req.At)
		}
		return nil, fmt.Errorf("%w: no quote for pair %s", apperrors.ErrQuoteNotFound, req.Pair)
	}

	return quote, nil
}

// StoreQuotes persists a batch of quotes through the writer port.
func (s *QuoteService) StoreQuotes(ctx context.Context, quotes []domain.Quote) (*portssvc.StoreQuotesResult, error) {
	if err := s.writer.SaveBatch(ctx, quotes); err != nil {
		return nil, err
	}

	s.logger.Info("quotes stored", slog.Int("quote_count", len(quotes)))

	return &portssvc.StoreQuotesResult{TotalReceived: len(quotes)}, nil
}
