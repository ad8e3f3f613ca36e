package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SscSPs/crypto_converter/internal/apperrors"
	portssvc "github.com/SscSPs/crypto_converter/internal/core/ports/services"
	"github.com/SscSPs/crypto_converter/internal/core/services"
	"github.com/SscSPs/crypto_converter/internal/dto"
	"github.com/SscSPs/crypto_converter/internal/middleware"
	"github.com/SscSPs/crypto_converter/internal/platform/metrics"
)

// convertHandler handles HTTP requests for currency conversion.
type convertHandler struct {
	conversionService portssvc.ConversionSvcFacade
	amountFactory     *services.AmountFactory
	metrics           *metrics.Metrics
}

func newConvertHandler(cs portssvc.ConversionSvcFacade, af *services.AmountFactory, m *metrics.Metrics) *convertHandler {
	return &convertHandler{
		conversionService: cs,
		amountFactory:     af,
		metrics:           m,
	}
}

// registerConvertRoutes registers routes related to conversion.
func registerConvertRoutes(rg *gin.RouterGroup, cs portssvc.ConversionSvcFacade, af *services.AmountFactory, m *metrics.Metrics) {
	h := newConvertHandler(cs, af, m)
	rg.GET("/convert", h.convert)
}

// convert resolves GET /api/v1/convert?from=BTC&to=USDT&amount=2[&at=...].
func (h *convertHandler) convert(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var raw dto.ConvertRequest
	if err := c.ShouldBindQuery(&raw); err != nil {
		logger.Warn("Failed to bind query for convert", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	req, err := raw.ToConversionRequest(h.amountFactory)
	if err != nil {
		logger.Warn("Validation error on convert request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.conversionService.GetConversion(c.Request.Context(), req)
	if err != nil {
		h.writeConversionError(c, logger, req, err)
		return
	}

	h.metrics.Conversions.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, dto.ToConvertResponse(req.Pair, resp))
}

func (h *convertHandler) writeConversionError(c *gin.Context, logger *slog.Logger, req portssvc.ConversionRequest, err error) {
	symbol := req.Pair.Symbol()

	switch {
	case errors.Is(err, apperrors.ErrValidation):
		h.metrics.Conversions.WithLabelValues("invalid").Inc()
		logger.Warn("Validation error on conversion", slog.String("symbol", symbol), slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrQuoteNotFound):
		h.metrics.Conversions.WithLabelValues("not_found").Inc()
		logger.Warn("No quote found for conversion", slog.String("symbol", symbol))
		c.JSON(http.StatusNotFound, gin.H{"error": "no quote available for " + symbol})
	case errors.Is(err, apperrors.ErrQuoteTooOld):
		h.metrics.Conversions.WithLabelValues("stale").Inc()
		logger.Warn("Quote too old for conversion", slog.String("symbol", symbol), slog.String("error", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		h.metrics.Conversions.WithLabelValues("error").Inc()
		logger.Error("Failed to resolve conversion", slog.String("symbol", symbol), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve conversion"})
	}
}
