package binance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/SscSPs/crypto_converter/internal/apperrors"
	"github.com/SscSPs/crypto_converter/internal/utils/resilience"
)

const (
	defaultBaseURL = "https://api.binance.com"

	endpointTime         = "/api/v3/time"
	endpointTickerPrice  = "/api/v3/ticker/price"
	endpointExchangeInfo = "/api/v3/exchangeInfo"
)

// ClientConfig tunes the Binance REST client.
type ClientConfig struct {
	BaseURL               string
	Timeout               time.Duration
	MaxConnections        int
	MaxConnectionsPerHost int
	BreakerEnabled        bool
	BreakerThreshold      int
	BreakerRecovery       time.Duration
}

// Client calls the Binance public REST API with bounded retries and circuit
// breaker protection. Every failure surfaces as apperrors.ErrProviderUnavailable;
// the client never returns partially validated data.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *resilience.CircuitBreaker
	logger  *slog.Logger
}

// NewClient creates a Client with a pooled transport.
func NewClient(config ClientConfig, logger *slog.Logger) *Client {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if config.MaxConnections <= 0 {
		config.MaxConnections = 10
	}
	if config.MaxConnectionsPerHost <= 0 {
		config.MaxConnectionsPerHost = 5
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 3 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:        config.MaxConnections,
		MaxConnsPerHost:     config.MaxConnectionsPerHost,
		MaxIdleConnsPerHost: config.MaxConnectionsPerHost,
		ForceAttemptHTTP2:   true,
		IdleConnTimeout:     90 * time.Second,
	}

	c := &Client{
		baseURL: config.BaseURL,
		http:    &http.Client{Timeout: config.Timeout, Transport: transport},
		logger:  logger,
	}

	if config.BreakerEnabled {
		c.breaker = resilience.NewCircuitBreaker(resilience.BreakerConfig{
			Name:             "binance",
			FailureThreshold: config.BreakerThreshold,
			RecoveryTimeout:  config.BreakerRecovery,
		}, logger)
	}

	return c
}

// Close releases pooled connections.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// GetServerTime fetches the exchange's clock.
func (c *Client) GetServerTime(ctx context.Context) (ServerTime, error) {
	var out ServerTime
	if err := c.call(ctx, endpointTime, "server time", &out); err != nil {
		return ServerTime{}, err
	}
	if err := out.Validate(); err != nil {
		return ServerTime{}, fmt.Errorf("%w: %v", apperrors.ErrProviderUnavailable, err)
	}
	return out, nil
}

// GetAllTickerPrices fetches the full ticker price list.
func (c *Client) GetAllTickerPrices(ctx context.Context) ([]Ticker, error) {
	var out []Ticker
	if err := c.call(ctx, endpointTickerPrice, "all ticker prices", &out); err != nil {
		return nil, err
	}
	for _, t := range out {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("%w: invalid ticker response: %v", apperrors.ErrProviderUnavailable, err)
		}
	}
	return out, nil
}

// GetExchangeInfo fetches exchange metadata (the tradable symbol list).
func (c *Client) GetExchangeInfo(ctx context.Context) (ExchangeInfo, error) {
	var out ExchangeInfo
	if err := c.call(ctx, endpointExchangeInfo, "exchange info", &out); err != nil {
		return ExchangeInfo{}, err
	}
	if err := out.Validate(); err != nil {
		return ExchangeInfo{}, fmt.Errorf("%w: invalid exchange info response: %v", apperrors.ErrProviderUnavailable, err)
	}
	return out, nil
}

// call runs one logical API call: retries inside, breaker outside, so a call
// that exhausts its retries counts as a single breaker failure.
func (c *Client) call(ctx context.Context, endpoint, description string, out any) error {
	fetch := func() error {
		return c.callWithRetry(ctx, endpoint, description, out)
	}

	if c.breaker == nil {
		return fetch()
	}

	err := c.breaker.Execute(fetch, func(err error) bool {
		return errors.Is(err, apperrors.ErrProviderUnavailable)
	})
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return fmt.Errorf("%w: circuit breaker is open, waiting for recovery timeout", apperrors.ErrProviderUnavailable)
	}
	return err
}

func (c *Client) callWithRetry(ctx context.Context, endpoint, description string, out any) error {
	// Transport errors and 429s are worth another attempt; anything already
	// classified as a provider error (bad status, bad payload) is final.
	retryable := func(err error) bool {
		return !errors.Is(err, apperrors.ErrProviderUnavailable)
	}

	err := resilience.Retry(ctx, resilience.RetryConfig{
		Name:        description,
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxDelay:    10 * time.Second,
	}, c.logger, retryable, func(ctx context.Context) error {
		return c.doRequest(ctx, endpoint, description, out)
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, apperrors.ErrProviderUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %s failed after retries: %v", apperrors.ErrProviderUnavailable, description, err)
}

func (c *Client) doRequest(ctx context.Context, endpoint, description string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: %s: failed to build request: %v", apperrors.ErrProviderUnavailable, description, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", description, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		c.logger.Warn("binance rate limited",
			slog.String("endpoint", endpoint),
			slog.Duration("retry_after", retryAfter),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryAfter):
		}
		return fmt.Errorf("rate limited, retry after %s", retryAfter)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s failed: HTTP %d - %s",
			apperrors.ErrProviderUnavailable, description, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s returned malformed response: %v", apperrors.ErrProviderUnavailable, description, err)
	}

	return nil
}

func parseRetryAfter(header string) time.Duration {
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(seconds) * time.Second
}
