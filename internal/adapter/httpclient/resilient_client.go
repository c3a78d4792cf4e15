package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"

	"github.com/hive-corporation/keyguard/internal/platform/metrics"
)

// Doer is the request-executing half of *http.Client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ResilientClient wraps an HTTP client with circuit breaker and retry logic
type ResilientClient struct {
	name    string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	config  Config
	logger  *slog.Logger
}

// Config holds configuration for the resilient client
type Config struct {
	// Circuit breaker settings
	EnableCircuitBreaker bool
	MaxFailures          uint32
	CircuitTimeout       time.Duration

	// Retry settings
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func DefaultConfig() Config {
	return Config{
		EnableCircuitBreaker: true,
		MaxFailures:          5,
		CircuitTimeout:       30 * time.Second,
		MaxRetries:           3,
		InitialInterval:      500 * time.Millisecond,
		MaxInterval:          5 * time.Second,
	}
}

// New creates a resilient client. name labels the breaker and the
// client error metrics.
func New(name string, timeout time.Duration, config Config, logger *slog.Logger) *ResilientClient {
	if logger == nil {
		logger = slog.Default()
	}

	c := &ResilientClient{
		name:   name,
		client: &http.Client{Timeout: timeout},
		config: config,
		logger: logger,
	}

	if config.EnableCircuitBreaker {
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Interval:    0, // Don't reset counts automatically
			Timeout:     config.CircuitTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= config.MaxFailures
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				logger.Warn("circuit breaker changed state", "client", name, "from", from.String(), "to", to.String())
				if to == gobreaker.StateOpen {
					metrics.RecordClientError(name, "circuit_open")
				}
			},
		})
	}

	return c
}

// Do executes an HTTP request with circuit breaker and retry logic.
// Responses with status >= 400 are returned as errors.
func (c *ResilientClient) Do(req *http.Request) (*http.Response, error) {
	if c.breaker == nil {
		return c.doWithRetry(req)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.doWithRetry(req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.RecordClientError(c.name, "circuit_open")
			return nil, fmt.Errorf("circuit breaker is open: %w", err)
		}
		return nil, err
	}

	return result.(*http.Response), nil
}

// doWithRetry executes an HTTP request with exponential backoff retry logic
func (c *ResilientClient) doWithRetry(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		var err error
		body, err = io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
	}

	var resp *http.Response
	var lastErr error

	operation := func() error {
		if body != nil {
			req.Body = io.NopCloser(bytes.NewReader(body))
		}

		var err error
		resp, err = c.client.Do(req)
		if err != nil {
			lastErr = err
			c.recordError(err, nil)
			if c.shouldRetry(err, nil) {
				return err
			}
			return backoff.Permanent(err)
		}

		if resp.StatusCode >= 400 {
			lastErr = fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
			c.recordError(nil, resp)
			retry := c.shouldRetry(nil, resp)
			resp.Body.Close()
			resp = nil
			if retry {
				return lastErr
			}
			return backoff.Permanent(lastErr)
		}

		return nil
	}

	if c.config.MaxRetries <= 0 {
		if err := operation(); err != nil {
			return nil, lastErr
		}
		return resp, nil
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = c.config.InitialInterval
	expBackoff.MaxInterval = c.config.MaxInterval
	expBackoff.Multiplier = 2.0
	expBackoff.MaxElapsedTime = 0 // only max retries bound the loop

	retryBackoff := backoff.WithContext(
		backoff.WithMaxRetries(expBackoff, uint64(c.config.MaxRetries)),
		req.Context(),
	)

	if err := backoff.Retry(operation, retryBackoff); err != nil {
		if lastErr == nil {
			lastErr = err
		}
		return nil, fmt.Errorf("request failed after retries: %w", lastErr)
	}

	return resp, nil
}

// shouldRetry determines if an error or response should trigger a retry
func (c *ResilientClient) shouldRetry(err error, resp *http.Response) bool {
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return false
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return true
		}
		msg := err.Error()
		return strings.Contains(msg, "connection refused") ||
			strings.Contains(msg, "connection reset") ||
			strings.Contains(msg, "EOF")
	}

	if resp != nil {
		switch resp.StatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}

	return false
}

func (c *ResilientClient) recordError(err error, resp *http.Response) {
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			metrics.RecordClientError(c.name, "timeout")
			return
		}
		metrics.RecordClientError(c.name, "connection")
		return
	}
	if resp == nil {
		return
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		metrics.RecordClientError(c.name, "auth")
	case http.StatusTooManyRequests:
		metrics.RecordClientError(c.name, "rate_limit")
	case http.StatusRequestTimeout:
		metrics.RecordClientError(c.name, "timeout")
	case http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		metrics.RecordClientError(c.name, "server_error")
	default:
		metrics.RecordClientError(c.name, "http_error")
	}
}
