// Package client is the REST client for the book/author graph backend. It
// paces requests with a token bucket, fails fast through a circuit breaker
// while the backend is down, and never retries.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/dd0wney/cluso-topology/pkg/logging"
	"github.com/dd0wney/cluso-topology/pkg/metrics"
	"github.com/dd0wney/cluso-topology/pkg/validation"
)

const (
	// DefaultBaseURL is the API prefix used when none is configured.
	DefaultBaseURL = "/api"

	// DefaultTimeout bounds a single request.
	DefaultTimeout = 10 * time.Second

	// DefaultRateLimit is the steady request rate per second.
	DefaultRateLimit = 20.0
	DefaultBurst     = 5

	// RequestIDHeader carries the per-request correlation id.
	RequestIDHeader = "X-Request-ID"

	maxErrorBody = 4096
)

// BreakerConfig configures the fail-fast circuit breaker.
type BreakerConfig struct {
	MaxRequests      uint32        // Requests allowed while half-open
	Interval         time.Duration // Closed-state window for clearing counts
	Timeout          time.Duration // Open duration before probing again
	FailureThreshold float64       // Failure ratio that trips the breaker
	MinRequests      uint32        // Requests needed before the ratio counts
}

// DefaultBreakerConfig returns the breaker defaults.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      1,
		Interval:         30 * time.Second,
		Timeout:          15 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      3,
	}
}

// Client talks to the graph backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	breakerCfg BreakerConfig
	logger     logging.Logger
	metrics    *metrics.Registry
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = validation.DefaultOr(d, DefaultTimeout)
	}
}

// WithRateLimit sets the request rate and burst.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithBreaker overrides the circuit breaker settings.
func WithBreaker(cfg BreakerConfig) Option {
	return func(c *Client) {
		c.breakerCfg = cfg
	}
}

// WithLogger sets the client logger.
func WithLogger(l logging.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithMetrics records request counts, latency and breaker state.
func WithMetrics(reg *metrics.Registry) Option {
	return func(c *Client) {
		c.metrics = reg
	}
}

// New creates a client for baseURL, e.g. "http://localhost:8000/api".
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultBurst),
		breakerCfg: DefaultBreakerConfig(),
		logger:     logging.NewNopLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	cfg := c.breakerCfg
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "graph-backend",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			c.logger.Warn("circuit breaker state changed",
				logging.String("breaker", name),
				logging.String("from", from.String()),
				logging.String("to", to.String()))
			c.metrics.SetBreakerState(int(to))
		},
		IsSuccessful: func(err error) bool {
			return !serverFault(err)
		},
	})

	return c
}

// BaseURL returns the API prefix requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// BreakerOpen reports whether requests are currently being refused.
func (c *Client) BreakerOpen() bool {
	return c.breaker.State() == gobreaker.StateOpen
}

// request describes one call. body is JSON-encoded unless raw is set.
type request struct {
	method      string
	path        string
	endpoint    string // metric label; path without ids
	query       url.Values
	body        any
	raw         io.Reader
	contentType string
}

// do runs req through the limiter and breaker and decodes a 2xx body into
// out (which may be nil).
func (c *Client) do(ctx context.Context, req request, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	start := time.Now()
	requestID := uuid.NewString()

	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.send(ctx, req, requestID, out)
	})

	status := "ok"
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		status = "unavailable"
		err = fmt.Errorf("%s %s: %w", req.method, req.path, ErrUnavailable)
	case err != nil:
		status = "error"
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			status = strconv.Itoa(apiErr.StatusCode)
		}
	}

	elapsed := time.Since(start)
	c.metrics.RecordClientRequest(req.endpoint, status, elapsed)

	fields := []logging.Field{
		logging.Endpoint(req.method, req.path),
		logging.RequestID(requestID),
		logging.Latency(elapsed),
	}
	if err != nil {
		c.logger.Warn("backend request failed", append(fields, logging.Error(err))...)
		return err
	}
	c.logger.Debug("backend request", fields...)
	return nil
}

func (c *Client) send(ctx context.Context, req request, requestID string, out any) error {
	u := c.baseURL + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	body := req.raw
	contentType := req.contentType
	if req.body != nil {
		buf, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(RequestIDHeader, requestID)
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.method, req.path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Method:     req.method,
			Path:       req.path,
			Detail:     errorDetail(resp.Body),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrInvalidResponse, req.method, req.path, err)
	}
	return nil
}

// errorDetail extracts a FastAPI-style {"detail": "..."} message, falling
// back to the trimmed body text.
func errorDetail(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var body struct {
		Detail any    `json:"detail"`
		Error  string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil {
		switch d := body.Detail.(type) {
		case string:
			return d
		case nil:
		default:
			b, _ := json.Marshal(d)
			return string(b)
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return strings.TrimSpace(string(raw))
}
