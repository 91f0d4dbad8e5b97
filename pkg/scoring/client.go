package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Relative paths of the scoring service endpoints.
const (
	PathModelsList   = "/api/models/list"
	PathModelsParams = "/api/models/params"
	PathPredict      = "/api/predict"
)

// DefaultTimeout bounds a single request when the caller does not configure
// one on the client or the context.
const DefaultTimeout = 10 * time.Second

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 4 << 20

// Client talks to the scoring service. A single attempt is made per call;
// failures are normalised by the endpoint-specific methods.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *zap.Logger
	metrics    *Metrics
}

// Option configures the client.
type Option func(*Client)

// WithBaseURL sets the scheme/host prefix the relative endpoint paths are
// resolved against. Leave empty when a proxy or an absolute transport handles
// routing.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(strings.TrimSpace(base), "/")
	}
}

// WithHTTPClient overrides the HTTP client used for every request.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout bounds each request. Zero keeps the default.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records request counters and latencies.
func WithMetrics(metrics *Metrics) Option {
	return func(c *Client) {
		c.metrics = metrics
	}
}

// New constructs a Client with defaults (http.DefaultClient, 10s timeout,
// no-op logger).
func New(options ...Option) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		timeout:    DefaultTimeout,
		logger:     zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c
}

// statusError reports a non-2xx response and keeps the body so callers can
// look for a structured error.
type statusError struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (e *statusError) Error() string {
	return "scoring: unexpected status " + e.Status
}

func (c *Client) endpoint(path string, query url.Values) string {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return target
}

// do executes a request and returns the body of a 2xx response. Non-2xx
// responses return a *statusError carrying the body.
func (c *Client) do(ctx context.Context, name, method, target string, body any) ([]byte, error) {
	start := time.Now()
	data, err := c.roundTrip(ctx, method, target, body)
	c.metrics.observe(name, err, time.Since(start))
	if err != nil {
		c.logger.Debug("scoring request failed",
			zap.String("endpoint", name),
			zap.String("url", target),
			zap.Error(err),
		)
		return nil, err
	}
	c.logger.Debug("scoring request completed",
		zap.String("endpoint", name),
		zap.Duration("elapsed", time.Since(start)),
	)
	return data, nil
}

func (c *Client) roundTrip(ctx context.Context, method, target string, body any) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("scoring: context is required")
	}

	reqCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("scoring: encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(reqCtx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("scoring: request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scoring: do request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("scoring: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &statusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       data,
		}
	}
	return data, nil
}
