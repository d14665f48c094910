package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/harborview/app/backend/internal/config"
	"github.com/harborview/app/backend/internal/timeutil"
)

// Logger is the minimal logging interface the API client depends on.
type Logger interface {
	Debug(message string, source ...string)
	Info(message string, source ...string)
	Warn(message string, source ...string)
	Error(message string, source ...string)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...string) {}
func (noopLogger) Info(string, ...string)  {}
func (noopLogger) Warn(string, ...string)  {}
func (noopLogger) Error(string, ...string) {}

// contextSleep allows tests to stub or override; defaults to a context-aware sleep.
var contextSleep = timeutil.SleepWithContext

// Config captures the dependencies for an API client.
type Config struct {
	// BaseURL is the dashboard API root, e.g. http://127.0.0.1:8090.
	BaseURL string
	// HTTPClient overrides the default client. Optional.
	HTTPClient *http.Client
	// Logger receives retry and failure diagnostics. Optional.
	Logger Logger
	// MaxAttempts overrides the retry attempt cap. Optional.
	MaxAttempts int
	// RetryBaseDelay overrides the first retry delay. Optional.
	RetryBaseDelay time.Duration
}

// Client issues snapshot requests against the dashboard REST API. Stores use
// it to load the full resource list before stream events are applied.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	logger         Logger
	maxAttempts    int
	retryBaseDelay time.Duration
}

// NewClient constructs an API client rooted at the given base URL.
func NewClient(cfg Config) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:     cfg.HTTPClient,
		logger:         cfg.Logger,
		maxAttempts:    cfg.MaxAttempts,
		retryBaseDelay: cfg.RetryBaseDelay,
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: config.FetchCallTimeout}
	}
	if c.logger == nil {
		c.logger = noopLogger{}
	}
	if c.maxAttempts <= 0 {
		c.maxAttempts = config.FetchMaxAttempts
	}
	if c.retryBaseDelay <= 0 {
		c.retryBaseDelay = config.FetchRetryBaseDelay
	}
	return c
}

// StatusError reports a non-2xx response from the API.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api responded %d: %s", e.Code, e.Body)
}

// listEnvelope is the wire shape of every list endpoint.
type listEnvelope[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// List fetches the snapshot at path and decodes the item list. Transient
// failures are retried with capped exponential backoff before the error is
// surfaced to the caller.
func List[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.FetchCallTimeout)
		defer cancel()
	}

	var envelope listEnvelope[T]
	if err := c.getJSON(ctx, path, &envelope); err != nil {
		return nil, err
	}
	return envelope.Items, nil
}

// Get fetches a single object at path.
func Get[T any](ctx context.Context, c *Client, path string) (T, error) {
	var out T
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.FetchCallTimeout)
		defer cancel()
	}
	if err := c.getJSON(ctx, path, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	target := c.baseURL + path

	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := c.doOnce(ctx, target, out)
		if err == nil {
			return nil
		}
		lastErr = err

		retryable, reason := isRetryableError(err)
		isLastAttempt := attempt == c.maxAttempts-1
		if !retryable || isLastAttempt {
			c.logger.Error(fmt.Sprintf("Failed to fetch %s: %v", path, err), "ApiClient")
			return err
		}

		backoff := c.retryBaseDelay << attempt
		if backoff > config.FetchRetryMaxDelay {
			backoff = config.FetchRetryMaxDelay
		}
		c.logger.Warn(fmt.Sprintf("Retrying %s due to %s (attempt %d/%d)", path, reason, attempt+1, c.maxAttempts-1), "ApiClient")
		if err := contextSleep(ctx, backoff); err != nil {
			return err
		}
	}
	return lastErr
}

func (c *Client) doOnce(ctx context.Context, target string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func isRetryableError(err error) (bool, string) {
	if err == nil {
		return false, ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true, "request timeout"
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true, "network timeout"
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		lowered := strings.ToLower(urlErr.Err.Error())
		for _, token := range []string{"connection refused", "connection reset", "no such host"} {
			if strings.Contains(lowered, token) {
				return true, token
			}
		}
	}

	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return true, "unexpected eof"
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		if statusErr.Code == http.StatusTooManyRequests {
			return true, "rate limited"
		}
		if statusErr.Code >= 500 && statusErr.Code < 600 {
			return true, fmt.Sprintf("server %d", statusErr.Code)
		}
	}

	return false, ""
}
