package jira

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/phuslu/log"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// DefaultTimeout bounds every outbound call.
const DefaultTimeout = 30 * time.Second

// TokenProvider returns the current bearer token for a destination. It is
// called immediately before each request so short-lived tokens are never
// reused across calls.
type TokenProvider func(ctx context.Context, destination string) (*oauth2.Token, error)

// ClientConfig is the resolved request configuration for the Jira API.
type ClientConfig struct {
	// BaseURL is the root URL of the Jira site.
	BaseURL string

	// Timeout applies to each request. Zero means DefaultTimeout.
	Timeout time.Duration

	// Headers are set on every request. Static credentials are carried
	// here as a precomputed Authorization header.
	Headers map[string]string

	// TokenProvider, when set, supplies a fresh Authorization token per
	// request for DestinationName.
	TokenProvider   TokenProvider
	DestinationName string

	// DestinationUsed reports that delegated credentials were requested.
	// It is informational and surfaces in TestConnection.
	DestinationUsed bool

	// RequestsPerSecond paces outbound requests. Zero means unlimited.
	RequestsPerSecond float64

	// Transport allows injecting a custom HTTP transport (for tests).
	Transport http.RoundTripper
}

// HTTPError is returned for non-2xx responses.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Client is a thin HTTP client for the Jira Cloud REST API v3. It never
// retries: a failed call is reported to the caller immediately.
type Client struct {
	cfg        ClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewClient creates a Jira client from a resolved configuration.
func NewClient(cfg *ClientConfig, logger *log.Logger) *Client {
	c := *cfg
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = &log.DefaultLogger
	}

	limit := rate.Inf
	if c.RequestsPerSecond > 0 {
		limit = rate.Limit(c.RequestsPerSecond)
	}

	return &Client{
		cfg: c,
		httpClient: &http.Client{
			Timeout:   c.Timeout,
			Transport: c.Transport,
		},
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
}

// BaseURL returns the Jira site the client talks to.
func (c *Client) BaseURL() string {
	return c.cfg.BaseURL
}

// Get performs an HTTP GET request and unmarshals the JSON response.
// path may already carry a query string; query is appended to it when
// non-empty.
func (c *Client) Get(
	ctx context.Context,
	path string,
	query url.Values,
	result interface{},
) error {
	return c.do(ctx, http.MethodGet, path, query, result)
}

func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	query url.Values,
	result interface{},
) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for rate limiter: %w", err)
	}

	target := c.cfg.BaseURL + path
	if len(query) > 0 {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		target += sep + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	for k, v := range c.cfg.Headers {
		req.Header.Set(k, v)
	}
	c.applyToken(ctx, req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request %s %s: %w", method, path, err)
	}

	respBody, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return fmt.Errorf("reading response body: %w", readErr)
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("jira request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newHTTPError(resp.StatusCode, respBody)
	}

	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf(
			"unmarshaling response from %s %s: %w", method, path, err,
		)
	}

	return nil
}

// applyToken asks the token provider for the current token and writes it
// to the request. A provider failure leaves the request unauthenticated;
// Jira then answers 401, which reaches the caller as a normal failure.
func (c *Client) applyToken(ctx context.Context, req *http.Request) {
	if c.cfg.TokenProvider == nil {
		return
	}

	token, err := c.cfg.TokenProvider(ctx, c.cfg.DestinationName)
	if err != nil {
		c.logger.Error().
			Err(err).
			Str("destination", c.cfg.DestinationName).
			Msg("failed to get OAuth token from destination")
		return
	}
	if token == nil || token.AccessToken == "" {
		c.logger.Warn().
			Str("destination", c.cfg.DestinationName).
			Msg("destination returned no auth token")
		return
	}

	token.SetAuthHeader(req)
}

// newHTTPError builds an HTTPError, preferring Jira's own error messages
// over a generic status line.
func newHTTPError(status int, body []byte) *HTTPError {
	var jiraErr ErrorResponse
	if json.Unmarshal(body, &jiraErr) == nil &&
		(len(jiraErr.ErrorMessages) > 0 || len(jiraErr.Errors) > 0) {
		msgs := append([]string(nil), jiraErr.ErrorMessages...)
		for field, msg := range jiraErr.Errors {
			msgs = append(msgs, field+": "+msg)
		}
		return &HTTPError{
			StatusCode: status,
			Message: fmt.Sprintf(
				"request failed with status code %d: %s",
				status, strings.Join(msgs, "; "),
			),
		}
	}

	return &HTTPError{
		StatusCode: status,
		Message:    fmt.Sprintf("request failed with status code %d", status),
	}
}

// statusOf extracts the HTTP status from err, or 0 when the failure
// happened before a response was received.
func statusOf(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}
