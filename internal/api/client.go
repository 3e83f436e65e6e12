// Package api is the single chokepoint for all BarberPro HTTP calls. Every
// other component routes network access through Client; none issues raw
// requests.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/barberpro/barberpro-mobile/internal/observability/metrics"
	"github.com/barberpro/barberpro-mobile/pkg/logging"
)

const defaultTimeout = 20 * time.Second

// TokenSource yields the current bearer token. It is re-read on every request
// so a cleared session is never followed by a call with a stale token.
type TokenSource interface {
	Token(ctx context.Context) (string, bool)
}

// SessionInvalidator is notified when a 401 invalidates the session. Clearing
// must be atomic (token and user together) and idempotent.
type SessionInvalidator interface {
	HandleSessionExpired()
}

// Client is the API gateway client.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	tokens      TokenSource
	invalidator SessionInvalidator
	logger      *logging.Logger
	metrics     *metrics.APIMetrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the transport timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithMetrics enables request instrumentation.
func WithMetrics(m *metrics.APIMetrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a gateway client. tokens may be nil for a fully anonymous
// client (tests); the invalidator is wired after the session manager exists.
func NewClient(baseURL string, tokens TokenSource, logger *logging.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		tokens:     tokens,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetInvalidator wires the session-expiry hook. The session manager owns the
// client and the client reports 401s back to it, so this is set after both
// exist.
func (c *Client) SetInvalidator(inv SessionInvalidator) {
	c.invalidator = inv
}

type requestOpts struct {
	skipAuth bool
}

// RequestOption configures a single request.
type RequestOption func(*requestOpts)

// SkipAuth marks the request anonymous; no bearer token is attached.
func SkipAuth() RequestOption {
	return func(o *requestOpts) { o.skipAuth = true }
}

// Do issues one request and returns the raw response body. Failures are
// always one of *NetworkError, *HTTPError or *AuthError.
func (c *Client) Do(ctx context.Context, method, path string, body any, opts ...RequestOption) ([]byte, error) {
	var o requestOpts
	for _, opt := range opts {
		opt(&o)
	}

	var rd io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("api: marshal request: %w", err)
		}
		rd = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, fmt.Errorf("api: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if !o.skipAuth && c.tokens != nil {
		// A missing token is not an error here: some endpoints accept
		// anonymous reads.
		if token, ok := c.tokens.Token(ctx); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(method, "network_error", 0)
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.ObserveRequest(method, "network_error", 0)
		return nil, &NetworkError{Err: err}
	}

	// 401 pre-empts all other handling: clear the session, then fail.
	if resp.StatusCode == http.StatusUnauthorized {
		if c.invalidator != nil {
			c.invalidator.HandleSessionExpired()
		}
		c.metrics.ObserveSessionExpired()
		c.metrics.ObserveRequest(method, "auth_error", resp.StatusCode)
		c.logger.Warn("session invalidated by 401", "path", path)
		return nil, &AuthError{}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.metrics.ObserveRequest(method, "http_error", resp.StatusCode)
		return nil, &HTTPError{Status: resp.StatusCode, Message: errorMessage(resp.StatusCode, respBody)}
	}

	c.metrics.ObserveRequest(method, "ok", resp.StatusCode)
	return respBody, nil
}

// Call issues a request and decodes the JSON body into T. An empty body
// (e.g. 204) yields the zero value instead of a decode failure.
func Call[T any](ctx context.Context, c *Client, method, path string, body any, opts ...RequestOption) (T, error) {
	var out T
	raw, err := c.Do(ctx, method, path, body, opts...)
	if err != nil {
		return out, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("api: decode response: %w", err)
	}
	return out, nil
}

func errorMessage(status int, body []byte) string {
	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.Error != "" {
			return envelope.Error
		}
		if envelope.Message != "" {
			return envelope.Message
		}
	}
	return fallbackMessage(status)
}
