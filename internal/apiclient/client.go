// Package apiclient is the single entry point to the catalog backend. It
// builds requests against a fixed origin, attaches the session's bearer
// token and normalizes error responses. There is no timeout and no retry:
// every call is a single attempt.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"storefront/pkg/logger"
)

const contentTypeJSON = "application/json"

// TokenSource yields the current bearer token, empty when anonymous.
type TokenSource interface {
	Token() string
}

// Observer is notified after every backend call. Status is 0 when the
// request never completed.
type Observer interface {
	ObserveRequest(method, endpoint string, status int, elapsed time.Duration)
}

// RequestOptions describes one backend call.
type RequestOptions struct {
	Method  string
	Body    Body
	Headers map[string]string
	// BearerToken, when set, is sent instead of the session token.
	BearerToken string
}

// Client talks to the catalog backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	observer   Observer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithObserver registers an Observer.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetTokenSource wires the session into the client. It must be called
// before the client is shared.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.tokens = ts
}

// BaseURL is the backend origin, used to resolve relative image paths.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request performs the call and returns the JSON response body, or nil when
// the body is empty or not JSON (DELETE responses).
func (c *Client) Request(ctx context.Context, endpoint string, opts RequestOptions) (json.RawMessage, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var (
		body        io.Reader
		contentType = contentTypeJSON
	)
	if opts.Body != nil {
		var err error
		body, contentType, err = opts.Body.encode()
		if err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Request-ID", uuid.NewString())
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}
	if token := c.bearer(opts); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(method, endpoint, 0, start)
		logger.Warn(ctx).Err(err).Str("method", method).Str("endpoint", endpoint).Msg("Backend request failed")
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()
	c.observe(method, endpoint, resp.StatusCode, start)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Debug(ctx).Int("status", resp.StatusCode).Str("method", method).Str("endpoint", endpoint).Msg("Backend returned error status")
		return nil, &RequestError{Status: resp.StatusCode, Body: string(data)}
	}

	if len(strings.TrimSpace(string(data))) == 0 || !json.Valid(data) {
		return nil, nil
	}
	return json.RawMessage(data), nil
}

// Do performs the call and decodes the response into out, when both are
// present.
func (c *Client) Do(ctx context.Context, endpoint string, opts RequestOptions, out interface{}) error {
	data, err := c.Request(ctx, endpoint, opts)
	if err != nil {
		return err
	}
	if data == nil || out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return nil
}

func (c *Client) bearer(opts RequestOptions) string {
	if opts.BearerToken != "" {
		return opts.BearerToken
	}
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

func (c *Client) observe(method, endpoint string, status int, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveRequest(method, endpoint, status, time.Since(start))
	}
}
