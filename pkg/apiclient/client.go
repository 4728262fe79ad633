package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// maxResponseBody caps how much of a response is read into memory.
const maxResponseBody = 1 << 20

// TokenSource yields the bearer credential to attach to outbound requests.
// The session store satisfies this; the client itself never stores or
// refreshes credentials.
type TokenSource interface {
	Token() (string, bool)
}

// Config declares the environment bindings for the remote API connection.
type Config struct {
	BaseURL string        `env:"SHOP_API_BASE_URL" envDefault:"http://127.0.0.1:5000"`
	Timeout time.Duration `env:"SHOP_API_TIMEOUT" envDefault:"30s"`
}

// Option configures client creation.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client, for custom transports
// or tests. Nil clients are ignored.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout on the underlying HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger sets the logger used for request/response debug records.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// Client mediates every outbound request to the remote catalog API: it
// resolves paths against the base URL, attaches the JSON content type and
// the bearer credential when one is present, and classifies failures into
// NetworkError (no response) and HTTPError (non-2xx response). It does not
// retry and attaches no meaning to status codes beyond success/failure;
// that is the callers' and the auth guard's job.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	log     *slog.Logger
}

// New creates a client for the API at baseURL. tokens may be nil for a
// client that only ever issues unauthenticated requests.
func New(baseURL string, tokens TokenSource, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: scheme must be http or https", ErrInvalidBaseURL)
	}

	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		tokens: tokens,
		log:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Do issues one request and decodes a successful JSON response into out.
// body is marshaled as JSON when non-nil; out may be nil when the caller
// does not care about the response payload.
//
// Failure classification:
//   - the request never produced a response: *NetworkError
//   - the server answered outside 2xx: *HTTPError with status and body
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.tokens != nil {
		if token, ok := c.tokens.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	reqID := uuid.NewString()
	start := time.Now()
	c.log.DebugContext(ctx, "api request",
		slog.String("request_id", reqID),
		slog.String("method", method),
		slog.String("path", path),
	)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.DebugContext(ctx, "api request failed",
			slog.String("request_id", reqID),
			slog.Any("error", err),
		)
		return &NetworkError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return &NetworkError{Err: fmt.Errorf("read response body: %w", err)}
	}

	c.log.DebugContext(ctx, "api response",
		slog.String("request_id", reqID),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newHTTPError(resp.StatusCode, data)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response body: %w", err)
		}
	}
	return nil
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out)
}
