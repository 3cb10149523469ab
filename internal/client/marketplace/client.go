// Package marketplace is the client of the marketplace backend. Queries are
// memoized in a QueryCache and every mutation invalidates the queries whose
// results it could have changed.
//
// Errors carry the backend's taxonomy: errors.Is matches the same sentinels
// the backend returned. A failed call whose outcome is not known, such as a
// timeout, a 5xx or an unreadable response, is ErrUnavailable and must be
// treated as "unknown", never as a denial.
package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/atinyakov/GophMarket/internal/models"
)

// Client calls the marketplace backend on behalf of one caller identity.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
	cache   *QueryCache
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client, usually one built by NewHTTPClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithBearerToken authenticates every request with a JWT whose subject is the caller's principal.
func WithBearerToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithCache shares a QueryCache between clients of the same identity.
func WithCache(qc *QueryCache) Option {
	return func(c *Client) { c.cache = qc }
}

// New creates a Client for the backend at baseURL, e.g. "https://localhost:8443".
func New(baseURL string, opts ...Option) (*Client, error) {
	c := &Client{baseURL: strings.TrimRight(baseURL, "/")}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: DefaultTimeout}
	}
	if c.token != "" {
		next := c.http.Transport
		if next == nil {
			next = http.DefaultTransport
		}
		hc := *c.http
		hc.Transport = &bearerTransport{token: c.token, next: next}
		c.http = &hc
	}
	if c.cache == nil {
		qc, err := NewQueryCache(DefaultCacheSize)
		if err != nil {
			return nil, fmt.Errorf("create cache: %w", err)
		}
		c.cache = qc
	}
	return c, nil
}

// Cache returns the client's query cache.
func (c *Client) Cache() *QueryCache {
	return c.cache
}

// do sends in as the JSON body and decodes the response into out. Either may be nil.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/api"+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", models.ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s %s: %v", models.ErrUnavailable, method, path, err)
	}
	return nil
}

// remoteError keeps the backend's message while matching its sentinel.
type remoteError struct {
	sentinel error
	message  string
}

func (e *remoteError) Error() string { return e.message }

func (e *remoteError) Unwrap() error { return e.sentinel }

func decodeError(resp *http.Response) error {
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: status %d", models.ErrUnavailable, resp.StatusCode)
	}
	var body models.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("%w: unreadable error response (status %d)", models.ErrUnavailable, resp.StatusCode)
	}
	sentinel := models.FromCodes(body.Error, body.Reason)
	if sentinel == nil {
		return fmt.Errorf("%w: unknown error %q (status %d)", models.ErrUnavailable, body.Error, resp.StatusCode)
	}
	if body.Message == "" {
		return sentinel
	}
	return &remoteError{sentinel: sentinel, message: body.Message}
}
