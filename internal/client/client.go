// Package client talks to the CoachDesk REST API. It backs the chat
// client, the import tool and the MCP server in remote mode, where the
// binary runs locally but data lives on the server (reached over Tailscale).
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
	"strings"
	"time"

	"github.com/claude/coachdesk/internal/storage"
)

const dateLayout = "2006-01-02"

// StatusError is a non-2xx answer from the API.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Msg    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s returned %d: %s", e.Method, e.Path, e.Code, e.Msg)
}

// Unwrap maps 404 to storage.ErrNotFound so callers can treat the REST
// client and the database the same way.
func (e *StatusError) Unwrap() error {
	if e.Code == http.StatusNotFound {
		return storage.ErrNotFound
	}
	return nil
}

// Client calls the CoachDesk API with an API key.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	attempts   int
	backoff    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetry sets how often idempotent requests are attempted and the
// initial backoff, which doubles after each failure.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(c *Client) {
		c.attempts = max(attempts, 1)
		c.backoff = backoff
	}
}

// New creates a Client targeting the given base URL.
func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		attempts:   3,
		backoff:    time.Second,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// get fetches path and decodes the JSON answer into out, retrying on
// transport errors and 5xx.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	return c.retry(ctx, func() error {
		return c.do(ctx, http.MethodGet, path, "", nil, out)
	})
}

// post sends body as JSON once. Writes are not retried since a lost
// response would otherwise duplicate a message.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("client: marshal %s: %w", path, err)
	}
	return c.do(ctx, http.MethodPost, path, "application/json", data, out)
}

func (c *Client) retry(ctx context.Context, fn func() error) error {
	var lastErr error
	wait := c.backoff
	for attempt := range c.attempts {
		if attempt > 0 {
			t := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
			wait *= 2
		}
		lastErr = fn()
		if lastErr == nil || !retryable(lastErr) {
			return lastErr
		}
	}
	return fmt.Errorf("after %d attempts: %w", c.attempts, lastErr)
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= 500
	}
	return true
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body []byte, out any) error {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return fmt.Errorf("client: create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("client: read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Msg: errorMessage(data)}
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("client: decode %s: %w", path, err)
	}
	return nil
}

// errorMessage extracts the "error" field of an API error body.
func errorMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(body))
}

// rangeParams encodes a half-open [start, end) range as the API's
// inclusive start/end days.
func rangeParams(start, end *time.Time) url.Values {
	v := url.Values{}
	if start != nil {
		v.Set("start", start.UTC().Format(dateLayout))
	}
	if end != nil {
		v.Set("end", end.UTC().Add(-time.Nanosecond).Format(dateLayout))
	}
	return v
}
