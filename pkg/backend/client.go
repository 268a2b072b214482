// Package backend talks to the upstream monitoring backend referenced by BACKEND_URL.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mibhub/pkg/log"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	// APIPrefix is prepended to every proxied resource path.
	APIPrefix = "/api/v1"

	maxErrorBody = 4096
)

// Options configures the backend client.
type Options struct {
	URL            string
	RetryMax       int
	RetryWaitMin   time.Duration
	RetryWaitMax   time.Duration
	RequestTimeout time.Duration
}

// Client forwards requests to the backend with retries on connection failures.
type Client struct {
	baseURL        string
	client         *retryablehttp.Client
	requestTimeout time.Duration
}

// NewClient creates a backend client. An empty URL yields a client whose
// calls fail with ErrNotConfigured.
func NewClient(opts Options) *Client {
	return &Client{
		baseURL:        strings.TrimRight(strings.TrimSpace(opts.URL), "/"),
		client:         CreateRetryableClient(opts.RetryMax, opts.RetryWaitMin, opts.RetryWaitMax),
		requestTimeout: opts.RequestTimeout,
	}
}

// Configured reports whether a backend URL is set.
func (c *Client) Configured() bool {
	return c.baseURL != ""
}

// BaseURL returns the configured backend URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL builds the absolute backend URL for an API path such as "/devices/12".
func (c *Client) URL(path, rawQuery string) string {
	u := c.baseURL + APIPrefix + "/" + strings.TrimLeft(path, "/")
	if rawQuery != "" {
		u += "?" + rawQuery
	}
	return u
}

// Forward sends a request to {BACKEND_URL}/api/v1/{path}. The caller owns the
// response body. Only connection and timeout failures are retried, so 4xx and
// 5xx answers come back untouched. The request timeout covers the whole
// exchange, including reading the body.
func (c *Client) Forward(ctx context.Context, method, path, rawQuery string, body []byte, header http.Header) (*http.Response, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	cancel := context.CancelFunc(func() {})
	if c.requestTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.requestTimeout)
	}

	var reqBody interface{}
	if len(body) > 0 {
		reqBody = body
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.URL(path, rawQuery), reqBody)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("create backend request: %w", err)
	}
	CopyHeaders(req.Header, header)

	log.Debug().
		Str("method", method).
		Str("url", req.URL.String()).
		Msg("Forwarding request to backend")

	resp, err := c.client.Do(req)
	if err != nil {
		cancel()
		return nil, err
	}
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

// cancelOnClose releases the request context once the body is closed.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelOnClose) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}

// doJSON performs a JSON call bounded by the request timeout and decodes a 2xx answer into out.
func (c *Client) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	var body []byte
	if in != nil {
		var err error
		body, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("Accept", "application/json")

	resp, err := c.Forward(ctx, method, path, "", body, header)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close backend response body")
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(snippet))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode backend response: %w", err)
	}
	return nil
}

// CreateRetryableClient creates a retryable HTTP client for backend requests.
func CreateRetryableClient(retryMax int, retryWaitMin, retryWaitMax time.Duration) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = retryMax
	client.RetryWaitMin = retryWaitMin
	client.RetryWaitMax = retryWaitMax
	client.Logger = nil
	client.CheckRetry = customRetryPolicy
	// Hand the last response or error back instead of a wrapped "giving up" error.
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return client
}

// customRetryPolicy only retries when no response was received at all.
// Backend error responses (400, 404, 500, ...) are forwarded as they are.
func customRetryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	if resp != nil {
		return false, nil
	}

	if err != nil {
		return true, nil //nolint:nilerr // retryablehttp keeps the error for the final report
	}

	return false, nil
}
