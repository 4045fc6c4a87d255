// Package api is the HTTP client for the FinSight REST backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"finsight/internal/log"
)

// Interceptor mutates every outgoing request before it is sent.
type Interceptor func(*http.Request)

// TokenSource yields the current bearer token, if any.
type TokenSource interface {
	Token() (string, bool)
}

// BearerToken attaches "Authorization: Bearer <token>" when src has a token.
func BearerToken(src TokenSource) Interceptor {
	return func(req *http.Request) {
		if src == nil {
			return
		}
		if token, ok := src.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
}

type Client struct {
	baseURL      string
	httpClient   *http.Client
	interceptors []Interceptor
	logger       *log.Logger
}

type Option func(*Client)

// WithTimeout bounds each request. Zero leaves the transport default (none).
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		c.logger = l.WithComponent(log.ComponentAPI)
	}
}

// New returns the shared client for baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     log.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// With derives a client that runs the extra interceptors after the existing
// ones. The underlying transport is shared.
func (c *Client) With(interceptors ...Interceptor) *Client {
	cp := *c
	cp.interceptors = append(append([]Interceptor(nil), c.interceptors...), interceptors...)
	return &cp
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, intercept := range c.interceptors {
		intercept(req)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.DebugContext(ctx, "Backend request failed", log.FieldMethod, method, log.FieldPath, path, log.FieldError, err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "Backend request completed",
		log.FieldMethod, method,
		log.FieldPath, path,
		log.FieldStatusCode, resp.StatusCode,
		log.FieldDuration, time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newHTTPError(method, path, resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}
