// Package api wraps the TaskFlow REST API: one method per resource and verb,
// bearer token injection on every request, and a single normalized error
// shape. It performs no retries; callers own the retry/reconcile policy.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const defaultTimeout = 30 * time.Second

// TokenStore supplies and persists the bearer token. *session.Store
// implements it.
type TokenStore interface {
	Token() string
	Save(token string) error
	Clear() error
}

// Client is the TaskFlow API client. Resource groups hang off it the way the
// endpoints are grouped server-side.
type Client struct {
	baseURL        string
	httpc          *http.Client
	tokens         TokenStore
	onUnauthorized func()

	Auth      AuthAPI
	Projects  ProjectsAPI
	Tasks     TasksAPI
	Analytics AnalyticsAPI
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (tests, custom TLS).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpc = hc }
}

// WithOnUnauthorized installs a hook invoked whenever the server answers 401.
// The session is already cleared when the hook runs.
func WithOnUnauthorized(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// New builds a client for the given base URL.
func New(baseURL string, tokens TokenStore, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: defaultTimeout},
		tokens:  tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Auth = AuthAPI{c}
	c.Projects = ProjectsAPI{c}
	c.Tasks = TasksAPI{c}
	c.Analytics = AnalyticsAPI{c}
	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// do executes one request. body (if non-nil) is JSON-encoded; out (if
// non-nil) receives the decoded response. Every failure comes back as *Error.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	log.WithFields(log.Fields{"method": method, "path": path}).Debug("api request")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return networkError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return networkError(err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		// Session is gone; forget the token and let the app route back to login.
		if cerr := c.tokens.Clear(); cerr != nil {
			log.WithError(cerr).Warn("failed to clear session token")
		}
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return parseError(resp.StatusCode, data)
	}
	if resp.StatusCode >= 400 {
		return parseError(resp.StatusCode, data)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
