// SPDX-License-Identifier: MPL-2.0

package noderedapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DeploymentTypeHeader selects how POST /flows is applied.
	DeploymentTypeHeader = "Node-RED-Deployment-Type"
	// DeploymentReload reloads flows from storage and ignores the request body.
	DeploymentReload = "reload"

	defaultTimeout  = 10 * time.Second
	maxErrorBodyLen = 512
)

// ErrNoAdminURL is returned by NewClient when the admin URL is empty.
var ErrNoAdminURL = errors.New("admin API URL is not configured")

type (
	// APIError is returned when the admin API answers with a non-2xx status.
	APIError struct {
		Method     string
		URL        string
		StatusCode int
		Body       string
	}

	// Client calls the Node-RED admin API.
	Client struct {
		httpClient *http.Client
		baseURL    string
		token      string
		userAgent  string
		timeout    time.Duration
	}

	// ClientOption configures a Client during construction.
	ClientOption func(*Client)
)

// Error implements error.
func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithToken sets the bearer token sent with every request.
func WithToken(token string) ClientOption {
	return func(cl *Client) {
		cl.token = token
	}
}

// WithTimeout bounds each request. Zero or negative keeps the default.
func WithTimeout(d time.Duration) ClientOption {
	return func(cl *Client) {
		if d > 0 {
			cl.timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(cl *Client) {
		cl.userAgent = ua
	}
}

// NewClient returns a Client for the admin API rooted at baseURL
// (e.g. http://localhost:1880 or http://host/admin when httpAdminRoot is set).
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, ErrNoAdminURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid admin API URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid admin API URL %q: scheme must be http or https", redactURL(baseURL))
	}

	c := &Client{
		httpClient: http.DefaultClient,
		baseURL:    baseURL,
		userAgent:  "flow-splitter",
		timeout:    defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the admin API root.
func (c *Client) BaseURL() string { return c.baseURL }

// Reload asks the runtime to load its flows from storage again.
func (c *Client) Reload(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reqURL := c.baseURL + "/flows"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, strings.NewReader("[]"))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(DeploymentTypeHeader, DeploymentReload)
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("reload flows via %s: %w", redactURL(reqURL), err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
		return &APIError{
			Method:     http.MethodPost,
			URL:        redactURL(reqURL),
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// redactURL drops credentials, query parameters and fragments.
func redactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid-url>"
	}
	u.User = nil
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
