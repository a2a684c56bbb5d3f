// Package api is the HTTP client paytrail uses to talk to the payments
// backend. It resolves paths against a base URL, attaches the bearer
// token, and decodes JSON responses. It does not retry.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Mr-Dark-debug/paytrail/internal/timeline"
)

// TimelinePath is the endpoint serving a client's payment timeline.
const TimelinePath = "clients/get-timeline"

// maxErrorBody caps how much of a failed response is kept for diagnostics.
const maxErrorBody = 512

// Config holds connection settings for the backend.
type Config struct {
	// BaseURL is the API root, e.g. "https://api.example.com/v1/".
	BaseURL string `json:"base_url"`
	// Token is sent as "Authorization: Bearer <token>" when non-empty.
	Token string `json:"-"`
	// Timeout bounds a single request. Zero means no client-side timeout.
	Timeout time.Duration `json:"timeout"`
}

// DefaultConfig returns settings for a local companion server.
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://127.0.0.1:8787/",
		Timeout: 15 * time.Second,
	}
}

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.URL, e.Code)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.Code, e.Body)
}

// Client performs JSON requests against the backend.
type Client struct {
	base  *url.URL
	token string
	http  *http.Client
}

// NewClient validates cfg and builds a Client.
func NewClient(cfg Config) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, fmt.Errorf("api base URL is required")
	}
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing api base URL %q: %w", cfg.BaseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("api base URL %q: scheme must be http or https", cfg.BaseURL)
	}

	return &Client{
		base:  base,
		token: cfg.Token,
		http:  &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// BaseURL returns the resolved API root.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Get issues GET <base>/<path> and decodes the JSON body into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	ref, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return fmt.Errorf("parsing path %q: %w", path, err)
	}
	target := c.base.ResolveReference(ref).String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("building request for %s: %w", target, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Method: http.MethodGet,
			URL:    target,
			Code:   resp.StatusCode,
			Body:   strings.TrimSpace(string(body)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", target, err)
	}
	return nil
}

// FetchTimeline retrieves the authenticated client's payment timeline.
func (c *Client) FetchTimeline(ctx context.Context) (*timeline.Response, error) {
	var resp timeline.Response
	if err := c.Get(ctx, TimelinePath, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
