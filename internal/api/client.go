package api

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// defaultMaxBodySize bounds how much of a response is read.
// Region lists are small; a rejection message is a short text.
const defaultMaxBodySize = 1 * 1024 * 1024

// defaultUserAgent is sent when no user agent is configured.
const defaultUserAgent = "anonyreport"

// Client talks to the survey backend.
// It is safe for concurrent use.
type Client struct {
	// baseURL is the API origin without a trailing slash.
	baseURL string

	// client performs the requests. It may dial through a SOCKS5 proxy.
	client *http.Client

	// userAgent is the User-Agent header sent with every request.
	userAgent string

	// maxBodySize limits the response body size.
	maxBodySize int64

	// logger for structured logging.
	logger *slog.Logger

	// lookups deduplicates concurrent region lookups for the same parent.
	lookups singleflight.Group

	mu    sync.Mutex
	cache map[string][]string

	// cacheEnabled keeps successful region lookups for the life of the client.
	cacheEnabled bool
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
// Use this to route requests through Tor or to set a transport in tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum response body size read per request.
func WithMaxBodySize(size int64) Option {
	return func(c *Client) {
		c.maxBodySize = size
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithLookupCache enables or disables caching of region lookups.
// Failed lookups are never cached, so re-selecting a parent retries.
func WithLookupCache(enabled bool) Option {
	return func(c *Client) {
		c.cacheEnabled = enabled
	}
}

// NewClient creates a client for the API at baseURL.
// baseURL must be an absolute http or https URL; a trailing slash is ignored.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrInvalidBaseURL
	}

	c := &Client{
		baseURL:      strings.TrimRight(u.String(), "/"),
		client:       &http.Client{Timeout: 30 * time.Second},
		userAgent:    defaultUserAgent,
		maxBodySize:  defaultMaxBodySize,
		logger:       slog.Default(),
		cache:        make(map[string][]string),
		cacheEnabled: true,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// BaseURL returns the API origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do sends a request and returns the status code and the (size-limited) body.
// Any failure to complete the exchange is wrapped in ErrUnreachable.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", method, "endpoint", endpoint(path))
		return 0, nil, fmt.Errorf("%w: %s %s: %v", ErrUnreachable, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		return 0, nil, fmt.Errorf("%w: reading %s response: %v", ErrUnreachable, path, err)
	}

	c.logger.Debug("request completed",
		"method", method,
		"endpoint", endpoint(path),
		"status", resp.StatusCode,
		"duration", time.Since(start).Round(time.Millisecond),
	)

	return resp.StatusCode, data, nil
}

// endpoint drops the region names from a lookup path, so logs never carry
// the respondent's location.
func endpoint(path string) string {
	for _, prefix := range []string{provincesPath, districtsPath} {
		if strings.HasPrefix(path, prefix) {
			return prefix + "*"
		}
	}
	return path
}

// isSuccess reports whether the status code is 2xx.
func isSuccess(code int) bool {
	return code >= 200 && code < 300
}
