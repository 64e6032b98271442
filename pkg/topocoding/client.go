// Package topocoding provides a client for the topocoding.com altitude API.
//
// The client owns everything around the topocode encoding: composing the
// request URL from the API key and the encoded coordinates, rate limiting,
// the HTTP round trip, caching, and parsing the altitude list out of the
// response.
package topocoding

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"github.com/NERVsystems/topomcp/pkg/topocode"
	"github.com/NERVsystems/topomcp/pkg/version"
)

const (
	// DefaultBaseURL is the topocoding.com API host.
	DefaultBaseURL = "http://topocoding.com"

	// DefaultRequestID is sent as the id query parameter.
	DefaultRequestID = "x"

	// DefaultTimeout bounds a single HTTP round trip.
	DefaultTimeout = 60 * time.Second

	// DefaultCacheSize is the number of encoded requests whose altitudes are kept.
	DefaultCacheSize = 256

	// DefaultCacheTTL is how long cached altitudes stay valid.
	DefaultCacheTTL = 24 * time.Hour

	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 1 << 20
)

// HTTPDoer is the subset of *http.Client used by Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options configures a Client. Zero values select the defaults.
type Options struct {
	APIKey    string
	BaseURL   string
	RequestID string
	UserAgent string
	Timeout   time.Duration

	// RateLimit is the sustained request rate per second. Negative disables limiting.
	RateLimit float64
	RateBurst int

	// CacheSize is the number of cached responses. Negative disables caching.
	CacheSize int
	CacheTTL  time.Duration

	// MaxConcurrency bounds parallel requests in AltitudesBatched.
	MaxConcurrency int

	// MaxPoints overrides the per-request point limit of the encoder.
	MaxPoints int

	HTTPClient HTTPDoer
	Logger     *slog.Logger
}

// Client talks to the topocoding.com altitude API. It is safe for concurrent use.
type Client struct {
	opts    Options
	http    HTTPDoer
	limiter *rate.Limiter
	cache   *expirable.LRU[string, []float64]
	encoder *topocode.Encoder
	logger  *slog.Logger
}

// NewClient creates a client from opts, filling in defaults.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.RequestID == "" {
		opts.RequestID = DefaultRequestID
	}
	if opts.UserAgent == "" {
		opts.UserAgent = version.UserAgent()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = 2
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	c := &Client{
		opts:    opts,
		http:    opts.HTTPClient,
		limiter: newLimiter(opts.RateLimit, opts.RateBurst),
		encoder: topocode.NewEncoder(topocode.WithMaxPoints(opts.MaxPoints)),
		logger:  opts.Logger.With("service", "topocoding"),
	}

	if c.http == nil {
		c.http = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
			Timeout: opts.Timeout,
		}
	}

	if opts.CacheSize >= 0 {
		size := opts.CacheSize
		if size == 0 {
			size = DefaultCacheSize
		}
		ttl := opts.CacheTTL
		if ttl <= 0 {
			ttl = DefaultCacheTTL
		}
		c.cache = expirable.NewLRU[string, []float64](size, nil, ttl)
	}

	return c
}

// MaxPoints returns the number of points a single request can carry.
func (c *Client) MaxPoints() int {
	return c.encoder.MaxPoints()
}

// URL returns the request URL for an already encoded coordinate string.
func (c *Client) URL(encoded string) (string, error) {
	if c.opts.APIKey == "" {
		return "", ErrMissingAPIKey
	}
	return buildURL(c.opts.BaseURL, c.opts.RequestID, c.opts.APIKey, encoded)
}

// Fetch requests altitudes for an encoded coordinate string and returns the
// raw response body. Non-2xx responses are returned as *StatusError.
func (c *Client) Fetch(ctx context.Context, encoded string) ([]byte, error) {
	reqURL, err := c.URL(encoded)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)

	requestID := uuid.NewString()
	logger := c.logger.With("request_id", requestID)

	// Wait for rate limit
	if err := c.wait(ctx, logger); err != nil {
		return nil, err
	}

	start := time.Now()
	logger.Debug("sending request", "points", len(encoded)/topocode.CharsPerPoint)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	logger.Debug("received response",
		"status", resp.StatusCode,
		"bytes", len(body),
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: snippet(body)}
	}

	return body, nil
}
