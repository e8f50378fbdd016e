// Package youtube talks to YouTube: video search through the Data API or the
// public results page, channel upload feeds, and caption tracks scraped from
// the watch page.
package youtube

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"yt-sentiment/internal/resilience"
	"yt-sentiment/internal/resilience/circuitbreaker"
	"yt-sentiment/internal/resilience/retry"
)

const (
	// DefaultBaseURL is the origin for pages, feeds and captions.
	DefaultBaseURL = "https://www.youtube.com"

	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

	// maxPageBytes bounds how much of a watch or results page is read.
	maxPageBytes = 6 * 1024 * 1024
)

// ClientConfig configures the shared HTTP client.
type ClientConfig struct {
	// BaseURL overrides DefaultBaseURL.
	BaseURL string
	// RequestsPerSecond caps the outbound request rate.
	RequestsPerSecond float64
	// Timeout bounds one request.
	Timeout time.Duration
}

// Client performs throttled, retried GET requests against YouTube.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	limiter        *RateLimiter
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

// NewClient creates a Client. A nil httpClient gets a client with cfg.Timeout.
func NewClient(httpClient *http.Client, cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		httpClient:     httpClient,
		baseURL:        cfg.BaseURL,
		limiter:        NewRateLimiter(cfg.RequestsPerSecond, 1),
		circuitBreaker: circuitbreaker.New(circuitbreaker.YouTubeAPIConfig()),
		retryConfig:    retry.YouTubeConfig(),
	}
}

// BaseURL returns the origin requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// get fetches rawURL and returns up to maxPageBytes of the body.
// Non-2xx responses come back as *retry.HTTPError.
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	return resilience.Call(ctx, c.circuitBreaker, c.retryConfig, func() ([]byte, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", browserUserAgent)
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer func() { _ = resp.Body.Close() }()

		if err := retry.FromResponse(resp); err != nil {
			return nil, err
		}

		return io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	})
}
