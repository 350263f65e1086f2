package fetch

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/natsites/nps-places/internal/logger"
)

const (
	DefaultUserAgent = "nps-places-cli/1.0"
	DefaultTimeout   = 30 * time.Second
)

// Client wraps an http.Client with a fixed User-Agent.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// New creates a Client. A zero timeout or empty user agent falls back to the defaults.
func New(timeout time.Duration, userAgent string) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
	}
}

// Get fetches url and returns the full response body.
func (c *Client) Get(url string) ([]byte, error) {
	start := time.Now()
	defer func() {
		logger.RecordTiming("fetch.http", time.Since(start))
	}()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	logger.Debug("fetching", logger.Fields{"url": url})
	logger.IncrCounter("fetch.requests")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.IncrCounter("fetch.errors")
		return nil, &NetworkError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.IncrCounter("fetch.errors")
		return nil, &NetworkError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.IncrCounter("fetch.errors")
		return nil, &NetworkError{URL: url, Err: fmt.Errorf("reading body: %w", err)}
	}

	return body, nil
}
