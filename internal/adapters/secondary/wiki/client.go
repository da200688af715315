package wiki

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vibin/wikisearch-bot/internal/logger"
)

// Client fetches raw response bodies from remote wiki endpoints. It
// implements the ports.PageFetcherPort interface.
type Client struct {
	httpClient *http.Client
	logger     logger.Logger
}

// NewClient creates a new Client with the given per-request timeout
func NewClient(timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: log,
	}
}

// FetchText performs a single GET and returns the body as text. Non-2xx
// statuses are reported as errors. No retries.
func (c *Client) FetchText(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "wikisearch-bot/1.0")

	c.logger.Debug("Fetching", "url", rawURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status %d from %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
