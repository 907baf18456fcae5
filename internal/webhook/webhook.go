package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/deusflow/newswatch/internal/logger"
	"github.com/deusflow/newswatch/internal/news"
)

// Client posts notices to a webhook endpoint as a JSON array.
type Client struct {
	url  string
	http *http.Client
}

// New creates a Client. A zero timeout means 30 seconds.
func New(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{url: url, http: &http.Client{Timeout: timeout}}
}

// Send does one POST. It does not retry.
func (c *Client) Send(ctx context.Context, notices []news.Notice) error {
	if c.url == "" {
		return fmt.Errorf("webhook url is not configured")
	}

	body, err := json.Marshal(notices)
	if err != nil {
		return fmt.Errorf("error make JSON: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("error build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("error HTTP request: %w", err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			logger.Warn("failed to close response body", "error", err)
		}
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook error: status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}

	logger.Info("webhook delivered", "items", len(notices))
	return nil
}
