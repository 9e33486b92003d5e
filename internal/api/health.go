package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Health checks that the backend answers GET /health. It sits beside
// /api, not under it, and needs no token.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.root+"/health", nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(http.MethodGet, "health", 0, time.Since(start))
		return fmt.Errorf("checking backend health: %w", err)
	}
	defer resp.Body.Close()
	c.metrics.ObserveRequest(http.MethodGet, "health", resp.StatusCode, time.Since(start))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading health response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp.StatusCode, http.MethodGet, "/health", body)
	}
	return nil
}
