package api

import (
	"context"
	"fmt"

	"github.com/nhle/teamflow/internal/model"
)

// Stats returns the server-side task counts.
func (c *Client) Stats(ctx context.Context) (model.Stats, error) {
	var stats model.Stats
	if err := c.get(ctx, "/stats", nil, &stats); err != nil {
		return model.Stats{}, fmt.Errorf("getting stats: %w", err)
	}
	return stats, nil
}
