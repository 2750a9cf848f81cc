package client

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/emergencyai/dispatch-api/models"
)

// Poll fetches the stats pulse on a fixed interval and hands each result to
// fn, until ctx is cancelled. Fetch failures are logged and the loop keeps
// going; there is no retry or backoff beyond the next tick.
func (c *Client) Poll(ctx context.Context, interval time.Duration, fn func(models.DashboardStats)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			stats, err := c.Stats(ctx)
			if err != nil {
				zap.S().With(err).Warn("stats poll failed")
				continue
			}
			fn(stats)
		}
	}
}
