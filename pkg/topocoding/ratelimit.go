package topocoding

import (
	"context"
	"log/slog"

	"golang.org/x/time/rate"
)

// newLimiter builds the request limiter. The defaults of one request per
// second with a burst of one follow the public API's fair-use expectations.
func newLimiter(rps float64, burst int) *rate.Limiter {
	if rps < 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if rps == 0 {
		rps = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// wait blocks until the limiter allows a request or the context is canceled.
func (c *Client) wait(ctx context.Context, logger *slog.Logger) error {
	if err := c.limiter.Wait(ctx); err != nil {
		logger.Debug("rate limiter wait error", "error", err)
		return err
	}
	return nil
}
