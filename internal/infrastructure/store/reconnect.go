package store

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// reconnectFloor and reconnectCeiling bound the exponential backoff used
// while a component loop waits for the store to come back.
const (
	reconnectFloor   = 250 * time.Millisecond
	reconnectCeiling = 1 * time.Second
)

// RunWithReconnect calls fn repeatedly until it succeeds or ctx is
// cancelled, sleeping with exponential backoff between attempts (250ms
// floor, 1s ceiling) and logging each failure. A rate.Limiter caps how often
// attempts can fire even if fn returns instantly, so a tight failure loop
// can't spin the CPU.
func RunWithReconnect(ctx context.Context, logger *slog.Logger, fn func(context.Context) error) error {
	limiter := rate.NewLimiter(rate.Every(reconnectFloor), 1)
	backoff := reconnectFloor

	for {
		if err := fn(ctx); err == nil {
			return nil
		} else if errors.Is(err, context.Canceled) {
			return err
		} else {
			logger.Warn("store: operation failed, reconnecting", "error", err, "backoff", backoff)
		}

		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > reconnectCeiling {
			backoff = reconnectCeiling
		}
	}
}
