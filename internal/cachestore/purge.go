package cachestore

import (
	"context"
	"log/slog"
	"time"
)

type purger interface {
	Purge(ctx context.Context) (int64, error)
}

// runPurge deletes expired rows from p every interval until ctx is done.
// A failed purge is logged and retried on the next tick.
func runPurge(ctx context.Context, name string, p purger, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := p.Purge(ctx)
			if err != nil {
				if ctx.Err() == nil {
					slog.Warn("cache: purge failed", slog.String("backend", name), slog.Any("error", err))
				}
				continue
			}
			if n > 0 {
				slog.Debug("cache: purged expired entries", slog.String("backend", name), slog.Int64("rows", n))
			}
		}
	}
}
