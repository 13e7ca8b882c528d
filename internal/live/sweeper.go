package live

import (
	"context"
	"log/slog"
	"time"
)

const defaultSweepInterval = time.Minute

// StartSweeper periodically ends visits whose tab has been gone for longer
// than ttl. It stops when ctx is cancelled.
func StartSweeper(ctx context.Context, m *SessionManager, interval, ttl time.Duration) {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		slog.Info("Session sweeper started", "interval", interval, "ttl", ttl)

		for {
			select {
			case <-ticker.C:
				if n := m.Sweep(ttl); n > 0 {
					slog.Info("Session sweeper ended idle visits", "count", n, "remaining", m.Count())
				}
			case <-ctx.Done():
				slog.Info("Session sweeper shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}
