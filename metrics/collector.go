// Package metrics provides Prometheus metrics for phrasevault.
package metrics

import (
	"context"
	"log/slog"
	"time"
)

// StatsSource supplies the gauge values the collector samples. The vault
// implements it.
type StatsSource interface {
	WalletCount() (int, error)
}

// StartCollector starts a background goroutine that periodically refreshes
// gauge metrics from the stats source. It blocks until the context is
// cancelled.
func StartCollector(ctx context.Context, src StatsSource, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on startup
	collect(src)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			collect(src)
		}
	}
}

func collect(src StatsSource) {
	if count, err := src.WalletCount(); err == nil {
		WalletsTotal.Set(float64(count))
	} else {
		slog.Debug("failed to count wallets for metrics", "error", err)
	}
}
