package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Flusher periodically pushes fallback carts back to the remote store and
// drops idle sessions from the cart cache.
type Flusher struct {
	carts    *CartService
	store    *CartStore
	interval time.Duration
	maxTries uint
}

func NewFlusher(carts *CartService, store *CartStore, interval time.Duration) *Flusher {
	return &Flusher{carts: carts, store: store, interval: interval, maxTries: 3}
}

// Run blocks until ctx is cancelled.
func (f *Flusher) Run(ctx context.Context) {
	if f.interval <= 0 {
		return
	}
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.FlushAll(ctx)
			if n := f.carts.EvictIdle(); n > 0 {
				slog.DebugContext(ctx, "evicted idle carts", "count", n)
			}
		}
	}
}

// FlushAll attempts every pending session and returns how many were flushed.
func (f *Flusher) FlushAll(ctx context.Context) int {
	sessions, err := f.store.PendingSessions(ctx)
	if err != nil {
		slog.WarnContext(ctx, "failed to list pending local carts", "error", err)
		return 0
	}

	flushed := 0
	for _, sessionID := range sessions {
		_, err := backoff.Retry(ctx, func() (int, error) {
			view, err := f.carts.Flush(ctx, sessionID)
			if err != nil {
				return 0, err
			}
			return len(view.Items), nil
		},
			backoff.WithBackOff(backoff.NewExponentialBackOff()),
			backoff.WithMaxTries(f.maxTries),
		)
		if err != nil {
			slog.DebugContext(ctx, "local cart still pending", "session_id", sessionID, "error", err)
			continue
		}
		flushed++
	}
	return flushed
}
