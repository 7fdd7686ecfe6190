package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// ReferenceRefresher reloads cached reference lists.
type ReferenceRefresher interface {
	Refresh(ctx context.Context) error
}

// ReferenceRefreshWorker periodically re-warms the category and area cache.
type ReferenceRefreshWorker struct {
	refresher ReferenceRefresher
	interval  time.Duration
}

// NewReferenceRefreshWorker constructs a ReferenceRefreshWorker.
func NewReferenceRefreshWorker(refresher ReferenceRefresher, interval time.Duration) *ReferenceRefreshWorker {
	return &ReferenceRefreshWorker{
		refresher: refresher,
		interval:  interval,
	}
}

// Start begins the periodic refresh loop and listens for context cancellation.
func (w *ReferenceRefreshWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting reference refresh worker")

	// Run immediately on start
	w.run(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Reference refresh worker stopped")
			return
		}
	}
}

func (w *ReferenceRefreshWorker) run(ctx context.Context) {
	start := time.Now()
	if err := w.refresher.Refresh(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to refresh reference cache")
		return
	}
	log.Debug().Dur("duration", time.Since(start)).Msg("Reference cache refreshed")
}
