package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/islandpros/directory_api/internal/metrics"
	"github.com/islandpros/directory_api/internal/models"
	"github.com/islandpros/directory_api/internal/ranking"
	"github.com/islandpros/directory_api/internal/utils"
)

// DirectoryService answers directory queries. Every call reads a fresh
// snapshot; nothing is cached between calls.
type DirectoryService struct {
	store   ProviderStore
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewDirectoryService constructs a DirectoryService. m may be nil; now
// defaults to time.Now.
func NewDirectoryService(store ProviderStore, m *metrics.Metrics, now func() time.Time) *DirectoryService {
	if now == nil {
		now = time.Now
	}
	return &DirectoryService{store: store, metrics: m, now: now}
}

// ListProviders returns the non-archived providers matching f, annotated
// with trust score, last-active time and badges, in ranking order.
func (s *DirectoryService) ListProviders(ctx context.Context, f ranking.Filters) ([]models.DirectoryEntry, error) {
	start := time.Now()

	entries, err := s.rank(ctx, f)
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveQuery(time.Since(start), len(entries))
	log.Debug().
		Interface("filters", f).
		Int("results", len(entries)).
		Dur("duration", time.Since(start)).
		Msg("Directory query completed")

	return entries, nil
}

// GetProvider returns a single annotated provider. Archived or unknown
// providers return utils.ErrProviderNotFound.
//
// The entry comes out of a full ranking of the snapshot, so it carries the
// same score and badges ListProviders would show. The same whole-snapshot
// validation applies: a malformed row anywhere in the directory fails the
// lookup with a ValidationError, even when id itself is well formed.
func (s *DirectoryService) GetProvider(ctx context.Context, id int64) (*models.DirectoryEntry, error) {
	entries, err := s.rank(ctx, ranking.Filters{})
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].ID == id {
			return &entries[i], nil
		}
	}
	return nil, utils.ErrProviderNotFound
}

func (s *DirectoryService) rank(ctx context.Context, f ranking.Filters) ([]models.DirectoryEntry, error) {
	if err := f.Validate(); err != nil {
		s.metrics.IncrementQueryError("validation")
		return nil, err
	}

	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read directory snapshot")
		s.metrics.IncrementQueryError("storage")
		return nil, fmt.Errorf("%w: %w", utils.ErrStorage, err)
	}

	entries, err := ranking.Rank(snap, f, s.now())
	if err != nil {
		log.Error().Err(err).Msg("Directory snapshot contains invalid data")
		s.metrics.IncrementQueryError("validation")
		return nil, err
	}
	return entries, nil
}
