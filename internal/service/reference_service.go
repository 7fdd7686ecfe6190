package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/islandpros/directory_api/internal/cache"
	"github.com/islandpros/directory_api/internal/models"
	"github.com/islandpros/directory_api/internal/utils"
)

// ReferenceService serves categories and areas. Reads go through the cache
// when one is configured; a failing cache falls back to the store.
type ReferenceService struct {
	store ReferenceStore
	cache ReferenceCache
}

// NewReferenceService constructs a ReferenceService. Pass a nil interface
// (not a typed nil pointer) to run without a cache.
func NewReferenceService(store ReferenceStore, c ReferenceCache) *ReferenceService {
	return &ReferenceService{store: store, cache: c}
}

// Categories returns every category ordered by name.
func (s *ReferenceService) Categories(ctx context.Context) ([]models.Category, error) {
	gen, cached := s.generation(ctx)
	if cached {
		list, err := s.cache.GetCategories(ctx, gen)
		if err == nil {
			return list, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			log.Warn().Err(err).Msg("Category cache read failed, falling back to database")
		}
	}

	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list categories")
		return nil, fmt.Errorf("%w: %w", utils.ErrStorage, err)
	}

	if cached {
		if err := s.cache.SetCategories(ctx, gen, categories); err != nil {
			log.Warn().Err(err).Msg("Failed to cache categories")
		}
	}
	return categories, nil
}

// Areas returns areas, restricted to one island when rawIsland is set.
func (s *ReferenceService) Areas(ctx context.Context, rawIsland string) ([]models.Area, error) {
	var island models.Island
	if rawIsland != "" {
		var err error
		if island, err = models.ParseIsland(rawIsland); err != nil {
			return nil, err
		}
	}

	gen, cached := s.generation(ctx)
	if cached {
		list, err := s.cache.GetAreas(ctx, gen, island)
		if err == nil {
			return list, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			log.Warn().Err(err).Str("island", string(island)).Msg("Area cache read failed, falling back to database")
		}
	}

	areas, err := s.store.ListAreas(ctx, island)
	if err != nil {
		log.Error().Err(err).Str("island", string(island)).Msg("Failed to list areas")
		return nil, fmt.Errorf("%w: %w", utils.ErrStorage, err)
	}

	if cached {
		if err := s.cache.SetAreas(ctx, gen, island, areas); err != nil {
			log.Warn().Err(err).Msg("Failed to cache areas")
		}
	}
	return areas, nil
}

// CreateCategory adds a category and invalidates the cached lists.
func (s *ReferenceService) CreateCategory(ctx context.Context, name, slug string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &models.ValidationError{Field: "name", Value: name}
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		slug = slugify(name)
	}

	c := &models.Category{Name: name, Slug: slug}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		if errors.Is(err, utils.ErrDuplicateCategory) {
			return nil, err
		}
		log.Error().Err(err).Str("name", name).Msg("Failed to create category")
		return nil, fmt.Errorf("%w: %w", utils.ErrStorage, err)
	}
	s.invalidate(ctx)
	log.Info().Int64("category_id", c.ID).Str("name", name).Msg("Category created")
	return c, nil
}

// CreateArea adds an area and invalidates the cached lists.
func (s *ReferenceService) CreateArea(ctx context.Context, name, rawIsland string) (*models.Area, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &models.ValidationError{Field: "name", Value: name}
	}
	island, err := models.ParseIsland(rawIsland)
	if err != nil {
		return nil, err
	}

	a := &models.Area{Name: name, Island: island}
	if err := s.store.CreateArea(ctx, a); err != nil {
		if errors.Is(err, utils.ErrDuplicateArea) {
			return nil, err
		}
		log.Error().Err(err).Str("name", name).Msg("Failed to create area")
		return nil, fmt.Errorf("%w: %w", utils.ErrStorage, err)
	}
	s.invalidate(ctx)
	log.Info().Int64("area_id", a.ID).Str("name", name).Str("island", string(island)).Msg("Area created")
	return a, nil
}

// Refresh reloads every reference list from the store into the cache.
func (s *ReferenceService) Refresh(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}

	gen, err := s.cache.Generation(ctx)
	if err != nil {
		return fmt.Errorf("read cache generation: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		categories, err := s.store.ListCategories(gctx)
		if err != nil {
			return fmt.Errorf("list categories: %w", err)
		}
		return s.cache.SetCategories(gctx, gen, categories)
	})
	for _, island := range []models.Island{"", models.IslandSTT, models.IslandSTJ, models.IslandSTX} {
		g.Go(func() error {
			areas, err := s.store.ListAreas(gctx, island)
			if err != nil {
				return fmt.Errorf("list areas %q: %w", island, err)
			}
			return s.cache.SetAreas(gctx, gen, island, areas)
		})
	}
	return g.Wait()
}

// generation reads the cache generation before a store read. ok is false
// when there is no cache or it cannot be reached.
func (s *ReferenceService) generation(ctx context.Context) (gen int64, ok bool) {
	if s.cache == nil {
		return 0, false
	}
	gen, err := s.cache.Generation(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Reference cache unavailable, falling back to database")
		return 0, false
	}
	return gen, true
}

func (s *ReferenceService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to invalidate reference cache")
	}
}

func slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
