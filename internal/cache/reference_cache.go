package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/islandpros/directory_api/internal/models"
)

const keyGeneration = "directory:ref:gen"

// ReferenceCache caches the category and area reference lists. Ranked
// provider results are never cached.
//
// List keys carry the current generation. Invalidate bumps the generation
// instead of deleting keys, so a reader that loaded its list before the
// bump writes to a key nobody reads any more; it expires with the TTL.
type ReferenceCache struct {
	redis *RedisClient
	ttl   time.Duration
}

// NewReferenceCache creates a new ReferenceCache.
func NewReferenceCache(redis *RedisClient, ttl time.Duration) *ReferenceCache {
	return &ReferenceCache{
		redis: redis,
		ttl:   ttl,
	}
}

// keyCategories returns the category list key for a generation.
func (c *ReferenceCache) keyCategories(gen int64) string {
	return fmt.Sprintf("directory:ref:%d:categories", gen)
}

// keyAreas returns the area list key for a generation, optionally scoped
// to an island.
func (c *ReferenceCache) keyAreas(gen int64, island models.Island) string {
	if island == "" {
		return fmt.Sprintf("directory:ref:%d:areas:all", gen)
	}
	return fmt.Sprintf("directory:ref:%d:areas:%s", gen, island)
}

// Generation returns the current list generation; zero before the first
// invalidation.
func (c *ReferenceCache) Generation(ctx context.Context) (int64, error) {
	raw, err := c.redis.Get(ctx, keyGeneration)
	if errors.Is(err, ErrMiss) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	gen, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", keyGeneration, err)
	}
	return gen, nil
}

// GetCategories returns the cached category list or ErrMiss.
func (c *ReferenceCache) GetCategories(ctx context.Context, gen int64) ([]models.Category, error) {
	var out []models.Category
	if err := c.get(ctx, c.keyCategories(gen), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetCategories stores the category list.
func (c *ReferenceCache) SetCategories(ctx context.Context, gen int64, categories []models.Category) error {
	return c.set(ctx, c.keyCategories(gen), categories)
}

// GetAreas returns the cached area list for an island ("" for all) or ErrMiss.
func (c *ReferenceCache) GetAreas(ctx context.Context, gen int64, island models.Island) ([]models.Area, error) {
	var out []models.Area
	if err := c.get(ctx, c.keyAreas(gen, island), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetAreas stores the area list for an island ("" for all).
func (c *ReferenceCache) SetAreas(ctx context.Context, gen int64, island models.Island, areas []models.Area) error {
	return c.set(ctx, c.keyAreas(gen, island), areas)
}

// Invalidate starts a new generation, hiding every list stored so far.
func (c *ReferenceCache) Invalidate(ctx context.Context) error {
	_, err := c.redis.Incr(ctx, keyGeneration)
	return err
}

func (c *ReferenceCache) get(ctx context.Context, key string, dst any) error {
	raw, err := c.redis.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return nil
}

func (c *ReferenceCache) set(ctx context.Context, key string, v any) error {
	jsonData, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return c.redis.Set(ctx, key, string(jsonData), c.ttl)
}
