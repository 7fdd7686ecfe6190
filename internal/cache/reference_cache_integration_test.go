//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/islandpros/directory_api/internal/models"
	"github.com/islandpros/directory_api/internal/testutil/containers"
)

func TestReferenceCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	rc := containers.NewRedisContainer(t)
	c := NewReferenceCache(NewRedisClientFrom(rc.Client), time.Minute)

	gen, err := c.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), gen)

	_, err = c.GetCategories(ctx, gen)
	assert.ErrorIs(t, err, ErrMiss)

	categories := []models.Category{{ID: 1, Name: "Electrician", Slug: "electrician"}}
	require.NoError(t, c.SetCategories(ctx, gen, categories))
	got, err := c.GetCategories(ctx, gen)
	require.NoError(t, err)
	assert.Equal(t, categories, got)

	stx := []models.Area{{ID: 3, Name: "Christiansted", Island: models.IslandSTX}}
	require.NoError(t, c.SetAreas(ctx, gen, models.IslandSTX, stx))
	require.NoError(t, c.SetAreas(ctx, gen, "", stx))
	gotAreas, err := c.GetAreas(ctx, gen, models.IslandSTX)
	require.NoError(t, err)
	assert.Equal(t, stx, gotAreas)

	_, err = c.GetAreas(ctx, gen, models.IslandSTT)
	assert.ErrorIs(t, err, ErrMiss)
}

func TestReferenceCacheInvalidateStartsNewGeneration(t *testing.T) {
	ctx := context.Background()
	rc := containers.NewRedisContainer(t)
	c := NewReferenceCache(NewRedisClientFrom(rc.Client), time.Minute)

	before, err := c.Generation(ctx)
	require.NoError(t, err)
	require.NoError(t, c.SetCategories(ctx, before, []models.Category{{ID: 1, Name: "Mason", Slug: "mason"}}))

	require.NoError(t, c.Invalidate(ctx))
	after, err := c.Generation(ctx)
	require.NoError(t, err)
	assert.Greater(t, after, before)

	_, err = c.GetCategories(ctx, after)
	assert.ErrorIs(t, err, ErrMiss)
	_, err = c.GetAreas(ctx, after, "")
	assert.ErrorIs(t, err, ErrMiss)

	// A late write for the old generation stays invisible.
	require.NoError(t, c.SetCategories(ctx, before, []models.Category{}))
	_, err = c.GetCategories(ctx, after)
	assert.ErrorIs(t, err, ErrMiss)
}

func TestReferenceCacheHonoursTTL(t *testing.T) {
	ctx := context.Background()
	rc := containers.NewRedisContainer(t)
	c := NewReferenceCache(NewRedisClientFrom(rc.Client), time.Second)

	require.NoError(t, c.SetCategories(ctx, 0, []models.Category{}))
	ttl, err := rc.Client.TTL(ctx, c.keyCategories(0)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Second)
}
