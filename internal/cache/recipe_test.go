package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipe-management/backend/internal/cache"
	"github.com/pageza/recipe-management/backend/internal/testhelpers"
	"github.com/pageza/recipe-management/backend/internal/testhelpers/fakes"
)

func TestNoopCacheAlwaysMisses(t *testing.T) {
	c := cache.NewNoopCache()
	ctx := context.Background()
	r := fakes.FakeRecipe("tester")

	require.NoError(t, c.Set(ctx, r))
	require.NoError(t, c.Add(ctx, r))
	_, err := c.Get(ctx, r.ID)
	assert.True(t, errors.Is(err, cache.ErrCacheMiss))
	assert.NoError(t, c.Invalidate(ctx, r.ID))
}

func TestRedisRecipeCacheRoundTrip(t *testing.T) {
	client := testhelpers.StartRedis(t)
	c := cache.NewRedisRecipeCache(client, time.Minute)
	ctx := context.Background()

	r := fakes.FakeRecipe("tester")
	_, err := c.Get(ctx, r.ID)
	require.True(t, errors.Is(err, cache.ErrCacheMiss))

	require.NoError(t, c.Set(ctx, r))
	got, err := c.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)
	assert.Equal(t, *r.Title, *got.Title)
	assert.Equal(t, *r.Visibility, *got.Visibility)

	ttl, err := client.TTL(ctx, "recipe:"+r.ID.String()).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, c.Invalidate(ctx, r.ID))
	_, err = c.Get(ctx, r.ID)
	assert.True(t, errors.Is(err, cache.ErrCacheMiss))
}

func TestRedisRecipeCacheAddKeepsExistingEntry(t *testing.T) {
	client := testhelpers.StartRedis(t)
	c := cache.NewRedisRecipeCache(client, time.Minute)
	ctx := context.Background()

	r := fakes.FakeRecipe("tester")
	require.NoError(t, c.Add(ctx, r))

	deleted := *r
	deleted.IsDeleted = true
	require.NoError(t, c.Set(ctx, &deleted))

	// A late reader adding the active copy leaves the newer entry alone.
	require.NoError(t, c.Add(ctx, r))
	got, err := c.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDeleted)
}
