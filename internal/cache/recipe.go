package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/pageza/recipe-management/backend/internal/models"
)

// ErrCacheMiss is returned by Get when no entry exists.
var ErrCacheMiss = errors.New("cache miss")

// RecipeCache is a read-through cache for single recipe lookups.
//
// Readers fill it with Add, which never replaces an existing entry, and
// writers replace entries with Set. A reader holding a row loaded before a
// write therefore cannot overwrite what the writer stored. Deleted recipes are
// kept as entries with IsDeleted set until they expire.
type RecipeCache interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Recipe, error)
	Add(ctx context.Context, recipe *models.Recipe) error
	Set(ctx context.Context, recipe *models.Recipe) error
	Invalidate(ctx context.Context, id uuid.UUID) error
}

// RedisRecipeCache stores recipes as JSON under recipe:<id>.
type RedisRecipeCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisRecipeCache wraps client. A zero ttl keeps entries for ten minutes.
func NewRedisRecipeCache(client redis.UniversalClient, ttl time.Duration) *RedisRecipeCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisRecipeCache{client: client, ttl: ttl}
}

func key(id uuid.UUID) string {
	return "recipe:" + id.String()
}

// Get returns the cached recipe or ErrCacheMiss.
func (c *RedisRecipeCache) Get(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	data, err := c.client.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var recipe models.Recipe
	if err := json.Unmarshal(data, &recipe); err != nil {
		return nil, fmt.Errorf("cache decode: %w", err)
	}
	return &recipe, nil
}

// Add stores recipe only when no entry exists for its ID.
func (c *RedisRecipeCache) Add(ctx context.Context, recipe *models.Recipe) error {
	data, err := json.Marshal(recipe)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.SetNX(ctx, key(recipe.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache add: %w", err)
	}
	return nil
}

// Set stores recipe, replacing any existing entry.
func (c *RedisRecipeCache) Set(ctx context.Context, recipe *models.Recipe) error {
	data, err := json.Marshal(recipe)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, key(recipe.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Invalidate drops the entry for id.
func (c *RedisRecipeCache) Invalidate(ctx context.Context, id uuid.UUID) error {
	if err := c.client.Del(ctx, key(id)).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

// NoopCache never stores anything. It is used when Redis is not configured.
type NoopCache struct{}

func NewNoopCache() NoopCache { return NoopCache{} }

// Get always misses.
func (NoopCache) Get(context.Context, uuid.UUID) (*models.Recipe, error) { return nil, ErrCacheMiss }

// Add discards the recipe.
func (NoopCache) Add(context.Context, *models.Recipe) error { return nil }

// Set discards the recipe.
func (NoopCache) Set(context.Context, *models.Recipe) error { return nil }

// Invalidate does nothing.
func (NoopCache) Invalidate(context.Context, uuid.UUID) error { return nil }
