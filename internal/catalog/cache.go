package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when a menu is not in the cache.
var ErrCacheMiss = errors.New("cache miss")

// MenuCache caches whole menus per restaurant slug.
type MenuCache interface {
	Get(ctx context.Context, slug string) (*Menu, error)
	Set(ctx context.Context, slug string, menu *Menu) error
}

// RedisCache is a Redis-backed MenuCache. TTLs carry jitter so a fleet of
// entries does not expire at once.
type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

// NewRedisCache creates a menu cache over the given client.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: 5 * time.Minute,
	}
}

func cacheKey(slug string) string {
	return "menu:" + slug
}

func (r *RedisCache) Get(ctx context.Context, slug string) (*Menu, error) {
	data, err := r.client.Get(ctx, cacheKey(slug)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var menu Menu
	if err := json.Unmarshal(data, &menu); err != nil {
		return nil, fmt.Errorf("unmarshal menu failed: %w", err)
	}
	return &menu, nil
}

func (r *RedisCache) Set(ctx context.Context, slug string, menu *Menu) error {
	data, err := json.Marshal(menu)
	if err != nil {
		return fmt.Errorf("marshal menu failed: %w", err)
	}

	jitter := time.Duration(rand.Intn(60)) * time.Second
	if err := r.client.Set(ctx, cacheKey(slug), data, r.baseTTL+jitter).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}
