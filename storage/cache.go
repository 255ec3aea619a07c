package storage

import (
	"context"
	"errors"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"github.com/ManiEids/vef2hop2/domain"
	"github.com/ManiEids/vef2hop2/service"
)

const (
	tasksCacheKey      = "verkefnalisti:cache:tasks"
	categoriesCacheKey = "verkefnalisti:cache:categories"
	tagsCacheKey       = "verkefnalisti:cache:tags"
)

// Cache wraps a record store with Redis-backed caching of the task,
// category and tag collections. Writes evict the affected collection.
// Accounts are never cached.
type Cache struct {
	service.Store
	redis *redis.Client
	ttl   time.Duration
}

// NewCache creates a caching wrapper using the provided Redis client and TTL.
func NewCache(base service.Store, client *redis.Client, ttl time.Duration) *Cache {
	if base == nil {
		panic("storage.NewCache: base storage is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Cache{Store: base, redis: client, ttl: ttl}
}

func (c *Cache) AllTasks(ctx context.Context) ([]domain.Task, error) {
	return readThrough(ctx, c, tasksCacheKey, c.Store.AllTasks)
}

func (c *Cache) PutTasks(ctx context.Context, tasks ...domain.Task) error {
	defer c.evict(ctx, tasksCacheKey)
	return c.Store.PutTasks(ctx, tasks...)
}

func (c *Cache) RemoveTask(ctx context.Context, id string) error {
	defer c.evict(ctx, tasksCacheKey)
	return c.Store.RemoveTask(ctx, id)
}

func (c *Cache) AllCategories(ctx context.Context) ([]domain.Category, error) {
	return readThrough(ctx, c, categoriesCacheKey, c.Store.AllCategories)
}

func (c *Cache) PutCategory(ctx context.Context, cat domain.Category) error {
	defer c.evict(ctx, categoriesCacheKey)
	return c.Store.PutCategory(ctx, cat)
}

func (c *Cache) RemoveCategory(ctx context.Context, id string) error {
	defer c.evict(ctx, categoriesCacheKey)
	return c.Store.RemoveCategory(ctx, id)
}

func (c *Cache) AllTags(ctx context.Context) ([]domain.Tag, error) {
	return readThrough(ctx, c, tagsCacheKey, c.Store.AllTags)
}

func (c *Cache) PutTag(ctx context.Context, t domain.Tag) error {
	defer c.evict(ctx, tagsCacheKey)
	return c.Store.PutTag(ctx, t)
}

func readThrough[T any](ctx context.Context, c *Cache, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	if items, ok := loadFromCache[T](ctx, c, key); ok {
		return items, nil
	}
	items, err := load(ctx)
	if err != nil {
		return nil, err
	}
	// A write that evicts between load and store leaves this older copy
	// cached until the TTL runs out. CACHE_TTL bounds the staleness.
	storeInCache(ctx, c, key, items)
	return items, nil
}

func loadFromCache[T any](ctx context.Context, c *Cache, key string) ([]T, bool) {
	if c.redis == nil {
		return nil, false
	}
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			// On redis errors fall back to the backing storage without failing.
			_ = c.redis.Del(ctx, key).Err()
		}
		return nil, false
	}
	var items []T
	if err := sonic.Unmarshal(data, &items); err != nil {
		_ = c.redis.Del(ctx, key).Err()
		return nil, false
	}
	return items, true
}

func storeInCache[T any](ctx context.Context, c *Cache, key string, items []T) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := sonic.Marshal(items)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, key, data, c.ttl).Err()
}

func (c *Cache) evict(ctx context.Context, key string) {
	if c.redis == nil {
		return
	}
	_, _ = c.redis.Del(ctx, key).Result()
}
