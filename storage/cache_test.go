package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/ManiEids/vef2hop2/domain"
	"github.com/ManiEids/vef2hop2/service"
)

// countingStore counts reads that reach the backing store.
type countingStore struct {
	service.Store
	taskReads int
	err       error
}

func (c *countingStore) AllTasks(ctx context.Context) ([]domain.Task, error) {
	c.taskReads++
	if c.err != nil {
		return nil, c.err
	}
	return c.Store.AllTasks(ctx)
}

func newTestCache(t *testing.T, ttl time.Duration) (*Cache, *countingStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	base, _ := newFakeStorage()
	counting := &countingStore{Store: base}
	return NewCache(counting, client, ttl), counting, mr
}

func TestCacheTasksMissThenHit(t *testing.T) {
	ctx := context.Background()
	cache, base, mr := newTestCache(t, time.Minute)
	if err := base.PutTasks(ctx, domain.Task{ID: "t1", Title: "Skrifa kóða"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	for i := 0; i < 3; i++ {
		tasks, err := cache.AllTasks(ctx)
		if err != nil {
			t.Fatalf("all tasks: %v", err)
		}
		if len(tasks) != 1 || tasks[0].Title != "Skrifa kóða" {
			t.Fatalf("unexpected tasks: %+v", tasks)
		}
	}
	if base.taskReads != 1 {
		t.Fatalf("expected 1 backend read, got %d", base.taskReads)
	}
	if ttl := mr.TTL(tasksCacheKey); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("unexpected TTL: %v", ttl)
	}
}

func TestCacheStaleEntryExpiresWithTTL(t *testing.T) {
	ctx := context.Background()
	cache, base, mr := newTestCache(t, time.Minute)
	if err := base.PutTasks(ctx, domain.Task{ID: "t1", Title: "Gamalt"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := cache.AllTasks(ctx); err != nil {
		t.Fatalf("all tasks: %v", err)
	}
	// A write that skips the evict leaves the cached copy stale.
	if err := base.PutTasks(ctx, domain.Task{ID: "t1", Title: "Nýtt"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	tasks, err := cache.AllTasks(ctx)
	if err != nil || tasks[0].Title != "Gamalt" {
		t.Fatalf("expected cached copy before expiry, got %+v, %v", tasks, err)
	}

	mr.FastForward(time.Minute)
	tasks, err = cache.AllTasks(ctx)
	if err != nil || tasks[0].Title != "Nýtt" {
		t.Fatalf("expected fresh copy after expiry, got %+v, %v", tasks, err)
	}
	if base.taskReads != 2 {
		t.Fatalf("expected 2 backend reads, got %d", base.taskReads)
	}
}

func TestCacheWriteEvicts(t *testing.T) {
	ctx := context.Background()
	cache, base, mr := newTestCache(t, time.Minute)

	if _, err := cache.AllTasks(ctx); err != nil {
		t.Fatalf("prime: %v", err)
	}
	if !mr.Exists(tasksCacheKey) {
		t.Fatalf("expected cached tasks")
	}
	if err := cache.PutTasks(ctx, domain.Task{ID: "t2", Title: "Nýtt"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if mr.Exists(tasksCacheKey) {
		t.Fatalf("expected eviction after write")
	}
	tasks, err := cache.AllTasks(ctx)
	if err != nil || len(tasks) != 1 {
		t.Fatalf("expected fresh read, got %+v err=%v", tasks, err)
	}
	if base.taskReads != 2 {
		t.Fatalf("expected 2 backend reads, got %d", base.taskReads)
	}
}

func TestCacheCorruptEntryFallsBack(t *testing.T) {
	ctx := context.Background()
	cache, base, mr := newTestCache(t, time.Minute)
	if err := mr.Set(categoriesCacheKey, "not-json"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := base.PutCategory(ctx, domain.Category{ID: "1", Name: "Vinna"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	cats, err := cache.AllCategories(ctx)
	if err != nil || len(cats) != 1 {
		t.Fatalf("expected fallback read, got %+v err=%v", cats, err)
	}
}

func TestCacheZeroTTLDoesNotStore(t *testing.T) {
	ctx := context.Background()
	cache, _, mr := newTestCache(t, 0)
	if _, err := cache.AllTags(ctx); err != nil {
		t.Fatalf("all tags: %v", err)
	}
	if mr.Exists(tagsCacheKey) {
		t.Fatalf("expected nothing cached with zero TTL")
	}
}

func TestCacheDoesNotStoreErrors(t *testing.T) {
	ctx := context.Background()
	cache, base, mr := newTestCache(t, time.Minute)
	base.err = errors.New("table down")
	if _, err := cache.AllTasks(ctx); !errors.Is(err, base.err) {
		t.Fatalf("expected backend error, got %v", err)
	}
	if mr.Exists(tasksCacheKey) {
		t.Fatalf("error must not be cached")
	}
}

func TestCacheWithoutRedis(t *testing.T) {
	base, _ := newFakeStorage()
	cache := NewCache(base, nil, time.Minute)
	if _, err := cache.AllTasks(context.Background()); err != nil {
		t.Fatalf("expected pass-through without redis: %v", err)
	}
}
