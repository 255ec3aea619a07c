package api

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisDeduperAddRemove(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	d := NewRedisDeduper(client, time.Minute)
	ctx := context.Background()

	added, err := d.Add(ctx, "u1", "k")
	if err != nil || !added {
		t.Fatalf("first add = %v, %v", added, err)
	}
	added, err = d.Add(ctx, "u1", "k")
	if err != nil || added {
		t.Fatalf("second add should report existing key, got %v, %v", added, err)
	}
	if ttl := mr.TTL(dedupeKeyPrefix + "u1:k"); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("unexpected TTL: %v", ttl)
	}
	if err := d.Remove(ctx, "u1", "k"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if added, _ := d.Add(ctx, "u1", "k"); !added {
		t.Fatalf("expected key to be addable after remove")
	}
}
