package localstore

import (
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// RedisPrefix namespaces the local records in a shared Redis.
const RedisPrefix = "verkefnalisti:local:"

// Open returns the KV named by uri: "memory", "file:<dir>" or "redis".
// client is only used for "redis".
func Open(uri string, client *redis.Client) (KV, error) {
	kind, arg, _ := strings.Cut(strings.TrimSpace(uri), ":")
	switch strings.ToLower(kind) {
	case "", "memory":
		return NewMemoryKV(), nil
	case "file":
		if arg == "" {
			return nil, fmt.Errorf("local store %q: missing directory", uri)
		}
		kv, err := NewFileKV(arg)
		if err != nil {
			return nil, err
		}
		return kv, nil
	case "redis":
		if client == nil {
			return nil, fmt.Errorf("local store %q: no redis connection configured", uri)
		}
		return NewRedisKV(client, RedisPrefix), nil
	}
	return nil, fmt.Errorf("unknown local store %q", uri)
}
