package reporting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheVersionKey = "finreports:version"

// Cache stores rendered artifacts in Redis under versioned keys.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper. A nil client disables caching.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Version returns the current cache version, initialising when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.SetNX(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	if ver <= 0 {
		ver = 1
		if err := c.client.Set(ctx, cacheVersionKey, ver, 0).Err(); err != nil {
			return 0, err
		}
	}
	return ver, nil
}

// BuildKey composes the cache key with the current version.
func (c *Cache) BuildKey(ctx context.Context, parts ...string) (string, error) {
	joined := strings.Join(parts, ":")
	if c == nil || c.client == nil {
		return joined, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%d", joined, ver), nil
}

// Fetch returns the cached artifact for key or renders and stores it. The boolean reports
// a cache hit.
func (c *Cache) Fetch(ctx context.Context, key string, loader func(context.Context) (Artifact, error)) (Artifact, bool, error) {
	if loader == nil {
		return Artifact{}, false, errors.New("reporting: cache loader required")
	}
	if c == nil || c.client == nil {
		art, err := loader(ctx)
		return art, false, err
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var art Artifact
		if err := json.Unmarshal(payload, &art); err == nil {
			return art, true, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		return Artifact{}, false, err
	}
	art, err := loader(ctx)
	if err != nil {
		return Artifact{}, false, err
	}
	raw, err := json.Marshal(art)
	if err != nil {
		return Artifact{}, false, err
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return Artifact{}, false, err
	}
	return art, false, nil
}

// Bump invalidates every cached artifact by incrementing the version.
func (c *Cache) Bump(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, cacheVersionKey).Err()
}
