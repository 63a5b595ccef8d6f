package pagecache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	redisapp "recanto_moriah/internal/storage/redis"
)

// Cache memoizes the rendered public page payload for a short window. It is
// advisory only: misses and backend errors both fall through to a rebuild.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Invalidate(ctx context.Context, key string)
}

// RedisCache shares the memoized payload across instances.
type RedisCache struct {
	client *redisapp.Client
}

func NewRedisCache(client *redisapp.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		// redis.Nil and transport errors alike read as a miss.
		return nil, false
	}
	return val, true
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	_ = c.client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context, key string) {
	_ = c.client.Del(ctx, key).Err()
}

// MemoryCache is the single-instance fallback when no Redis is configured.
type MemoryCache struct {
	c *gocache.Cache
}

func NewMemoryCache(defaultTTL time.Duration) *MemoryCache {
	return &MemoryCache{c: gocache.New(defaultTTL, 2*defaultTTL)}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	return b, ok
}

func (m *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	m.c.Set(key, value, ttl)
}

func (m *MemoryCache) Invalidate(_ context.Context, key string) {
	m.c.Delete(key)
}
