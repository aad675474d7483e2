// Package cache implements core.Cache with Redis, falling back to process memory when no Redis URL is set.
package cache

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/studman/core"
)

type redisCache struct {
	client *redis.Client
}

var _ core.Cache = (*redisCache)(nil)

func NewRedisCache(client *redis.Client) *redisCache {
	return &redisCache{client: client}
}

func (c *redisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "redis get")
	}
	return b, true, nil
}

func (c *redisCache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return errors.Wrap(c.client.Set(ctx, key, val, ttl).Err(), "redis set")
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return errors.Wrap(c.client.Del(ctx, keys...).Err(), "redis del")
}

// New connects to conf.Cache.RedisURL, or returns an in-memory cache when it is empty.
// The returned close func releases the connection pool.
func New(ctx context.Context, conf *core.Config) (core.Cache, func() error, error) {
	if conf.Cache.RedisURL == "" {
		return NewMemoryCache(), func() error { return nil }, nil
	}
	opts, err := redis.ParseURL(conf.Cache.RedisURL)
	if err != nil {
		return nil, nil, errors.Wrap(err, "parsing redis URL")
	}
	client := redis.NewClient(opts)
	if err = client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, errors.Wrap(err, "pinging redis")
	}
	return NewRedisCache(client), client.Close, nil
}
