package cache

import (
	"context"
	"errors"
	"time"

	"github.com/apex/log"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "last-updated:commit:"

// RedisCache stores commit dates in Redis so that separate runs (a CI
// matrix, several site builds) share lookups and stay under the API's
// unauthenticated rate limit.
//
// Redis failures never surface: Get reports a miss and Put logs and drops
// the value, so the fetcher falls back to the network.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger log.Interface
}

// NewRedisClient follows the usual addr/password/db triple.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// NewRedisCache wraps client. A zero ttl stores entries without expiry.
func NewRedisCache(client *redis.Client, ttl time.Duration, logger log.Interface) *RedisCache {
	if logger == nil {
		logger = log.Log
	}
	return &RedisCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	value, err := c.client.Get(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WithError(err).WithField("key", key).Warn("redis cache get failed")
		}
		return "", false
	}
	return value, true
}

func (c *RedisCache) Put(ctx context.Context, key string, value string) {
	if err := c.client.Set(ctx, redisKeyPrefix+key, value, c.ttl).Err(); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("redis cache put failed")
	}
}

// Ping checks connectivity. The CLI calls it once at startup so a bad
// address is reported as a configuration problem instead of a stream of
// cache-miss warnings.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
