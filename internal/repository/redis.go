package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

func InitRedis(addr string, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	_, err := rdb.Ping(ctx).Result()
	if err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return rdb, nil
}

const linkKeyPrefix = "link:"

// RedisLinkCache caches short code -> target url for the redirect path.
// A nil client turns every call into a miss or no-op.
type RedisLinkCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisLinkCache(rdb *redis.Client, ttl time.Duration) *RedisLinkCache {
	return &RedisLinkCache{rdb: rdb, ttl: ttl}
}

func (c *RedisLinkCache) Get(ctx context.Context, shortCode string) (string, bool, error) {
	if c == nil || c.rdb == nil {
		return "", false, nil
	}
	val, err := c.rdb.Get(ctx, linkKeyPrefix+shortCode).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (c *RedisLinkCache) Set(ctx context.Context, shortCode, url string) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Set(ctx, linkKeyPrefix+shortCode, url, c.ttl).Err()
}

func (c *RedisLinkCache) Delete(ctx context.Context, shortCode string) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, linkKeyPrefix+shortCode).Err()
}
