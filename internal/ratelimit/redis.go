package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisTimeout = 2 * time.Second

// RedisLimiter shares fixed windows across instances through Redis counters.
// Redis failures let requests through.
type RedisLimiter struct {
	client *redis.Client
	prefix string
}

func NewRedisLimiter(client *redis.Client, prefix string) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: prefix}
}

func (l *RedisLimiter) key(k string) string {
	return l.prefix + k
}

func (l *RedisLimiter) Allow(key string, limit int, window time.Duration) bool {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	k := l.key(key)
	count, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return true
	}
	if count == 1 {
		l.client.PExpire(ctx, k, window)
	}
	return count <= int64(limit)
}

func (l *RedisLimiter) Remaining(key string, limit int, window time.Duration) int {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	count, err := l.client.Get(ctx, l.key(key)).Int()
	if err != nil {
		return limit
	}
	if remaining := limit - count; remaining > 0 {
		return remaining
	}
	return 0
}

func (l *RedisLimiter) RetryAfter(key string, window time.Duration) time.Duration {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	ttl, err := l.client.PTTL(ctx, l.key(key)).Result()
	if err != nil || ttl < 0 {
		return 0
	}
	return ttl
}

var _ Limiter = (*RedisLimiter)(nil)
