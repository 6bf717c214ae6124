package ratelimit

import (
	"context"
	"time"

	redisadapter "github.com/stayloop/stayloop-server/internal/adapters/redis"
)

// RateLimiter is a fixed-window counter in redis. The window key expires
// with the period, so idle keys cost nothing.
type RateLimiter struct {
	redis *redisadapter.Cache
}

func NewRateLimiter(redis *redisadapter.Cache) *RateLimiter {
	return &RateLimiter{redis: redis}
}

// Allow fails closed: if redis is unreachable the request is rejected
// rather than letting a degraded limiter wave everything through.
func (rl *RateLimiter) Allow(ctx context.Context, key string, rate int, period time.Duration) bool {
	fullKey := "rl:" + key

	pipe := rl.redis.Client().Pipeline()
	incr := pipe.Incr(ctx, fullKey)
	pipe.Expire(ctx, fullKey, period)

	if _, err := pipe.Exec(ctx); err != nil {
		return false
	}
	return incr.Val() <= int64(rate)
}
