package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redisclient "github.com/redis/go-redis/v9"
	redisadapter "github.com/stayloop/stayloop-server/internal/adapters/redis"
	"github.com/stayloop/stayloop-server/internal/ratelimit"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_Allow(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redisclient.NewClient(&redisclient.Options{Addr: mr.Addr()})
	rl := ratelimit.NewRateLimiter(redisadapter.NewCache(client))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow(ctx, "user:a", 3, time.Minute))
	}
	assert.False(t, rl.Allow(ctx, "user:a", 3, time.Minute))

	// Separate keys do not share a window.
	assert.True(t, rl.Allow(ctx, "user:b", 3, time.Minute))

	// The window resets after the period.
	mr.FastForward(2 * time.Minute)
	assert.True(t, rl.Allow(ctx, "user:a", 3, time.Minute))
}

func TestRateLimiter_FailsClosed(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redisclient.NewClient(&redisclient.Options{Addr: mr.Addr()})
	rl := ratelimit.NewRateLimiter(redisadapter.NewCache(client))

	mr.Close()
	assert.False(t, rl.Allow(context.Background(), "user:a", 3, time.Minute))
}
