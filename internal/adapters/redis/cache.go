package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache struct {
	client *redis.Client
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) Client() *redis.Client {
	return c.client
}

// AcquireOrderLock guards payment initiation: at most one in-flight
// initiation per order id within the TTL.
func (c *Cache) AcquireOrderLock(ctx context.Context, orderID string, ttl time.Duration) (bool, error) {
	res := c.client.SetNX(ctx, "order:lock:"+orderID, "1", ttl)
	return res.Val(), res.Err()
}

func (c *Cache) ReleaseOrderLock(ctx context.Context, orderID string) error {
	return c.client.Del(ctx, "order:lock:"+orderID).Err()
}
