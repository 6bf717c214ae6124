package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
)

// Idempotency caches the first response written under a caller-supplied
// Idempotency-Key so a retried mutation replays the original outcome
// instead of running twice.
type Idempotency struct {
	client *redis.Client
}

func NewIdempotency(client *redis.Client) *Idempotency {
	return &Idempotency{client: client}
}

func idempotencyKey(key string) string {
	return "idemp:" + key
}

// IdempResponse is the stored slice of the original response, enough to
// replay it byte for byte.
type IdempResponse struct {
	Status int             `json:"status"`
	Result json.RawMessage `json:"result"`
}

// Get returns the cached response for the key, or nil when the key has
// never been seen (a miss is not an error).
func (i *Idempotency) Get(ctx context.Context, key string) (*IdempResponse, error) {
	val, err := i.client.Get(ctx, idempotencyKey(key)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get idempotent response")
	}
	var resp IdempResponse
	if err := json.Unmarshal(val, &resp); err != nil {
		return nil, errors.Wrap(err, "unmarshal idempotent response")
	}
	return &resp, nil
}

func (i *Idempotency) Set(ctx context.Context, key string, resp IdempResponse, ttl time.Duration) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return errors.Wrap(err, "marshal idempotent response")
	}
	return i.client.Set(ctx, idempotencyKey(key), data, ttl).Err()
}
