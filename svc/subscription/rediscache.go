package subscription

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const planCacheKeyPrefix = "subtrack:plan:"

// RedisPlanCache is a Redis-backed PlanCache storing plans as JSON with a TTL.
type RedisPlanCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisPlanCache returns a PlanCache backed by the given client.
// A non-positive ttl defaults to five minutes.
func NewRedisPlanCache(client *redis.Client, ttl time.Duration) *RedisPlanCache {
	if client == nil {
		panic("subscription: redis client is required")
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisPlanCache{client: client, ttl: ttl}
}

func (c *RedisPlanCache) Get(ctx context.Context, sku string) (*Plan, bool) {
	raw, err := c.client.Get(ctx, planCacheKeyPrefix+sku).Bytes()
	if err != nil {
		// Misses and transport errors are both treated as a miss; the
		// resolver falls back to the store either way.
		return nil, false
	}
	var plan Plan
	if err := json.Unmarshal(raw, &plan); err != nil {
		return nil, false
	}
	return &plan, true
}

func (c *RedisPlanCache) Set(ctx context.Context, sku string, plan *Plan) error {
	raw, err := json.Marshal(plan)
	if err != nil {
		return errors.Join(errors.New("failed to marshal plan for cache"), err)
	}
	return c.client.Set(ctx, planCacheKeyPrefix+sku, raw, c.ttl).Err()
}

func (c *RedisPlanCache) Delete(ctx context.Context, sku string) error {
	return c.client.Del(ctx, planCacheKeyPrefix+sku).Err()
}
