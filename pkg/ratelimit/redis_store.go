package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "subtrack:ratelimit:"

// takeScript refills and consumes atomically so concurrent callers across
// instances cannot double-spend tokens. State is a hash of the token count
// and the last refill time in unix milliseconds, expired once the bucket
// would be full again anyway.
var takeScript = redis.NewScript(`
local key = KEYS[1]
local capacity = tonumber(ARGV[1])
local refill_rate = tonumber(ARGV[2])
local interval_ms = tonumber(ARGV[3])
local requested = tonumber(ARGV[4])
local now_ms = tonumber(ARGV[5])

local state = redis.call('HMGET', key, 'tokens', 'last_refill')
local tokens = tonumber(state[1])
local last_refill = tonumber(state[2])
if tokens == nil or last_refill == nil then
  tokens = capacity
  last_refill = now_ms
end

local max_intervals = math.floor(capacity / refill_rate) + 1
local intervals = math.floor((now_ms - last_refill) / interval_ms)
if intervals > max_intervals then
  intervals = max_intervals
end
if intervals > 0 then
  tokens = math.min(tokens + intervals * refill_rate, capacity)
  last_refill = now_ms
end

local remaining
if tokens >= requested then
  tokens = tokens - requested
  remaining = tokens
else
  remaining = tokens - requested
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill', last_refill)
redis.call('PEXPIRE', key, interval_ms * max_intervals * 2)

return {remaining, last_refill + interval_ms}
`)

// RedisStore shares bucket state between instances.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore returns a Store backed by the given client.
// Panics on nil client to fail fast during wiring.
func NewRedisStore(client *redis.Client) *RedisStore {
	if client == nil {
		panic("ratelimit: redis client is required")
	}
	return &RedisStore{client: client}
}

func (s *RedisStore) Take(ctx context.Context, key string, n int, limit Limit) (int, time.Time, error) {
	res, err := takeScript.Run(ctx, s.client, []string{redisKeyPrefix + key},
		limit.Capacity,
		limit.RefillRate,
		limit.RefillInterval.Milliseconds(),
		n,
		time.Now().UnixMilli(),
	).Int64Slice()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to run rate limit script: %w", err)
	}
	if len(res) != 2 {
		return 0, time.Time{}, fmt.Errorf("unexpected rate limit script result: %v", res)
	}
	return int(res[0]), time.UnixMilli(res[1]), nil
}

func (s *RedisStore) Reset(ctx context.Context, key string) error {
	return s.client.Del(ctx, redisKeyPrefix+key).Err()
}
