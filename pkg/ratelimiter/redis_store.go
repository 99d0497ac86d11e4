package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// takeScript implements the refill-and-take step atomically on the Redis
// side, so concurrent instances cannot double-spend a bucket.
//
// KEYS[1] bucket hash; ARGV: capacity, refill rate, interval ms, now ms,
// requested tokens. Returns {allowed, remaining, reset ms}.
var takeScript = redis.NewScript(`
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local interval = tonumber(ARGV[3])
local now = tonumber(ARGV[4])
local requested = tonumber(ARGV[5])

local state = redis.call('HMGET', KEYS[1], 'tokens', 'updated')
local tokens = tonumber(state[1])
local updated = tonumber(state[2])
if tokens == nil then
  tokens = capacity
  updated = now
end

local elapsed = now - updated
if elapsed >= interval then
  local intervals = math.floor(elapsed / interval)
  tokens = math.min(capacity, tokens + intervals * rate)
  updated = updated + intervals * interval
end

local allowed = 0
if tokens >= requested then
  tokens = tokens - requested
  allowed = 1
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'updated', updated)
redis.call('PEXPIRE', KEYS[1], interval * math.ceil(capacity / rate) * 2)

return {allowed, tokens, updated + interval}
`)

// RedisStore shares buckets across service instances.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a store over an established Redis client. The prefix
// namespaces limiter keys within a shared database.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(key string) string {
	return s.prefix + ":" + key
}

func (s *RedisStore) Take(ctx context.Context, key string, n int, cfg Config) (int, time.Time, bool, error) {
	res, err := takeScript.Run(ctx, s.client, []string{s.key(key)},
		cfg.Capacity,
		cfg.RefillRate,
		cfg.RefillInterval.Milliseconds(),
		time.Now().UnixMilli(),
		n,
	).Int64Slice()
	if err != nil {
		return 0, time.Time{}, false, err
	}
	if len(res) != 3 {
		return 0, time.Time{}, false, fmt.Errorf("unexpected script reply of length %d", len(res))
	}

	return int(res[1]), time.UnixMilli(res[2]), res[0] == 1, nil
}

func (s *RedisStore) Reset(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}
