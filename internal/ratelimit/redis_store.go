package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// expiryGrace keeps a key alive slightly past its reset time so Get can still
// observe the expired window instead of racing the server-side TTL.
const expiryGrace = time.Second

// hitScript performs the fixed window step atomically.
// KEYS[1] = entry key, ARGV = now (ms), window (ms), max, grace (ms).
// Returns {count, reset_ms, allowed}.
var hitScript = redis.NewScript(`
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local max = tonumber(ARGV[3])
local grace = tonumber(ARGV[4])
local state = redis.call('HMGET', KEYS[1], 'count', 'reset')
local count = tonumber(state[1])
local reset = tonumber(state[2])
if (not count) or (not reset) or now > reset then
  reset = now + window
  redis.call('HSET', KEYS[1], 'count', 1, 'reset', reset)
  redis.call('PEXPIREAT', KEYS[1], reset + grace)
  return {1, reset, 1}
end
if count >= max then
  return {count, reset, 0}
end
count = redis.call('HINCRBY', KEYS[1], 'count', 1)
return {count, reset, 1}
`)

// RedisStore keeps window state in Redis so several API processes share one
// ceiling per identifier.
type RedisStore struct {
	rdb    redis.UniversalClient
	prefix string
}

type RedisStoreOption func(*RedisStore)

// WithKeyPrefix namespaces every key written by the store.
func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) {
		s.prefix = strings.Trim(prefix, ":")
	}
}

// NewRedisStore wraps an existing client.
func NewRedisStore(rdb redis.UniversalClient, opts ...RedisStoreOption) *RedisStore {
	s := &RedisStore{
		rdb:    rdb,
		prefix: "ratelimit",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewRedisClient parses a redis:// URL and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// Ping reports whether the redis server is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStore) key(id string) string {
	return s.prefix + ":" + id
}

func (s *RedisStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	vals, err := s.rdb.HMGet(ctx, s.key(key), "count", "reset").Result()
	if err != nil {
		return Entry{}, false, err
	}
	if len(vals) != 2 || vals[0] == nil || vals[1] == nil {
		return Entry{}, false, nil
	}

	count, err := strconv.Atoi(fmt.Sprint(vals[0]))
	if err != nil {
		return Entry{}, false, fmt.Errorf("corrupt count for %s: %w", key, err)
	}
	resetMs, err := strconv.ParseInt(fmt.Sprint(vals[1]), 10, 64)
	if err != nil {
		return Entry{}, false, fmt.Errorf("corrupt reset for %s: %w", key, err)
	}

	return Entry{Count: count, ResetTime: time.UnixMilli(resetMs)}, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, entry Entry) error {
	k := s.key(key)
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, k, "count", entry.Count, "reset", entry.ResetTime.UnixMilli())
	pipe.PExpireAt(ctx, k, entry.ResetTime.Add(expiryGrace))
	_, err := pipe.Exec(ctx)
	return err
}

// Sweep is a no-op: Redis expires keys on its own.
func (s *RedisStore) Sweep(context.Context, time.Time) (int, error) {
	return 0, nil
}

func (s *RedisStore) Hit(ctx context.Context, key string, now time.Time, window time.Duration, max int) (Entry, bool, error) {
	res, err := hitScript.Run(ctx, s.rdb, []string{s.key(key)},
		now.UnixMilli(), window.Milliseconds(), max, expiryGrace.Milliseconds()).Int64Slice()
	if err != nil {
		return Entry{}, false, err
	}
	if len(res) != 3 {
		return Entry{}, false, fmt.Errorf("unexpected script reply %v", res)
	}

	return Entry{Count: int(res[0]), ResetTime: time.UnixMilli(res[1])}, res[2] == 1, nil
}
