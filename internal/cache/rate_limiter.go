package cache

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  ttl = tonumber(ARGV[1])
end
return {current, ttl}
`)

// RedisLoginRateLimiter counts login attempts per subject in a fixed window.
type RedisLoginRateLimiter struct {
	client redis.UniversalClient
	prefix string
	limit  int
	window time.Duration
}

func NewRedisLoginRateLimiter(client redis.UniversalClient, prefix string, limit int, window time.Duration) *RedisLoginRateLimiter {
	return &RedisLoginRateLimiter{
		client: client,
		prefix: normalizePrefix(prefix),
		limit:  limit,
		window: window,
	}
}

func (r *RedisLoginRateLimiter) key(subject string) string {
	return fmt.Sprintf("%s:rate_limit:login:%s", r.prefix, strings.ToLower(strings.TrimSpace(subject)))
}

// Allow consumes one attempt for subject. When the window is exhausted it
// returns allowed=false and the number of seconds until the window resets.
func (r *RedisLoginRateLimiter) Allow(ctx context.Context, subject string) (allowed bool, retryAfterSeconds int, err error) {
	if r == nil || r.client == nil || r.limit <= 0 || r.window <= 0 {
		return true, 0, nil
	}
	if strings.TrimSpace(subject) == "" {
		return true, 0, nil
	}

	windowMs := r.window.Milliseconds()
	if windowMs < 1000 {
		windowMs = 1000
	}

	rawResult, err := fixedWindowScript.Run(ctx, r.client, []string{r.key(subject)}, windowMs).Result()
	if err != nil {
		return false, 0, err
	}

	count, ttlMs, err := parseWindowResult(rawResult, windowMs)
	if err != nil {
		return false, 0, err
	}
	if count <= int64(r.limit) {
		return true, 0, nil
	}

	retryAfter := int(math.Ceil(float64(ttlMs) / 1000.0))
	if retryAfter < 1 {
		retryAfter = 1
	}
	return false, retryAfter, nil
}

func parseWindowResult(raw any, windowMs int64) (count int64, ttlMs int64, err error) {
	values, ok := raw.([]interface{})
	if !ok || len(values) != 2 {
		return 0, 0, fmt.Errorf("unexpected redis limiter response shape: %T", raw)
	}

	count, ok = values[0].(int64)
	if !ok {
		return 0, 0, fmt.Errorf("unexpected redis limiter count type: %T", values[0])
	}

	ttlMs, ok = values[1].(int64)
	if !ok {
		return count, 0, fmt.Errorf("unexpected redis limiter ttl type: %T", values[1])
	}
	if ttlMs < 0 {
		ttlMs = windowMs
	}
	return count, ttlMs, nil
}

// NoopRateLimiter allows every attempt.
type NoopRateLimiter struct{}

func (NoopRateLimiter) Allow(context.Context, string) (bool, int, error) { return true, 0, nil }
