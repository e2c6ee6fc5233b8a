/**
 * @description
 * Redis-backed read-through cache for the plan catalogue. Entries are JSON
 * encoded and expire after a fixed TTL; writes to the catalogue invalidate
 * the affected keys.
 */
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/subtrack/subscription-service/internal/domain"
)

const defaultPrefix = "subscriptions"

func normalizePrefix(prefix string) string {
	trimmed := strings.TrimSpace(prefix)
	if trimmed == "" {
		trimmed = defaultPrefix
	}
	return strings.TrimSuffix(trimmed, ":")
}

// RedisPlanCache stores plans under <prefix>:plans:active and <prefix>:plans:<id>.
type RedisPlanCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedisPlanCache(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisPlanCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisPlanCache{
		client: client,
		prefix: normalizePrefix(prefix),
		ttl:    ttl,
	}
}

func (c *RedisPlanCache) activeKey() string {
	return c.prefix + ":plans:active"
}

func (c *RedisPlanCache) planKey(id int64) string {
	return fmt.Sprintf("%s:plans:%d", c.prefix, id)
}

// GetActivePlans reports ok=false on a cache miss.
func (c *RedisPlanCache) GetActivePlans(ctx context.Context) ([]domain.Plan, bool, error) {
	var plans []domain.Plan
	ok, err := c.get(ctx, c.activeKey(), &plans)
	if err != nil || !ok {
		return nil, false, err
	}
	return plans, true, nil
}

func (c *RedisPlanCache) SetActivePlans(ctx context.Context, plans []domain.Plan) error {
	return c.set(ctx, c.activeKey(), plans)
}

// GetPlan reports ok=false on a cache miss.
func (c *RedisPlanCache) GetPlan(ctx context.Context, id int64) (*domain.Plan, bool, error) {
	var plan domain.Plan
	ok, err := c.get(ctx, c.planKey(id), &plan)
	if err != nil || !ok {
		return nil, false, err
	}
	return &plan, true, nil
}

func (c *RedisPlanCache) SetPlan(ctx context.Context, plan *domain.Plan) error {
	if plan == nil {
		return nil
	}
	return c.set(ctx, c.planKey(plan.ID), plan)
}

// Invalidate drops the active listing and the given plan entries.
func (c *RedisPlanCache) Invalidate(ctx context.Context, ids ...int64) error {
	keys := []string{c.activeKey()}
	for _, id := range ids {
		keys = append(keys, c.planKey(id))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate plan cache: %w", err)
	}
	return nil
}

func (c *RedisPlanCache) get(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (c *RedisPlanCache) set(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// NoopPlanCache is used when Redis is not configured. Every read is a miss.
type NoopPlanCache struct{}

func (NoopPlanCache) GetActivePlans(context.Context) ([]domain.Plan, bool, error) {
	return nil, false, nil
}
func (NoopPlanCache) SetActivePlans(context.Context, []domain.Plan) error { return nil }
func (NoopPlanCache) GetPlan(context.Context, int64) (*domain.Plan, bool, error) {
	return nil, false, nil
}
func (NoopPlanCache) SetPlan(context.Context, *domain.Plan) error { return nil }
func (NoopPlanCache) Invalidate(context.Context, ...int64) error  { return nil }
