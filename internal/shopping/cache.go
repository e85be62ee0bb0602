package shopping

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/angelmondragon/pantryplan-backend/pkg/dates"
	"github.com/angelmondragon/pantryplan-backend/pkg/redis"
)

const versionCounter = "planner_version"

// Cache stores computed reports under a version that every meal, recipe and
// pantry mutation bumps after writing. Entries for older versions are never
// read again and expire on their own.
type Cache interface {
	Version(ctx context.Context) (int64, error)
	Get(ctx context.Context, version int64, rng dates.Range, servings int) (*ShortfallReport, bool, error)
	Put(ctx context.Context, version int64, rng dates.Range, servings int, report *ShortfallReport) error
	Invalidate(ctx context.Context) error
}

// NopCache disables caching; every request recomputes.
type NopCache struct{}

func (NopCache) Version(context.Context) (int64, error) { return 0, nil }
func (NopCache) Get(context.Context, int64, dates.Range, int) (*ShortfallReport, bool, error) {
	return nil, false, nil
}
func (NopCache) Put(context.Context, int64, dates.Range, int, *ShortfallReport) error { return nil }
func (NopCache) Invalidate(context.Context) error                                  { return nil }

type cacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
	CounterKey(name string) string
	ShortfallKey(version int64, start, end string, servings int) string
}

// RedisCache keeps reports in redis as JSON.
type RedisCache struct {
	store cacheStore
	ttl   time.Duration
}

func NewRedisCache(store cacheStore, ttl time.Duration) *RedisCache {
	return &RedisCache{store: store, ttl: ttl}
}

func (c *RedisCache) Version(ctx context.Context) (int64, error) {
	raw, err := c.store.Get(ctx, c.store.CounterKey(versionCounter))
	if redis.IsMiss(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read planner version: %w", err)
	}
	version, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse planner version %q: %w", raw, err)
	}
	return version, nil
}

func (c *RedisCache) Get(ctx context.Context, version int64, rng dates.Range, servings int) (*ShortfallReport, bool, error) {
	raw, err := c.store.Get(ctx, c.key(version, rng, servings))
	if redis.IsMiss(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read cached shortfall: %w", err)
	}
	var report ShortfallReport
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		return nil, false, fmt.Errorf("decode cached shortfall: %w", err)
	}
	return &report, true, nil
}

func (c *RedisCache) Put(ctx context.Context, version int64, rng dates.Range, servings int, report *ShortfallReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode shortfall: %w", err)
	}
	if err := c.store.Set(ctx, c.key(version, rng, servings), string(payload), c.ttl); err != nil {
		return fmt.Errorf("write cached shortfall: %w", err)
	}
	return nil
}

// Invalidate bumps the version so existing entries stop matching.
func (c *RedisCache) Invalidate(ctx context.Context) error {
	if _, err := c.store.Incr(ctx, c.store.CounterKey(versionCounter)); err != nil {
		return fmt.Errorf("bump planner version: %w", err)
	}
	return nil
}

func (c *RedisCache) key(version int64, rng dates.Range, servings int) string {
	return c.store.ShortfallKey(version, rng.Start.String(), rng.End.String(), servings)
}
