package geocoding

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"booking_portal_backend/platform/logger"

	"github.com/redis/go-redis/v9"
)

const searchKeyPrefix = "geocode:search:"

// Cache stores forward search results. Failures are treated as misses.
type Cache interface {
	GetSearch(ctx context.Context, query string) ([]AddressSuggestion, bool)
	SetSearch(ctx context.Context, query string, results []AddressSuggestion, ttl time.Duration)
}

// RedisCache is a Cache backed by Redis.
type RedisCache struct {
	rdb *redis.Client
	log *logger.Logger
}

// NewRedisCache creates a Redis-backed search cache.
func NewRedisCache(rdb *redis.Client, log *logger.Logger) *RedisCache {
	return &RedisCache{rdb: rdb, log: log}
}

func searchKey(query string) string {
	return searchKeyPrefix + strings.ToLower(strings.Join(strings.Fields(query), " "))
}

// GetSearch implements Cache.
func (c *RedisCache) GetSearch(ctx context.Context, query string) ([]AddressSuggestion, bool) {
	raw, err := c.rdb.Get(ctx, searchKey(query)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.WithContext(ctx).Warn("geocode cache read failed", "error", err)
		}
		return nil, false
	}
	var results []AddressSuggestion
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, false
	}
	return results, true
}

// SetSearch implements Cache.
func (c *RedisCache) SetSearch(ctx context.Context, query string, results []AddressSuggestion, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	raw, err := json.Marshal(results)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, searchKey(query), raw, ttl).Err(); err != nil {
		c.log.WithContext(ctx).Warn("geocode cache write failed", "error", err)
	}
}
