package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/agriai/backend-mandi/internal/obs"
)

// Cache wraps Redis helpers for JSON payloads with hit/miss accounting.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs a cache helper.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// GetJSON unmarshals a cached JSON payload into dst. It reports whether the key existed.
func (c *Cache) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	if c == nil || c.client == nil || key == "" {
		return false, nil
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			countCache("miss")
			return false, nil
		}
		countCache("error")
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		countCache("error")
		return false, err
	}
	countCache("hit")
	return true, nil
}

// SetJSONTracked serialises v as JSON, stores it with the configured TTL and
// records the key in a tracking set so InvalidateSet can drop every member at
// once. The set expires alongside the entries it tracks.
func (c *Cache) SetJSONTracked(ctx context.Context, set, key string, v any) error {
	if c == nil || c.client == nil || set == "" || key == "" {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	pipe := c.client.TxPipeline()
	pipe.Set(ctx, key, data, c.ttl)
	pipe.SAdd(ctx, set, key)
	pipe.Expire(ctx, set, c.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

// InvalidateSet drops every key recorded in the tracking set, then the set
// itself.
func (c *Cache) InvalidateSet(ctx context.Context, set string) error {
	if c == nil || c.client == nil || set == "" {
		return nil
	}
	keys, err := c.client.SMembers(ctx, set).Result()
	if err != nil {
		return err
	}
	return c.client.Del(ctx, append(keys, set)...).Err()
}

func countCache(result string) {
	if obs.CatalogCacheHits != nil {
		obs.CatalogCacheHits.WithLabelValues(result).Inc()
	}
}
