package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute), mr
}

func TestCacheRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	type payload struct {
		Name string `json:"name"`
	}
	ok, err := cache.GetJSON(ctx, "catalog:test", &payload{})
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, cache.SetJSONTracked(ctx, "catalog:pages", "catalog:test", payload{Name: "Wheat"}))

	var got payload
	ok, err = cache.GetJSON(ctx, "catalog:test", &got)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Wheat", got.Name)
}

func TestCacheInvalidateSetDropsAllTrackedKeys(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SetJSONTracked(ctx, "catalog:crops:pages", "catalog:crops:p1:n20", map[string]any{"total": 1}))
	require.NoError(t, cache.SetJSONTracked(ctx, "catalog:crops:pages", "catalog:crops:p2:n20", map[string]any{"total": 1}))
	require.True(t, mr.Exists("catalog:crops:p1:n20"))
	require.True(t, mr.Exists("catalog:crops:p2:n20"))

	require.NoError(t, cache.InvalidateSet(ctx, "catalog:crops:pages"))
	require.False(t, mr.Exists("catalog:crops:p1:n20"))
	require.False(t, mr.Exists("catalog:crops:p2:n20"))
	require.False(t, mr.Exists("catalog:crops:pages"))
}

func TestCacheNilSafe(t *testing.T) {
	var cache *Cache
	ok, err := cache.GetJSON(context.Background(), "k", nil)
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, cache.SetJSONTracked(context.Background(), "s", "k", 1))
	require.NoError(t, cache.InvalidateSet(context.Background(), "s"))
}
