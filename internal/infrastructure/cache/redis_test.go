package cache

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruhan-islam/text-summarizer/internal/pkg/config"
	apperrors "github.com/ruhan-islam/text-summarizer/internal/pkg/errors"
	"github.com/ruhan-islam/text-summarizer/internal/pkg/logger"
)

func setupTestCache(t *testing.T, ttl time.Duration) (*RedisCache, *redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCacheWithClient(client, ttl, logger.Discard()), client, mr
}

func TestKey(t *testing.T) {
	k1 := Key("v1", "hello")
	k2 := Key("v1", "hello")
	k3 := Key("v2", "hello")

	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
	assert.Regexp(t, `^clean:v1:[0-9a-f]{64}$`, k1)
}

func TestRedisCache_SetManyGetMany(t *testing.T) {
	cache, _, _ := setupTestCache(t, time.Hour)
	ctx := context.Background()

	t.Run("Should return no hits on an empty cache", func(t *testing.T) {
		hits, err := cache.GetMany(ctx, "v1", []string{"a", "b"})
		require.NoError(t, err)
		assert.Empty(t, hits)
	})

	t.Run("Should return stored values keyed by raw text", func(t *testing.T) {
		err := cache.SetMany(ctx, "v1", map[string]string{
			"The cat is not here": "cat not",
			"The":                 "",
		})
		require.NoError(t, err)

		hits, err := cache.GetMany(ctx, "v1", []string{"The cat is not here", "missing", "The"})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{
			"The cat is not here": "cat not",
			"The":                 "",
		}, hits)
	})

	t.Run("Should keep versions apart", func(t *testing.T) {
		hits, err := cache.GetMany(ctx, "v2", []string{"The cat is not here"})
		require.NoError(t, err)
		assert.Empty(t, hits)
	})

	t.Run("Should accept empty input", func(t *testing.T) {
		require.NoError(t, cache.SetMany(ctx, "v1", nil))
		hits, err := cache.GetMany(ctx, "v1", nil)
		require.NoError(t, err)
		assert.Empty(t, hits)
	})
}

func TestRedisCache_TTL(t *testing.T) {
	cache, _, mr := setupTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.SetMany(ctx, "v1", map[string]string{"x": "y"}))
	assert.Equal(t, time.Minute, mr.TTL(Key("v1", "x")))

	mr.FastForward(2 * time.Minute)

	hits, err := cache.GetMany(ctx, "v1", []string{"x"})
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestRedisCache_Invalidate(t *testing.T) {
	cache, client, _ := setupTestCache(t, 0)
	ctx := context.Background()

	require.NoError(t, cache.SetMany(ctx, "v1", map[string]string{"a": "1", "b": "2"}))
	require.NoError(t, cache.SetMany(ctx, "v2", map[string]string{"a": "1"}))

	deleted, err := cache.Invalidate(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	assert.Equal(t, int64(0), client.Exists(ctx, Key("v1", "a")).Val())
	assert.Equal(t, int64(1), client.Exists(ctx, Key("v2", "a")).Val())
}

func TestRedisCache_Invalidate_ConfiguredVersions(t *testing.T) {
	cache, client, _ := setupTestCache(t, 0)
	ctx := context.Background()

	require.NoError(t, cache.SetMany(ctx, "v1:aaaaaaaaaaaa", map[string]string{"a": "1"}))
	require.NoError(t, cache.SetMany(ctx, "v1:bbbbbbbbbbbb", map[string]string{"a": "2"}))
	require.NoError(t, cache.SetMany(ctx, "v2:aaaaaaaaaaaa", map[string]string{"a": "3"}))

	t.Run("Should drop a single configuration", func(t *testing.T) {
		deleted, err := cache.Invalidate(ctx, "v1:aaaaaaaaaaaa")
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)
		assert.Equal(t, int64(1), client.Exists(ctx, Key("v1:bbbbbbbbbbbb", "a")).Val())
	})

	t.Run("Should drop every configuration of a version", func(t *testing.T) {
		deleted, err := cache.Invalidate(ctx, "v1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)
		assert.Equal(t, int64(1), client.Exists(ctx, Key("v2:aaaaaaaaaaaa", "a")).Val())
	})
}

func TestRedisCache_ServerDown(t *testing.T) {
	cache, _, mr := setupTestCache(t, time.Hour)
	ctx := context.Background()

	mr.Close()

	_, err := cache.GetMany(ctx, "v1", []string{"a"})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeCacheError))

	assert.Equal(t, "down", cache.Health(ctx)["status"])
}

func TestNewRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	cfg := &config.CacheConfig{
		Host:     mr.Host(),
		Port:     port,
		TTLHours: 1,
		PoolSize: 2,
	}

	cache, err := NewRedisCache(cfg, logger.Discard())
	require.NoError(t, err)
	defer cache.Close()

	assert.Equal(t, time.Hour, cache.ttl)
	assert.Equal(t, "up", cache.Health(context.Background())["status"])
}
