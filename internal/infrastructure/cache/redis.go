package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ruhan-islam/text-summarizer/internal/pkg/config"
	apperrors "github.com/ruhan-islam/text-summarizer/internal/pkg/errors"
)

const keyPrefix = "clean"

// RedisCache stores cleaned text keyed by refinery version and a hash of the raw input.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisCache creates a new Redis cache client
func NewRedisCache(cfg *config.CacheConfig, logger *slog.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  time.Duration(cfg.DialTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, apperrors.CacheError(fmt.Errorf("failed to ping redis: %w", err))
	}

	logger.Info("redis connection established",
		slog.String("host", cfg.Host),
		slog.Int("port", cfg.Port),
		slog.Int("db", cfg.DB),
	)

	return NewRedisCacheWithClient(client, time.Duration(cfg.TTLHours)*time.Hour, logger), nil
}

// NewRedisCacheWithClient wraps an existing client. ttl <= 0 stores entries without expiry.
func NewRedisCacheWithClient(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisCache {
	return &RedisCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Close closes the Redis connection
func (r *RedisCache) Close() error {
	r.logger.Info("closing redis connection")
	return r.client.Close()
}

// Key returns the cache key for a raw text under a refinery version.
func Key(version, text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("%s:%s:%s", keyPrefix, version, hex.EncodeToString(sum[:]))
}

// GetMany looks up cleaned values for texts. The result only holds hits, keyed by raw text.
func (r *RedisCache) GetMany(ctx context.Context, version string, texts []string) (map[string]string, error) {
	hits := make(map[string]string)
	if len(texts) == 0 {
		return hits, nil
	}

	keys := make([]string, len(texts))
	for i, text := range texts {
		keys[i] = Key(version, text)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, apperrors.CacheError(err)
	}

	for i, v := range values {
		if s, ok := v.(string); ok {
			hits[texts[i]] = s
		}
	}

	return hits, nil
}

// SetMany stores cleaned values keyed by raw text in one pipeline round trip.
func (r *RedisCache) SetMany(ctx context.Context, version string, entries map[string]string) error {
	if len(entries) == 0 {
		return nil
	}

	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for text, cleaned := range entries {
			pipe.Set(ctx, Key(version, text), cleaned, r.ttl)
		}
		return nil
	})
	if err != nil {
		return apperrors.CacheError(err)
	}
	return nil
}

// Invalidate removes every entry under version and returns how many were deleted. A plain
// version ("v1") also covers every configured cache version derived from it ("v1:<fingerprint>").
func (r *RedisCache) Invalidate(ctx context.Context, version string) (int64, error) {
	var (
		cursor  uint64
		deleted int64
	)
	pattern := fmt.Sprintf("%s:%s:*", keyPrefix, version)

	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, 500).Result()
		if err != nil {
			return deleted, apperrors.CacheError(err)
		}

		if len(keys) > 0 {
			n, err := r.client.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, apperrors.CacheError(err)
			}
			deleted += n
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	r.logger.Info("invalidated clean cache",
		slog.String("version", version),
		slog.Int64("deleted", deleted),
	)

	return deleted, nil
}

// Ping checks if Redis is alive
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Health returns health status of Redis
func (r *RedisCache) Health(ctx context.Context) map[string]interface{} {
	if err := r.Ping(ctx); err != nil {
		return map[string]interface{}{
			"status": "down",
			"error":  err.Error(),
		}
	}

	stats := r.client.PoolStats()

	return map[string]interface{}{
		"status":      "up",
		"hits":        stats.Hits,
		"misses":      stats.Misses,
		"timeouts":    stats.Timeouts,
		"total_conns": stats.TotalConns,
		"idle_conns":  stats.IdleConns,
	}
}
