package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/vagkalosynakis/attributes/internal/models"
)

// NewRedisClient connects to addr and pings it.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", addr, err)
	}
	return rdb, nil
}

// RedisRateLimitStore is the fixed-window counter on Redis: INCR on the key,
// with the window set as the key's expiry by the first request.
type RedisRateLimitStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisRateLimitStore(rdb *redis.Client) *RedisRateLimitStore {
	return &RedisRateLimitStore{rdb: rdb, prefix: "ratelimit:"}
}

func (s *RedisRateLimitStore) Current(ctx context.Context, key string) (models.RateLimitCounter, error) {
	c := models.RateLimitCounter{Key: key}

	pipe := s.rdb.Pipeline()
	get := pipe.Get(ctx, s.prefix+key)
	ttl := pipe.PTTL(ctx, s.prefix+key)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return c, fmt.Errorf("redis rate limit lookup: %w", err)
	}

	n, err := get.Int()
	if errors.Is(err, redis.Nil) {
		return c, nil
	}
	if err != nil {
		return c, fmt.Errorf("redis rate limit lookup: %w", err)
	}
	c.RequestCount = n
	if d := ttl.Val(); d > 0 {
		c.ExpiresAt = time.Now().Add(d)
	}
	return c, nil
}

func (s *RedisRateLimitStore) Increment(ctx context.Context, key string, window time.Duration) (models.RateLimitCounter, error) {
	k := s.prefix + key

	n, err := s.rdb.Incr(ctx, k).Result()
	if err != nil {
		return models.RateLimitCounter{}, fmt.Errorf("redis rate limit increment: %w", err)
	}

	ttl, err := s.rdb.PTTL(ctx, k).Result()
	if err != nil {
		return models.RateLimitCounter{}, fmt.Errorf("redis rate limit ttl: %w", err)
	}
	// A key without expiry is a fresh window, or one left behind by a
	// client that died between INCR and PEXPIRE.
	if n == 1 || ttl < 0 {
		if err := s.rdb.PExpire(ctx, k, window).Err(); err != nil {
			return models.RateLimitCounter{}, fmt.Errorf("redis rate limit expire: %w", err)
		}
		ttl = window
	}

	return models.RateLimitCounter{Key: key, RequestCount: int(n), ExpiresAt: time.Now().Add(ttl)}, nil
}

// Cleanup is a no-op: Redis expires windows on its own.
func (s *RedisRateLimitStore) Cleanup(context.Context) (int64, error) { return 0, nil }

type RedisCacheStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisCacheStore(rdb *redis.Client) *RedisCacheStore {
	return &RedisCacheStore{rdb: rdb, prefix: "response:"}
}

func (s *RedisCacheStore) Get(ctx context.Context, key string) (*models.CachedResponse, error) {
	body, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis cache get: %w", err)
	}

	entry := &models.CachedResponse{Key: key, Body: body}
	if ttl, err := s.rdb.PTTL(ctx, s.prefix+key).Result(); err == nil && ttl > 0 {
		entry.ExpiresAt = time.Now().Add(ttl)
	}
	return entry, nil
}

func (s *RedisCacheStore) Set(ctx context.Context, key string, body []byte, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, s.prefix+key, body, ttl).Err(); err != nil {
		return fmt.Errorf("redis cache set: %w", err)
	}
	return nil
}

func (s *RedisCacheStore) Cleanup(context.Context) (int64, error) { return 0, nil }
