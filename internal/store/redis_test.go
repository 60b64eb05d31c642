package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func redisStores(t *testing.T) (*RedisRateLimitStore, *RedisCacheStore) {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	rdb, err := NewRedisClient(context.Background(), addr, os.Getenv("TEST_REDIS_PASSWORD"), 0)
	require.NoError(t, err)
	t.Cleanup(func() { rdb.Close() })
	return NewRedisRateLimitStore(rdb), NewRedisCacheStore(rdb)
}

func TestRedisRateLimitStore(t *testing.T) {
	limits, _ := redisStores(t)
	ctx := context.Background()
	key := "test:" + uuid.NewString()

	cur, err := limits.Current(ctx, key)
	require.NoError(t, err)
	assert.Zero(t, cur.RequestCount)

	first, err := limits.Increment(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, first.RequestCount)
	assert.WithinDuration(t, time.Now().Add(time.Minute), first.ExpiresAt, 2*time.Second)

	second, err := limits.Increment(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 2, second.RequestCount)

	cur, err = limits.Current(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 2, cur.RequestCount)
	assert.False(t, cur.ExpiresAt.IsZero())
}

func TestRedisCacheStore(t *testing.T) {
	_, cache := redisStores(t)
	ctx := context.Background()
	key := "test:" + uuid.NewString()

	entry, err := cache.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, entry)

	require.NoError(t, cache.Set(ctx, key, []byte(`{"a":1}`), time.Minute))
	entry, err = cache.Get(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, `{"a":1}`, string(entry.Body))
	assert.WithinDuration(t, time.Now().Add(time.Minute), entry.ExpiresAt, 2*time.Second)
}
