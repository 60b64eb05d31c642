package store

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheStore(t *testing.T) {
	forEachDialect(t, func(t *testing.T, conn *sqlx.DB) {
		c := &clock{t: time.Unix(1_700_000_000, 0)}
		s := NewCacheStore(conn)
		s.now = c.now
		ctx := context.Background()

		entry, err := s.Get(ctx, "cache:a")
		require.NoError(t, err)
		assert.Nil(t, entry)

		require.NoError(t, s.Set(ctx, "cache:a", []byte(`{"ok":true}`), 30*time.Second))

		entry, err = s.Get(ctx, "cache:a")
		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.JSONEq(t, `{"ok":true}`, string(entry.Body))
		assert.Equal(t, c.t.Add(30*time.Second).Unix(), entry.ExpiresAt.Unix())

		// overwrite
		require.NoError(t, s.Set(ctx, "cache:a", []byte(`{"ok":false}`), 30*time.Second))
		entry, err = s.Get(ctx, "cache:a")
		require.NoError(t, err)
		assert.JSONEq(t, `{"ok":false}`, string(entry.Body))

		c.advance(31 * time.Second)
		entry, err = s.Get(ctx, "cache:a")
		require.NoError(t, err)
		assert.Nil(t, entry)

		n, err := s.Cleanup(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
	})
}

func TestCacheStoreCleanupKeepsLiveEntries(t *testing.T) {
	forEachDialect(t, func(t *testing.T, conn *sqlx.DB) {
		c := &clock{t: time.Unix(1_700_000_000, 0)}
		s := NewCacheStore(conn)
		s.now = c.now
		ctx := context.Background()

		require.NoError(t, s.Set(ctx, "cache:short", []byte(`[]`), time.Second))
		require.NoError(t, s.Set(ctx, "cache:long", []byte(`[1]`), time.Hour))

		c.advance(time.Minute)
		n, err := s.Cleanup(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		entry, err := s.Get(ctx, "cache:long")
		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.Equal(t, `[1]`, string(entry.Body))
	})
}
