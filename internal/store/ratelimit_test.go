package store

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestRateLimitStoreFixedWindow(t *testing.T) {
	forEachDialect(t, func(t *testing.T, conn *sqlx.DB) {
		c := &clock{t: time.Unix(1_700_000_000, 0)}
		s := NewRateLimitStore(conn)
		s.now = c.now
		ctx := context.Background()

		cur, err := s.Current(ctx, "k")
		require.NoError(t, err)
		assert.Zero(t, cur.RequestCount)
		assert.True(t, cur.ExpiresAt.IsZero())

		first, err := s.Increment(ctx, "k", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, 1, first.RequestCount)
		assert.Equal(t, c.t.Add(time.Minute).Unix(), first.ExpiresAt.Unix())

		c.advance(10 * time.Second)
		second, err := s.Increment(ctx, "k", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, 2, second.RequestCount)
		// the window does not slide
		assert.Equal(t, first.ExpiresAt, second.ExpiresAt)

		cur, err = s.Current(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, 2, cur.RequestCount)

		// other keys are independent
		other, err := s.Increment(ctx, "other", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, 1, other.RequestCount)

		c.advance(time.Minute)
		cur, err = s.Current(ctx, "k")
		require.NoError(t, err)
		assert.Zero(t, cur.RequestCount)

		reset, err := s.Increment(ctx, "k", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, 1, reset.RequestCount)
		assert.Equal(t, c.t.Add(time.Minute).Unix(), reset.ExpiresAt.Unix())
	})
}

func TestRateLimitStoreCleanup(t *testing.T) {
	forEachDialect(t, func(t *testing.T, conn *sqlx.DB) {
		c := &clock{t: time.Unix(1_700_000_000, 0)}
		s := NewRateLimitStore(conn)
		s.now = c.now
		ctx := context.Background()

		_, err := s.Increment(ctx, "short", time.Second)
		require.NoError(t, err)
		_, err = s.Increment(ctx, "long", time.Hour)
		require.NoError(t, err)

		c.advance(5 * time.Second)
		n, err := s.Cleanup(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		cur, err := s.Current(ctx, "long")
		require.NoError(t, err)
		assert.Equal(t, 1, cur.RequestCount)
	})
}
