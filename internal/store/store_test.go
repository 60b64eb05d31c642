package store

import (
	"context"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/vagkalosynakis/attributes/internal/db"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	conn, err := db.Connect(context.Background(), db.Options{DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.Migrate(conn))
	return conn
}

// newPostgresDB connects to TEST_POSTGRES_DSN, migrates it and empties every
// table so each test starts from ids 1.
func newPostgresDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	require.True(t, db.IsPostgres(dsn), "TEST_POSTGRES_DSN must be a postgres:// URL")

	conn, err := db.Connect(context.Background(), db.Options{DSN: dsn, MaxOpen: 4, MaxIdle: 2})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.Migrate(conn))

	_, err = conn.Exec(`TRUNCATE posts, users, rate_limits, cache_responses RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return conn
}

// forEachDialect runs fn on SQLite and, when configured, on Postgres.
func forEachDialect(t *testing.T, fn func(t *testing.T, conn *sqlx.DB)) {
	t.Run("sqlite", func(t *testing.T) { fn(t, newTestDB(t)) })
	t.Run("postgres", func(t *testing.T) { fn(t, newPostgresDB(t)) })
}

func strPtr(s string) *string { return &s }
