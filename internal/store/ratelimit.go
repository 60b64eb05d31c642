package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/vagkalosynakis/attributes/internal/models"
)

// RateLimitStore keeps fixed-window request counters in the rate_limits
// table. Windows are identified by their absolute expiry in unix seconds.
type RateLimitStore struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewRateLimitStore(db *sqlx.DB) *RateLimitStore {
	return &RateLimitStore{db: db, now: time.Now}
}

// Current returns the live window for key. A key without a live window
// comes back with a zero count and zero expiry.
func (s *RateLimitStore) Current(ctx context.Context, key string) (models.RateLimitCounter, error) {
	c := models.RateLimitCounter{Key: key}

	var row struct {
		Count     int   `db:"request_count"`
		ExpiresAt int64 `db:"expires_at"`
	}
	query := s.db.Rebind(`SELECT request_count, expires_at FROM rate_limits WHERE rate_key = ? AND expires_at > ?`)
	err := s.db.GetContext(ctx, &row, query, key, s.now().Unix())
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return c, nil
	case err != nil:
		return c, fmt.Errorf("rate limit lookup: %w", err)
	}

	c.RequestCount = row.Count
	c.ExpiresAt = time.Unix(row.ExpiresAt, 0)
	return c, nil
}

// Increment counts one request against key. An expired window is replaced
// by a fresh one of length window starting now.
func (s *RateLimitStore) Increment(ctx context.Context, key string, window time.Duration) (models.RateLimitCounter, error) {
	now := s.now()
	nowUnix := now.Unix()
	expires := now.Add(window).Unix()

	query := s.db.Rebind(`
		INSERT INTO rate_limits (rate_key, request_count, expires_at, created_at, updated_at)
		VALUES (?, 1, ?, ?, ?)
		ON CONFLICT (rate_key) DO UPDATE SET
			request_count = CASE WHEN rate_limits.expires_at > ? THEN rate_limits.request_count + 1 ELSE 1 END,
			expires_at    = CASE WHEN rate_limits.expires_at > ? THEN rate_limits.expires_at ELSE excluded.expires_at END,
			updated_at    = excluded.updated_at
		RETURNING request_count, expires_at`)

	var (
		count     int
		expiresAt int64
	)
	err := s.db.QueryRowxContext(ctx, query, key, expires, now.UTC(), now.UTC(), nowUnix, nowUnix).Scan(&count, &expiresAt)
	if err != nil {
		return models.RateLimitCounter{}, fmt.Errorf("rate limit increment: %w", err)
	}

	return models.RateLimitCounter{Key: key, RequestCount: count, ExpiresAt: time.Unix(expiresAt, 0)}, nil
}

// Cleanup deletes expired windows and reports how many were removed.
func (s *RateLimitStore) Cleanup(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM rate_limits WHERE expires_at <= ?`), s.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("rate limit cleanup: %w", err)
	}
	return res.RowsAffected()
}
