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

// CacheStore keeps response bodies in the cache_responses table. Expired
// rows are ignored on read and removed by Cleanup.
type CacheStore struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewCacheStore(db *sqlx.DB) *CacheStore {
	return &CacheStore{db: db, now: time.Now}
}

// Get returns the live entry for key, or nil when there is none.
func (s *CacheStore) Get(ctx context.Context, key string) (*models.CachedResponse, error) {
	var row struct {
		Body      string `db:"response_data"`
		ExpiresAt int64  `db:"expires_at"`
	}
	query := s.db.Rebind(`SELECT response_data, expires_at FROM cache_responses WHERE cache_key = ? AND expires_at > ?`)
	err := s.db.GetContext(ctx, &row, query, key, s.now().Unix())
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("cache get: %w", err)
	}
	return &models.CachedResponse{Key: key, Body: []byte(row.Body), ExpiresAt: time.Unix(row.ExpiresAt, 0)}, nil
}

func (s *CacheStore) Set(ctx context.Context, key string, body []byte, ttl time.Duration) error {
	now := s.now()
	query := s.db.Rebind(`
		INSERT INTO cache_responses (cache_key, response_data, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (cache_key) DO UPDATE SET
			response_data = excluded.response_data,
			expires_at    = excluded.expires_at,
			updated_at    = excluded.updated_at`)

	if _, err := s.db.ExecContext(ctx, query, key, string(body), now.Add(ttl).Unix(), now.UTC(), now.UTC()); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (s *CacheStore) Cleanup(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM cache_responses WHERE expires_at <= ?`), s.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("cache cleanup: %w", err)
	}
	return res.RowsAffected()
}
