package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/vagkalosynakis/attributes/internal/db"
	"github.com/vagkalosynakis/attributes/internal/models"
)

const userColumns = `id, name, email, created_at, updated_at`

// UserChanges carries the columns an update should touch; nil means keep.
type UserChanges struct {
	Name  *string
	Email *string
}

type UserStore struct {
	db *sqlx.DB
}

func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	err := s.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *UserStore) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	err := s.db.GetContext(ctx, &u, s.db.Rebind(`SELECT `+userColumns+` FROM users WHERE id = ?`), id)
	if err != nil {
		return nil, db.MapError(err)
	}
	return &u, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.db.GetContext(ctx, &u, s.db.Rebind(`SELECT `+userColumns+` FROM users WHERE email = ?`), email)
	if err != nil {
		return nil, db.MapError(err)
	}
	return &u, nil
}

func (s *UserStore) Create(ctx context.Context, name, email string) (*models.User, error) {
	now := time.Now().UTC()
	query := s.db.Rebind(`
		INSERT INTO users (name, email, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		RETURNING id`)

	var id int64
	if err := s.db.QueryRowxContext(ctx, query, name, email, now, now).Scan(&id); err != nil {
		return nil, db.MapError(err)
	}
	return s.GetByID(ctx, id)
}

// Update applies ch to the user and returns the stored row.
func (s *UserStore) Update(ctx context.Context, id int64, ch UserChanges) (*models.User, error) {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}
	if ch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *ch.Name)
	}
	if ch.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *ch.Email)
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ?`), args...)
	if err != nil {
		return nil, db.MapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	if n == 0 {
		return nil, db.ErrNotFound
	}
	return s.GetByID(ctx, id)
}

func (s *UserStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM users WHERE id = ?`), id)
	if err != nil {
		return db.MapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n == 0 {
		return db.ErrNotFound
	}
	return nil
}

// SearchByName matches name as a case-insensitive substring.
func (s *UserStore) SearchByName(ctx context.Context, name string) ([]models.User, error) {
	users := []models.User{}
	query := s.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE LOWER(name) LIKE LOWER(?) ESCAPE '\' ORDER BY id`)
	if err := s.db.SelectContext(ctx, &users, query, containsPattern(name)); err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return users, nil
}

func (s *UserStore) ListWithPostCount(ctx context.Context) ([]models.UserWithPostCount, error) {
	rows := []models.UserWithPostCount{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT u.id, u.name, u.email, u.created_at, u.updated_at, COUNT(p.id) AS post_count
		FROM users u
		LEFT JOIN posts p ON p.user_id = u.id
		GROUP BY u.id, u.name, u.email, u.created_at, u.updated_at
		ORDER BY u.id`)
	if err != nil {
		return nil, fmt.Errorf("list users with post count: %w", err)
	}
	return rows, nil
}

// containsPattern builds a LIKE pattern matching s anywhere, with LIKE
// wildcards in s escaped. Callers fold case in SQL with LOWER on both sides.
func containsPattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
