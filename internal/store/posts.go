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

const (
	postColumns = `id, user_id, title, content, created_at, updated_at`

	postWithAuthor = `
		SELECT p.id, p.user_id, p.title, p.content, p.created_at, p.updated_at,
		       u.name AS user_name, u.email AS user_email
		FROM posts p
		LEFT JOIN users u ON u.id = p.user_id`
)

type PostChanges struct {
	Title   *string
	Content *string
}

type PostStore struct {
	db *sqlx.DB
}

func NewPostStore(db *sqlx.DB) *PostStore {
	return &PostStore{db: db}
}

// List returns every post with its author, newest first.
func (s *PostStore) List(ctx context.Context) ([]models.Post, error) {
	posts := []models.Post{}
	if err := s.db.SelectContext(ctx, &posts, postWithAuthor+` ORDER BY p.created_at DESC, p.id DESC`); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func (s *PostStore) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	var p models.Post
	err := s.db.GetContext(ctx, &p, s.db.Rebind(`SELECT `+postColumns+` FROM posts WHERE id = ?`), id)
	if err != nil {
		return nil, db.MapError(err)
	}
	return &p, nil
}

func (s *PostStore) Create(ctx context.Context, userID int64, title, content string) (*models.Post, error) {
	now := time.Now().UTC()
	query := s.db.Rebind(`
		INSERT INTO posts (user_id, title, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`)

	var id int64
	if err := s.db.QueryRowxContext(ctx, query, userID, title, content, now, now).Scan(&id); err != nil {
		return nil, db.MapError(err)
	}
	return s.GetByID(ctx, id)
}

func (s *PostStore) Update(ctx context.Context, id int64, ch PostChanges) (*models.Post, error) {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}
	if ch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *ch.Title)
	}
	if ch.Content != nil {
		sets = append(sets, "content = ?")
		args = append(args, *ch.Content)
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE posts SET `+strings.Join(sets, ", ")+` WHERE id = ?`), args...)
	if err != nil {
		return nil, db.MapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	if n == 0 {
		return nil, db.ErrNotFound
	}
	return s.GetByID(ctx, id)
}

func (s *PostStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM posts WHERE id = ?`), id)
	if err != nil {
		return db.MapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if n == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (s *PostStore) SearchByTitle(ctx context.Context, title string) ([]models.Post, error) {
	posts := []models.Post{}
	query := s.db.Rebind(postWithAuthor + ` WHERE LOWER(p.title) LIKE LOWER(?) ESCAPE '\' ORDER BY p.id`)
	if err := s.db.SelectContext(ctx, &posts, query, containsPattern(title)); err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}
	return posts, nil
}

func (s *PostStore) ListByUser(ctx context.Context, userID int64) ([]models.Post, error) {
	posts := []models.Post{}
	query := s.db.Rebind(`SELECT ` + postColumns + ` FROM posts WHERE user_id = ? ORDER BY id`)
	if err := s.db.SelectContext(ctx, &posts, query, userID); err != nil {
		return nil, fmt.Errorf("list posts for user %d: %w", userID, err)
	}
	return posts, nil
}

func (s *PostStore) Recent(ctx context.Context, limit int) ([]models.Post, error) {
	posts := []models.Post{}
	query := s.db.Rebind(postWithAuthor + ` ORDER BY p.created_at DESC, p.id DESC LIMIT ?`)
	if err := s.db.SelectContext(ctx, &posts, query, limit); err != nil {
		return nil, fmt.Errorf("recent posts: %w", err)
	}
	return posts, nil
}

func (s *PostStore) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var n int64
	if err := s.db.GetContext(ctx, &n, s.db.Rebind(`SELECT COUNT(*) FROM posts WHERE user_id = ?`), userID); err != nil {
		return 0, fmt.Errorf("count posts for user %d: %w", userID, err)
	}
	return n, nil
}
