package service

import (
	"context"
	"errors"
	"strings"

	"github.com/vagkalosynakis/attributes/internal/db"
	"github.com/vagkalosynakis/attributes/internal/models"
	"github.com/vagkalosynakis/attributes/internal/store"
)

const (
	DefaultRecentLimit = 10
	MaxRecentLimit     = 100
)

type PostRepository interface {
	List(ctx context.Context) ([]models.Post, error)
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	Create(ctx context.Context, userID int64, title, content string) (*models.Post, error)
	Update(ctx context.Context, id int64, ch store.PostChanges) (*models.Post, error)
	Delete(ctx context.Context, id int64) error
	SearchByTitle(ctx context.Context, title string) ([]models.Post, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Post, error)
	Recent(ctx context.Context, limit int) ([]models.Post, error)
	CountByUser(ctx context.Context, userID int64) (int64, error)
}

// UserLookup is the part of the user store posts need to check authors.
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

type CreatePostRequest struct {
	Title   string `json:"title" validate:"required,min=3,max=255"`
	Content string `json:"content" validate:"required,min=10"`
	UserID  int64  `json:"user_id" validate:"required,gt=0"`
}

// UpdatePostRequest accepts user_id for validation only; posts keep their
// author.
type UpdatePostRequest struct {
	Title   *string `json:"title" validate:"omitempty,min=3,max=255"`
	Content *string `json:"content" validate:"omitempty,min=10"`
	UserID  *int64  `json:"user_id" validate:"omitempty,gt=0"`
}

type PostService struct {
	posts PostRepository
	users UserLookup
}

func NewPostService(posts PostRepository, users UserLookup) *PostService {
	return &PostService{posts: posts, users: users}
}

func (s *PostService) GetAll(ctx context.Context) ([]models.Post, error) {
	return s.posts.List(ctx)
}

func (s *PostService) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	p, err := s.posts.GetByID(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrPostNotFound
	}
	return p, err
}

func (s *PostService) Create(ctx context.Context, req CreatePostRequest) (*models.Post, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Content = strings.TrimSpace(req.Content)
	if err := check(req); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByID(ctx, req.UserID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrUnknownAuthor
		}
		return nil, err
	}

	p, err := s.posts.Create(ctx, req.UserID, req.Title, req.Content)
	if errors.Is(err, db.ErrForeignKeyViolation) {
		return nil, ErrUnknownAuthor
	}
	return p, err
}

func (s *PostService) Update(ctx context.Context, id int64, req UpdatePostRequest) (*models.Post, error) {
	req.Title = blankToNil(req.Title)
	req.Content = blankToNil(req.Content)
	if req.UserID != nil && *req.UserID == 0 {
		req.UserID = nil
	}
	if err := check(req); err != nil {
		return nil, err
	}

	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}

	if req.Title == nil && req.Content == nil {
		return nil, ErrNothingToApply
	}

	p, err := s.posts.Update(ctx, id, store.PostChanges{Title: req.Title, Content: req.Content})
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrPostNotFound
	}
	return p, err
}

func (s *PostService) Delete(ctx context.Context, id int64) error {
	err := s.posts.Delete(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return ErrPostNotFound
	}
	return err
}

func (s *PostService) SearchByTitle(ctx context.Context, title string) ([]models.Post, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	return s.posts.SearchByTitle(ctx, title)
}

// ListByUser returns the posts written by userID, failing when the user
// does not exist.
func (s *PostService) ListByUser(ctx context.Context, userID int64) ([]models.Post, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.posts.ListByUser(ctx, userID)
}

// Recent clamps limit into [1, MaxRecentLimit], using DefaultRecentLimit
// when it is not positive.
func (s *PostService) Recent(ctx context.Context, limit int) ([]models.Post, error) {
	switch {
	case limit <= 0:
		limit = DefaultRecentLimit
	case limit > MaxRecentLimit:
		limit = MaxRecentLimit
	}
	return s.posts.Recent(ctx, limit)
}

func (s *PostService) CountByUser(ctx context.Context, userID int64) (int64, error) {
	return s.posts.CountByUser(ctx, userID)
}
