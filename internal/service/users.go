package service

import (
	"context"
	"errors"
	"strings"

	"github.com/vagkalosynakis/attributes/internal/db"
	"github.com/vagkalosynakis/attributes/internal/models"
	"github.com/vagkalosynakis/attributes/internal/store"
)

type UserRepository interface {
	List(ctx context.Context) ([]models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, name, email string) (*models.User, error)
	Update(ctx context.Context, id int64, ch store.UserChanges) (*models.User, error)
	Delete(ctx context.Context, id int64) error
	SearchByName(ctx context.Context, name string) ([]models.User, error)
	ListWithPostCount(ctx context.Context) ([]models.UserWithPostCount, error)
}

type CreateUserRequest struct {
	Name  string `json:"name" validate:"required,min=2,max=100"`
	Email string `json:"email" validate:"required,email"`
}

type UpdateUserRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=2,max=100"`
	Email *string `json:"email" validate:"omitempty,email"`
}

type UserService struct {
	users UserRepository
}

func NewUserService(users UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) GetAll(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// GetByEmail returns nil without error when nobody has the address.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, db.ErrNotFound) {
		return nil, nil
	}
	return u, err
}

func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := check(req); err != nil {
		return nil, err
	}

	existing, err := s.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	u, err := s.users.Create(ctx, req.Name, req.Email)
	if errors.Is(err, db.ErrDuplicateKey) {
		return nil, ErrEmailExists
	}
	return u, err
}

// Update changes the non-empty fields of req. Empty fields are ignored, and
// a request with nothing left to apply is rejected.
func (s *UserService) Update(ctx context.Context, id int64, req UpdateUserRequest) (*models.User, error) {
	req.Name = blankToNil(req.Name)
	req.Email = blankToNil(req.Email)
	if err := check(req); err != nil {
		return nil, err
	}

	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}

	if req.Name == nil && req.Email == nil {
		return nil, ErrNothingToApply
	}

	if req.Email != nil {
		other, err := s.GetByEmail(ctx, *req.Email)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != id {
			return nil, ErrEmailExists
		}
	}

	u, err := s.users.Update(ctx, id, store.UserChanges{Name: req.Name, Email: req.Email})
	switch {
	case errors.Is(err, db.ErrNotFound):
		return nil, ErrUserNotFound
	case errors.Is(err, db.ErrDuplicateKey):
		return nil, ErrEmailExists
	}
	return u, err
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	err := s.users.Delete(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

func (s *UserService) SearchByName(ctx context.Context, name string) ([]models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	return s.users.SearchByName(ctx, name)
}

func (s *UserService) ListWithPostCount(ctx context.Context) ([]models.UserWithPostCount, error) {
	return s.users.ListWithPostCount(ctx)
}

type TokenRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// Authenticate resolves the user a token is being issued for.
func (s *UserService) Authenticate(ctx context.Context, req TokenRequest) (*models.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := check(req); err != nil {
		return nil, err
	}

	u, err := s.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}
