package store

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vagkalosynakis/attributes/internal/db"
	"github.com/vagkalosynakis/attributes/internal/models"
)

func seedAuthor(t *testing.T, s *UserStore, name, email string) *models.User {
	t.Helper()
	u, err := s.Create(context.Background(), name, email)
	require.NoError(t, err)
	return u
}

func TestPostStoreCRUD(t *testing.T) {
	forEachDialect(t, func(t *testing.T, conn *sqlx.DB) {
		users := NewUserStore(conn)
		s := NewPostStore(conn)
		ctx := context.Background()

		author := seedAuthor(t, users, "Jane Smith", "jane@example.com")

		p, err := s.Create(ctx, author.ID, "First post", "Hello there, world")
		require.NoError(t, err)
		assert.NotZero(t, p.ID)
		assert.Equal(t, author.ID, p.UserID)

		got, err := s.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "First post", got.Title)

		updated, err := s.Update(ctx, p.ID, PostChanges{Content: strPtr("Rewritten content")})
		require.NoError(t, err)
		assert.Equal(t, "First post", updated.Title)
		assert.Equal(t, "Rewritten content", updated.Content)

		_, err = s.Update(ctx, 999, PostChanges{Title: strPtr("Nope")})
		assert.ErrorIs(t, err, db.ErrNotFound)

		require.NoError(t, s.Delete(ctx, p.ID))
		assert.ErrorIs(t, s.Delete(ctx, p.ID), db.ErrNotFound)
	})
}

func TestPostStoreCreateUnknownAuthor(t *testing.T) {
	forEachDialect(t, func(t *testing.T, conn *sqlx.DB) {
		s := NewPostStore(conn)

		_, err := s.Create(context.Background(), 42, "Orphan", "Nobody wrote this")
		assert.ErrorIs(t, err, db.ErrForeignKeyViolation)
	})
}

func TestPostStoreQueries(t *testing.T) {
	forEachDialect(t, func(t *testing.T, conn *sqlx.DB) {
		users := NewUserStore(conn)
		s := NewPostStore(conn)
		ctx := context.Background()

		jane := seedAuthor(t, users, "Jane Smith", "jane@example.com")
		bob := seedAuthor(t, users, "Bob Johnson", "bob@example.com")

		for _, title := range []string{"Getting Started", "Tips and Tricks", "Weekly Update"} {
			_, err := s.Create(ctx, jane.ID, title, "Some content for "+title)
			require.NoError(t, err)
		}
		_, err := s.Create(ctx, bob.ID, "Feature Request", "Ideas for new features")
		require.NoError(t, err)

		all, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 4)
		for _, p := range all {
			require.NotNil(t, p.UserName)
			require.NotNil(t, p.UserEmail)
		}

		found, err := s.SearchByTitle(ctx, "tricks")
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "Tips and Tricks", found[0].Title)
		assert.Equal(t, "Jane Smith", *found[0].UserName)

		byJane, err := s.ListByUser(ctx, jane.ID)
		require.NoError(t, err)
		assert.Len(t, byJane, 3)

		n, err := s.CountByUser(ctx, bob.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		recent, err := s.Recent(ctx, 2)
		require.NoError(t, err)
		assert.Len(t, recent, 2)
	})
}

func TestDeletingUserRemovesPosts(t *testing.T) {
	forEachDialect(t, func(t *testing.T, conn *sqlx.DB) {
		users := NewUserStore(conn)
		s := NewPostStore(conn)
		ctx := context.Background()

		author := seedAuthor(t, users, "Charlie Wilson", "charlie@example.com")
		p, err := s.Create(ctx, author.ID, "Project Showcase", "Check out this project")
		require.NoError(t, err)

		require.NoError(t, users.Delete(ctx, author.ID))

		_, err = s.GetByID(ctx, p.ID)
		assert.ErrorIs(t, err, db.ErrNotFound)
	})
}
