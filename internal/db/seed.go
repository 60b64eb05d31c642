package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

var sampleUsers = []struct{ Name, Email string }{
	{"John Doe", "john@example.com"},
	{"Jane Smith", "jane@example.com"},
	{"Bob Johnson", "bob@example.com"},
	{"Alice Brown", "alice@example.com"},
	{"Charlie Wilson", "charlie@example.com"},
}

// sample posts reference sampleUsers by position
var samplePosts = []struct {
	User           int
	Title, Content string
}{
	{0, "Welcome to Our Platform", "This is the first post on our platform. Welcome everyone!"},
	{0, "Getting Started Guide", "Here's how to get started with our amazing features."},
	{1, "My First Experience", "I just joined and I'm loving it already!"},
	{1, "Tips and Tricks", "Here are some useful tips I've discovered."},
	{2, "Community Guidelines", "Let's keep our community friendly and respectful."},
	{2, "Feature Request", "I have some ideas for new features we could add."},
	{3, "Success Story", "How this platform helped me achieve my goals."},
	{3, "Weekly Update", "Here's what I've been working on this week."},
	{4, "Technical Discussion", "Let's talk about the latest technology trends."},
	{4, "Project Showcase", "Check out this amazing project I've been working on!"},
}

// Seed inserts the sample users and posts when the users table is empty.
// It reports whether anything was written.
func Seed(ctx context.Context, db *sqlx.DB) (bool, error) {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`); err != nil {
		return false, fmt.Errorf("db: seed count: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("db: seed begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	insertUser := tx.Rebind(`INSERT INTO users (name, email, created_at, updated_at) VALUES (?, ?, ?, ?) RETURNING id`)
	insertPost := tx.Rebind(`INSERT INTO posts (user_id, title, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`)

	ids := make([]int64, len(sampleUsers))
	for i, u := range sampleUsers {
		if err := tx.QueryRowxContext(ctx, insertUser, u.Name, u.Email, now, now).Scan(&ids[i]); err != nil {
			return false, fmt.Errorf("db: seed user %s: %w", u.Email, err)
		}
	}
	for _, p := range samplePosts {
		if _, err := tx.ExecContext(ctx, insertPost, ids[p.User], p.Title, p.Content, now, now); err != nil {
			return false, fmt.Errorf("db: seed post %q: %w", p.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("db: seed commit: %w", err)
	}
	return true, nil
}
