package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/vocabot/pkg/models"
)

// UserRepository handles database operations for users.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new repository instance over the given handle.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID returns a user by internal ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	query := r.db.Rebind("SELECT * FROM users WHERE id = ?")
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %v", err)
	}
	return &user, nil
}

// GetOrCreateByTelegramID returns the user for the given Telegram identity,
// creating the row on first contact.
func (r *UserRepository) GetOrCreateByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	var user models.User
	query := r.db.Rebind("SELECT * FROM users WHERE telegram_id = ?")
	err := r.db.GetContext(ctx, &user, query, telegramID)
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get user: %v", err)
	}

	insert := r.db.Rebind("INSERT INTO users (telegram_id) VALUES (?)")
	if _, err := r.db.ExecContext(ctx, insert, telegramID); err != nil {
		return nil, fmt.Errorf("failed to create user: %v", err)
	}
	if err := r.db.GetContext(ctx, &user, query, telegramID); err != nil {
		return nil, fmt.Errorf("failed to get created user: %v", err)
	}
	return &user, nil
}

// GetAll returns all users, newest first.
func (r *UserRepository) GetAll(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, "SELECT * FROM users ORDER BY created_at DESC"); err != nil {
		return nil, fmt.Errorf("failed to get users: %v", err)
	}
	return users, nil
}

// UpdateLastWordFetch records the time a word batch was delivered to the user.
func (r *UserRepository) UpdateLastWordFetch(ctx context.Context, userID int64, at time.Time) error {
	query := r.db.Rebind("UPDATE users SET last_word_fetch_date = ? WHERE id = ?")
	if _, err := r.db.ExecContext(ctx, query, at, userID); err != nil {
		return fmt.Errorf("failed to update last word fetch date: %v", err)
	}
	return nil
}

// UpdateLastTest records the time the user completed a test, pass or fail.
func (r *UserRepository) UpdateLastTest(ctx context.Context, userID int64, at time.Time) error {
	query := r.db.Rebind("UPDATE users SET last_test_date = ? WHERE id = ?")
	if _, err := r.db.ExecContext(ctx, query, at, userID); err != nil {
		return fmt.Errorf("failed to update last test date: %v", err)
	}
	return nil
}
