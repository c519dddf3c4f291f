package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/vocabot/pkg/models"
)

// TestResultRepository handles database operations for test outcomes.
type TestResultRepository struct {
	db *sqlx.DB
}

// NewTestResultRepository creates a new repository instance over the given handle.
func NewTestResultRepository(db *sqlx.DB) *TestResultRepository {
	return &TestResultRepository{db: db}
}

// Create records a finished test.
func (r *TestResultRepository) Create(ctx context.Context, result *models.TestResult) error {
	query := r.db.Rebind(`
		INSERT INTO test_results (user_id, total_words, correct_answers, percentage, passed, test_date)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	_, err := r.db.ExecContext(ctx, query,
		result.UserID,
		result.TotalWords,
		result.CorrectAnswers,
		result.Percentage,
		result.Passed,
		result.TestDate,
	)
	if err != nil {
		return fmt.Errorf("failed to create test result: %v", err)
	}
	return nil
}

// GetLatestForUser returns the user's most recent test result, or nil when the
// user has never finished a test.
func (r *TestResultRepository) GetLatestForUser(ctx context.Context, userID int64) (*models.TestResult, error) {
	var result models.TestResult
	query := r.db.Rebind(`
		SELECT * FROM test_results
		WHERE user_id = ?
		ORDER BY test_date DESC
		LIMIT 1
	`)
	err := r.db.GetContext(ctx, &result, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest test result: %v", err)
	}
	return &result, nil
}
