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

// ErrAssignmentNotFound is returned when a (user, word) pair has no
// assignment row.
var ErrAssignmentNotFound = errors.New("assignment not found")

// AssignmentRepository handles database operations for per-user word progress.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository creates a new repository instance over the given handle.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Assign binds a word to the user's current learning cycle. The upsert is a
// single statement: a pre-existing row is overwritten with reset counters, a
// cleared learned flag and a fresh date_assigned.
func (r *AssignmentRepository) Assign(ctx context.Context, userID, wordID int64, assignedAt time.Time) error {
	query := r.db.Rebind(`
		INSERT INTO user_words (user_id, word_id, date_assigned)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id, word_id) DO UPDATE SET
			date_assigned = excluded.date_assigned,
			is_learned = FALSE,
			correct_attempts = 0,
			total_attempts = 0
	`)
	if _, err := r.db.ExecContext(ctx, query, userID, wordID, assignedAt); err != nil {
		return fmt.Errorf("failed to assign word: %v", err)
	}
	return nil
}

// GetByUserAndWord returns the assignment for a (user, word) pair.
func (r *AssignmentRepository) GetByUserAndWord(ctx context.Context, userID, wordID int64) (*models.Assignment, error) {
	var a models.Assignment
	query := r.db.Rebind("SELECT * FROM user_words WHERE user_id = ? AND word_id = ?")
	err := r.db.GetContext(ctx, &a, query, userID, wordID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAssignmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment: %v", err)
	}
	return &a, nil
}

// RecordAttempt increments the attempt counters for one answer as a single
// atomic update: total_attempts always, correct_attempts only for a correct
// answer. Returns ErrAssignmentNotFound when the pair was never assigned.
func (r *AssignmentRepository) RecordAttempt(ctx context.Context, userID, wordID int64, correct bool, at time.Time) error {
	var query string
	if correct {
		query = `
			UPDATE user_words SET
				correct_attempts = correct_attempts + 1,
				total_attempts = total_attempts + 1,
				last_attempt_date = ?
			WHERE user_id = ? AND word_id = ?
		`
	} else {
		query = `
			UPDATE user_words SET
				total_attempts = total_attempts + 1,
				last_attempt_date = ?
			WHERE user_id = ? AND word_id = ?
		`
	}
	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), at, userID, wordID)
	if err != nil {
		return fmt.Errorf("failed to record attempt: %v", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %v", err)
	}
	if n == 0 {
		return ErrAssignmentNotFound
	}
	return nil
}

// SumAttempts returns the all-time correct and total attempt sums across the
// given words for the user.
func (r *AssignmentRepository) SumAttempts(ctx context.Context, userID int64, wordIDs []int64) (correct, total int, err error) {
	if len(wordIDs) == 0 {
		return 0, 0, nil
	}
	query, args, err := sqlx.In(`
		SELECT COALESCE(SUM(correct_attempts), 0), COALESCE(SUM(total_attempts), 0)
		FROM user_words
		WHERE user_id = ? AND word_id IN (?)
	`, userID, wordIDs)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to build attempts query: %v", err)
	}
	row := r.db.QueryRowContext(ctx, r.db.Rebind(query), args...)
	if err := row.Scan(&correct, &total); err != nil {
		return 0, 0, fmt.Errorf("failed to sum attempts: %v", err)
	}
	return correct, total, nil
}

// MarkLearned flips the learned flag for the given words of the user.
func (r *AssignmentRepository) MarkLearned(ctx context.Context, userID int64, wordIDs []int64) error {
	if len(wordIDs) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`
		UPDATE user_words SET is_learned = TRUE
		WHERE user_id = ? AND word_id IN (?)
	`, userID, wordIDs)
	if err != nil {
		return fmt.Errorf("failed to build mark learned query: %v", err)
	}
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to mark words learned: %v", err)
	}
	return nil
}

// GetTestEligible returns the user's unlearned words assigned within the
// given window, newest first, capped at limit, each joined with its attempt
// counters.
func (r *AssignmentRepository) GetTestEligible(ctx context.Context, userID int64, since time.Time, limit int) ([]models.TestWord, error) {
	var words []models.TestWord
	query := r.db.Rebind(`
		SELECT w.id, w.english_word, w.translation, w.audio_url, w.created_at,
		       uw.correct_attempts, uw.total_attempts
		FROM words w
		JOIN user_words uw ON w.id = uw.word_id
		WHERE uw.user_id = ? AND uw.is_learned = FALSE AND uw.date_assigned >= ?
		ORDER BY uw.date_assigned DESC
		LIMIT ?
	`)
	if err := r.db.SelectContext(ctx, &words, query, userID, since, limit); err != nil {
		return nil, fmt.Errorf("failed to get test eligible words: %v", err)
	}
	return words, nil
}

// CountLearned returns how many words the user has learned so far.
func (r *AssignmentRepository) CountLearned(ctx context.Context, userID int64) (int, error) {
	var count int
	query := r.db.Rebind("SELECT COUNT(*) FROM user_words WHERE user_id = ? AND is_learned = TRUE")
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("failed to count learned words: %v", err)
	}
	return count, nil
}
