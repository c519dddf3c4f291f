package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/vocabot/pkg/models"
)

// WordRepository handles database operations for the word catalog.
type WordRepository struct {
	db *sqlx.DB
}

// NewWordRepository creates a new repository instance over the given handle.
func NewWordRepository(db *sqlx.DB) *WordRepository {
	return &WordRepository{db: db}
}

// GetByID returns a word by ID.
func (r *WordRepository) GetByID(ctx context.Context, id int64) (*models.Word, error) {
	var word models.Word
	query := r.db.Rebind("SELECT * FROM words WHERE id = ?")
	if err := r.db.GetContext(ctx, &word, query, id); err != nil {
		return nil, fmt.Errorf("failed to get word by ID: %v", err)
	}
	return &word, nil
}

// Count returns the total number of words in the catalog.
func (r *WordRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM words"); err != nil {
		return 0, fmt.Errorf("failed to count words: %v", err)
	}
	return count, nil
}

// CreateIfAbsent inserts a word unless one with the same english_word already
// exists. Returns true when a row was inserted.
func (r *WordRepository) CreateIfAbsent(ctx context.Context, word *models.Word) (bool, error) {
	query := r.db.Rebind(`
		INSERT INTO words (english_word, translation, audio_url)
		VALUES (?, ?, ?)
		ON CONFLICT (english_word) DO NOTHING
	`)
	res, err := r.db.ExecContext(ctx, query, word.EnglishWord, word.Translation, word.AudioURL)
	if err != nil {
		return false, fmt.Errorf("failed to create word: %v", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %v", err)
	}
	return n > 0, nil
}

// GetRandomUnassigned returns up to limit words that have never been assigned
// to the user, in uniformly random order.
func (r *WordRepository) GetRandomUnassigned(ctx context.Context, userID int64, limit int) ([]models.Word, error) {
	var words []models.Word
	query := r.db.Rebind(`
		SELECT * FROM words
		WHERE id NOT IN (SELECT word_id FROM user_words WHERE user_id = ?)
		ORDER BY RANDOM()
		LIMIT ?
	`)
	if err := r.db.SelectContext(ctx, &words, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to get unassigned words: %v", err)
	}
	return words, nil
}

// GetRandomUnlearnedAssigned returns up to limit of the user's assigned but
// not yet learned words, in uniformly random order.
func (r *WordRepository) GetRandomUnlearnedAssigned(ctx context.Context, userID int64, limit int) ([]models.Word, error) {
	var words []models.Word
	query := r.db.Rebind(`
		SELECT w.* FROM words w
		JOIN user_words uw ON w.id = uw.word_id
		WHERE uw.user_id = ? AND uw.is_learned = FALSE
		ORDER BY RANDOM()
		LIMIT ?
	`)
	if err := r.db.SelectContext(ctx, &words, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to get unlearned words: %v", err)
	}
	return words, nil
}

// GetRandomDistractors returns up to count random words excluding the given
// word id. Fewer rows come back when the catalog is too small.
func (r *WordRepository) GetRandomDistractors(ctx context.Context, excludeWordID int64, count int) ([]models.Word, error) {
	var words []models.Word
	query := r.db.Rebind(`
		SELECT * FROM words
		WHERE id != ?
		ORDER BY RANDOM()
		LIMIT ?
	`)
	err := r.db.SelectContext(ctx, &words, query, excludeWordID, count)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get distractor words: %v", err)
	}
	return words, nil
}
