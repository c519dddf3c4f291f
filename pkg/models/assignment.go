package models

import "time"

// Assignment binds a word to a user's current learning cycle and carries the
// attempt counters the test outcome is computed from. Unique per
// (user_id, word_id). Re-assigning a word in a new batch overwrites the row:
// counters and the learned flag reset, date_assigned is refreshed.
type Assignment struct {
	ID              int64      `json:"id" db:"id"`
	UserID          int64      `json:"user_id" db:"user_id"`
	WordID          int64      `json:"word_id" db:"word_id"`
	IsLearned       bool       `json:"is_learned" db:"is_learned"`
	CorrectAttempts int        `json:"correct_attempts" db:"correct_attempts"`
	TotalAttempts   int        `json:"total_attempts" db:"total_attempts"`
	LastAttemptDate *time.Time `json:"last_attempt_date" db:"last_attempt_date"`
	DateAssigned    time.Time  `json:"date_assigned" db:"date_assigned"`
}
