package models

import "time"

// Word represents a catalog entry to be learned. Entries are created by
// ingestion and never mutated afterwards.
type Word struct {
	ID          int64     `json:"id" db:"id"`
	EnglishWord string    `json:"english_word" db:"english_word"`
	Translation string    `json:"translation" db:"translation"`
	AudioURL    string    `json:"audio_url" db:"audio_url"` // Optional: reference to a pronunciation audio file
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// TestWord is a word joined with the learner's attempt counters, as served
// to a quiz session.
type TestWord struct {
	Word
	CorrectAttempts int `json:"correct_attempts" db:"correct_attempts"`
	TotalAttempts   int `json:"total_attempts" db:"total_attempts"`
}
