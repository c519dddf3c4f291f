package models

import "time"

// User represents a learner, one per Telegram identity. A user is created on
// first contact; the two timestamps are touched only after a successful batch
// delivery or a completed test.
type User struct {
	ID                int64      `json:"id" db:"id"`
	TelegramID        int64      `json:"telegram_id" db:"telegram_id"`
	LastWordFetchDate *time.Time `json:"last_word_fetch_date" db:"last_word_fetch_date"`
	LastTestDate      *time.Time `json:"last_test_date" db:"last_test_date"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
}
