package models

import "time"

// TestResult records the outcome of one finished quiz session.
type TestResult struct {
	ID             int64     `json:"id" db:"id"`
	UserID         int64     `json:"user_id" db:"user_id"`
	TotalWords     int       `json:"total_words" db:"total_words"`
	CorrectAnswers int       `json:"correct_answers" db:"correct_answers"`
	Percentage     float64   `json:"percentage" db:"percentage"`
	Passed         bool      `json:"passed" db:"passed"`
	TestDate       time.Time `json:"test_date" db:"test_date"`
}
