package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Connect opens a database connection for the given driver ("sqlite3" or
// "postgres") and makes sure the schema exists. The returned handle is passed
// explicitly into each repository; there is no package-level connection.
func Connect(driver, dsn string) (*sqlx.DB, error) {
	if driver == "sqlite3" {
		if dir := filepath.Dir(dsn); dir != "" && dir != "." && dir != ":" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %v", err)
			}
		}
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	if driver == "sqlite3" {
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %v", err)
		}
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// initializeSchema creates necessary tables if they don't exist.
func initializeSchema(db *sqlx.DB) error {
	idColumn := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if db.DriverName() == "postgres" {
		idColumn = "SERIAL PRIMARY KEY"
	}

	statements := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS words (
				id %s,
				english_word TEXT NOT NULL UNIQUE,
				translation TEXT NOT NULL,
				audio_url TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`, idColumn),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS users (
				id %s,
				telegram_id BIGINT NOT NULL UNIQUE,
				last_word_fetch_date TIMESTAMP DEFAULT NULL,
				last_test_date TIMESTAMP DEFAULT NULL,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`, idColumn),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS user_words (
				id %s,
				user_id INTEGER NOT NULL REFERENCES users(id),
				word_id INTEGER NOT NULL REFERENCES words(id),
				is_learned BOOLEAN NOT NULL DEFAULT FALSE,
				correct_attempts INTEGER NOT NULL DEFAULT 0,
				total_attempts INTEGER NOT NULL DEFAULT 0,
				last_attempt_date TIMESTAMP DEFAULT NULL,
				date_assigned TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				UNIQUE (user_id, word_id)
			)`, idColumn),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS test_results (
				id %s,
				user_id INTEGER NOT NULL REFERENCES users(id),
				total_words INTEGER NOT NULL,
				correct_answers INTEGER NOT NULL,
				percentage REAL NOT NULL,
				passed BOOLEAN NOT NULL,
				test_date TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`, idColumn),
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %v", err)
		}
	}

	return nil
}
