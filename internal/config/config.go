package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Default values matching the original deployment.
const (
	DefaultWordsPerDay    = 50
	DefaultPassPercentage = 92
	DefaultOptionsCount   = 3
)

// Config holds the application configuration, loaded from environment
// variables (optionally via a .env file).
type Config struct {
	TelegramToken string
	DBDriver      string // "sqlite3" or "postgres"
	DBURL         string // DSN; for sqlite3 this is the database file path
	AudioDir      string

	WordsPerDay      int     // batch size delivered per day
	PassPercentage   float64 // minimal percentage to pass a test
	OptionsCount     int     // answer options per question, correct one included
	SchedulerEnabled bool    // hourly reminder job
}

// Load reads the configuration from the environment. A .env file in the
// working directory is honored when present.
func Load() (*Config, error) {
	// Missing .env is fine, real environments set variables directly
	_ = godotenv.Load()

	cfg := &Config{
		TelegramToken:    os.Getenv("TELEGRAM_BOT_TOKEN"),
		DBDriver:         getEnv("DB_DRIVER", "sqlite3"),
		DBURL:            getEnv("DB_URL", "data/vocabot.db"),
		AudioDir:         getEnv("AUDIO_DIR", "audio_cache"),
		WordsPerDay:      getEnvInt("WORDS_PER_DAY", DefaultWordsPerDay),
		PassPercentage:   getEnvFloat("PASS_PERCENTAGE", DefaultPassPercentage),
		OptionsCount:     getEnvInt("TEST_OPTIONS_COUNT", DefaultOptionsCount),
		SchedulerEnabled: os.Getenv("ENABLE_SCHEDULER") != "false",
	}

	if cfg.WordsPerDay <= 0 {
		return nil, fmt.Errorf("WORDS_PER_DAY must be positive, got %d", cfg.WordsPerDay)
	}
	if cfg.PassPercentage <= 0 || cfg.PassPercentage > 100 {
		return nil, fmt.Errorf("PASS_PERCENTAGE must be in (0, 100], got %v", cfg.PassPercentage)
	}
	// A single option would make every question answer itself
	if cfg.OptionsCount < 2 {
		return nil, fmt.Errorf("TEST_OPTIONS_COUNT must be at least 2, got %d", cfg.OptionsCount)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
