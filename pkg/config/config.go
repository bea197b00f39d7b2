// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// Config holds the environment-derived settings. Command line flags
// override these.
type Config struct {
	// DictDir is the directory holding the name dictionaries.
	DictDir string
	// DSN is the PostgreSQL connection string. Empty selects the
	// in-memory store.
	DSN string
	// ClassifierURL is the zero-shot inference endpoint. Empty keeps
	// the built-in default.
	ClassifierURL string
	// ClassifierToken is the inference API bearer token.
	ClassifierToken string
}

// Load reads .env if present, then the environment. A missing .env is
// not an error.
func Load(logger *slog.Logger) (*Config, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		logger.Debug("no .env file found")
	}

	cfg := &Config{
		DictDir:         os.Getenv("MAILTRACE_DICT_DIR"),
		DSN:             os.Getenv("MAILTRACE_DSN"),
		ClassifierURL:   os.Getenv("MAILTRACE_CLASSIFIER_URL"),
		ClassifierToken: os.Getenv("MAILTRACE_CLASSIFIER_TOKEN"),
	}
	if cfg.DictDir == "" {
		cfg.DictDir = "dictionaries"
	}
	if cfg.ClassifierToken == "" {
		// The token name the hosted inference ecosystem uses.
		cfg.ClassifierToken = os.Getenv("HF_TOKEN")
	}
	return cfg, nil
}
