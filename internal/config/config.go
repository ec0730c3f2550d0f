package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds the application's configuration.
type Config struct {
	DBPath        string
	MatchTimeout  time.Duration
	MaxMatches    int
	RetentionRuns int
	Debug         bool
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() *Config {
	cfg := &Config{
		DBPath:        os.Getenv("REXT_DB_PATH"),
		MatchTimeout:  2 * time.Second, // Default value
		MaxMatches:    10000,           // Default value
		RetentionRuns: 200,             // Default value
	}

	if cfg.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		cfg.DBPath = filepath.Join(home, ".rext", "history.db")
	}

	if timeoutStr := os.Getenv("REXT_MATCH_TIMEOUT_MS"); timeoutStr != "" {
		if ms, err := strconv.Atoi(timeoutStr); err == nil && ms > 0 {
			cfg.MatchTimeout = time.Duration(ms) * time.Millisecond
		}
	}

	if maxStr := os.Getenv("REXT_MAX_MATCHES"); maxStr != "" {
		if max, err := strconv.Atoi(maxStr); err == nil && max > 0 {
			cfg.MaxMatches = max
		}
	}

	if retentionStr := os.Getenv("REXT_DB_RETENTION_RUNS"); retentionStr != "" {
		if retention, err := strconv.Atoi(retentionStr); err == nil && retention >= 0 {
			cfg.RetentionRuns = retention
		}
	}

	if debugStr := os.Getenv("REXT_DEBUG"); debugStr != "" {
		if debug, err := strconv.ParseBool(debugStr); err == nil {
			cfg.Debug = debug
		}
	}

	return cfg
}
