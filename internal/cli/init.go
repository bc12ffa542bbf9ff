// Package cli provides common CLI initialization utilities shared by the
// tally subcommands.
package cli

import (
	"fmt"
	"io"

	"github.com/joho/godotenv"

	"tally/internal/config"
	"tally/internal/log"
	"tally/internal/mapping"
	"tally/internal/storage"
	"tally/internal/tagging"
)

// SetupLogger initializes structured logging on w at the configured level
// and sets it as the default logger.
func SetupLogger(w io.Writer, level string) *log.Logger {
	lvl, err := log.ParseLevel(level)
	cfg := log.DefaultConfig()
	cfg.Output = w
	if err == nil {
		cfg.Level = lvl
	}
	logger := log.New(cfg)
	log.SetDefault(logger)
	if err != nil {
		logger.Warn("Unknown log level, using info", "level", level)
	}
	return logger
}

// LoadEnvFile loads a .env file from the working directory when present.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration from the environment, applies
// command-line overrides in order, then validates the result.
func LoadAndValidateConfig(overrides ...func(*config.Config)) (*config.Config, error) {
	cfg := config.Load()
	for _, o := range overrides {
		o(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// OpenStore opens the record database, creating the schema when needed.
// Callers must Close it on every path.
func OpenStore(dbPath string) (*storage.DB, error) {
	db, err := storage.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", dbPath, err)
	}
	return db, nil
}

// LoadMappings returns the header mapping registry, from path when set,
// otherwise the bundled one.
func LoadMappings(path string) (*mapping.Registry, error) {
	return mapping.Load(path)
}

// LoadTagRules returns the keyword tagging rules; no path means no rules.
func LoadTagRules(path string) (*tagging.Rules, error) {
	return tagging.Load(path)
}
