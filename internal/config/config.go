package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"tally/internal/log"
)

// Report output formats
const (
	OutputText = "text"
	OutputPDF  = "pdf"
	OutputXLSX = "xlsx"
)

var validOutputs = []string{OutputText, OutputPDF, OutputXLSX}

type Config struct {
	// Database
	DBPath string

	// Statement ingestion
	MappingsFile string
	TagRulesFile string

	// Report
	LogoPath     string
	ReportOutput string

	LogLevel string
}

func Load() *Config {
	return &Config{
		DBPath: getEnv("TALLY_DB_PATH", DefaultDBPath()),

		MappingsFile: getEnv("TALLY_MAPPINGS_FILE", ""),
		TagRulesFile: getEnv("TALLY_TAG_RULES_FILE", ""),

		LogoPath:     getEnv("TALLY_LOGO_PATH", "logo.png"),
		ReportOutput: getEnv("TALLY_REPORT_OUTPUT", OutputText),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// DefaultDBPath is ~/.local/share/tally/tally.db, or tally.db in the working
// directory when there is no home directory.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "tally.db"
	}
	return filepath.Join(home, ".local", "share", "tally", "tally.db")
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if c.DBPath == "" {
		errors = append(errors, "database path cannot be empty")
	} else {
		// Check if directory exists or can be created
		dir := filepath.Dir(c.DBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if !slices.Contains(validOutputs, c.ReportOutput) {
		errors = append(errors, fmt.Sprintf("invalid report output '%s': must be one of %v", c.ReportOutput, validOutputs))
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	// Optional files must exist when named
	for _, f := range []struct{ name, path string }{
		{"mappings file", c.MappingsFile},
		{"tag rules file", c.TagRulesFile},
	} {
		if f.path == "" {
			continue
		}
		if _, err := os.Stat(f.path); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("%s does not exist: %s", f.name, f.path))
		}
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
