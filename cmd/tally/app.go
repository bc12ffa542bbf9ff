package main

import (
	"flag"
	"fmt"
	"io"

	"tally/internal/cli"
	"tally/internal/config"
	"tally/internal/log"
	"tally/internal/storage"
)

type app struct {
	stdout io.Writer
	stderr io.Writer
}

// commonFlags are accepted by every command.
type commonFlags struct {
	db string
}

func (a *app) flagSet(name string, common *commonFlags) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.StringVar(&common.db, "db", "", "path to the database file (default $TALLY_DB_PATH)")
	return fs
}

// env is the per-command environment: validated config, logger and an open
// store.
type env struct {
	cfg    *config.Config
	logger *log.Logger
	db     *storage.DB
}

// setup loads configuration with flag overrides applied, configures logging
// and opens the store. The caller must defer env.close.
func (a *app) setup(common commonFlags, overrides ...func(*config.Config)) (*env, error) {
	overrides = append(overrides, func(c *config.Config) {
		if common.db != "" {
			c.DBPath = common.db
		}
	})
	cfg, err := cli.LoadAndValidateConfig(overrides...)
	if err != nil {
		return nil, err
	}
	logger := cli.SetupLogger(a.stderr, cfg.LogLevel)

	db, err := cli.OpenStore(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	logger.WithComponent(log.ComponentStorage).Debug("Database opened", log.FieldPath, db.Path())
	return &env{cfg: cfg, logger: logger, db: db}, nil
}

func (e *env) close() {
	if err := e.db.Close(); err != nil {
		e.logger.WithComponent(log.ComponentStorage).Warn("Failed to close database", log.FieldError, err)
	}
}

func requireArgs(fs *flag.FlagSet, n int, names string) ([]string, error) {
	if fs.NArg() != n {
		return nil, fmt.Errorf("%w: %s expects %s", errUsage, fs.Name(), names)
	}
	return fs.Args(), nil
}
