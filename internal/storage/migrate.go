package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var schemaFS embed.FS

// connPragmas apply to every pooled connection; record_tag relies on
// foreign keys for its cascade.
const connPragmas = "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

func dsn(dbPath string) string {
	return dbPath + connPragmas
}

// ensureSchema brings the record database to the embedded schema version
// and returns that version. Applying it to an up-to-date file is a no-op.
// The migrate driver owns and closes its own connection.
func ensureSchema(dbPath string) (version uint, err error) {
	conn, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return 0, fmt.Errorf("open schema connection: %w", err)
	}

	driver, err := sqlite.WithInstance(conn, &sqlite.Config{})
	if err != nil {
		conn.Close()
		return 0, fmt.Errorf("schema driver: %w", err)
	}
	src, err := iofs.New(schemaFS, "migrations")
	if err != nil {
		driver.Close()
		return 0, fmt.Errorf("schema source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		driver.Close()
		return 0, fmt.Errorf("schema runner: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if err == nil {
			err = errors.Join(srcErr, dbErr)
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("apply schema: %w", err)
	}
	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("schema version %d is dirty", version)
	}
	slog.Debug("Schema ready", "path", dbPath, "version", version)
	return version, nil
}
