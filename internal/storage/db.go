// Package storage is the SQLite-backed record store and the generic
// execute/query service the CLI exposes.
//
// Every failure leaving this package is a *core.StorageError carrying the
// statement that failed.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"tally/internal/core"

	_ "modernc.org/sqlite"
)

// Row is one result row keyed by column name.
type Row map[string]any

// DB is a scoped connection to the record database.
type DB struct {
	db   *sql.DB
	path string
}

// Open creates the database file if needed, checks the connection and
// applies the schema.
func Open(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, &core.StorageError{Statement: "open " + dbPath, Err: err}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &core.StorageError{Statement: "ping " + dbPath, Err: err}
	}

	if _, err := ensureSchema(dbPath); err != nil {
		db.Close()
		return nil, &core.StorageError{Statement: "migrate " + dbPath, Err: err}
	}

	return &DB{db: db, path: dbPath}, nil
}

func (d *DB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// Path returns the database file path.
func (d *DB) Path() string {
	return d.path
}

// Execute runs a statement that returns no rows.
func (d *DB) Execute(ctx context.Context, stmt string, args ...any) error {
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return &core.StorageError{Statement: stmt, Err: err}
	}
	return nil
}

// Query runs a statement and returns every row as a column map.
func (d *DB) Query(ctx context.Context, stmt string, args ...any) ([]Row, error) {
	rows, err := d.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, &core.StorageError{Statement: stmt, Err: err}
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, &core.StorageError{Statement: stmt, Err: err}
	}

	out := []Row{}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &core.StorageError{Statement: stmt, Err: err}
		}
		row := make(Row, len(cols))
		for i, c := range cols {
			if b, ok := values[i].([]byte); ok {
				row[c] = string(b)
			} else {
				row[c] = values[i]
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &core.StorageError{Statement: stmt, Err: err}
	}
	return out, nil
}

// ExecuteFile runs every statement in a SQL script.
func (d *DB) ExecuteFile(ctx context.Context, path string) error {
	stmt, err := readScript(path)
	if err != nil {
		return err
	}
	slog.DebugContext(ctx, "Executing SQL file", "path", path)
	return d.Execute(ctx, stmt)
}

// QueryFile runs the query in a SQL file.
func (d *DB) QueryFile(ctx context.Context, path string) ([]Row, error) {
	stmt, err := readScript(path)
	if err != nil {
		return nil, err
	}
	slog.DebugContext(ctx, "Running SQL file", "path", path)
	return d.Query(ctx, stmt)
}

// WithTx runs fn inside a transaction, committing when it returns nil.
func (d *DB) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return &core.StorageError{Statement: "BEGIN", Err: err}
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return &core.StorageError{Statement: "COMMIT", Err: err}
	}
	return nil
}

func readScript(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", &core.StorageError{Statement: "read SQL file " + path, Err: err}
	}
	return string(b), nil
}
