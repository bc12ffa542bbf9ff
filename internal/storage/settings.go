package storage

import (
	"context"
	"database/sql"
	"errors"

	"tally/internal/core"
)

// Settings is the persistent key-value config store kept next to the records.
type Settings struct {
	db *DB
}

func NewSettings(db *DB) *Settings {
	return &Settings{db: db}
}

// Get returns the value for key; ok is false when it is not set.
func (s *Settings) Get(ctx context.Context, key string) (value string, ok bool, err error) {
	const stmt = `SELECT value FROM config WHERE key = ?`
	err = s.db.db.QueryRowContext(ctx, stmt, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &core.StorageError{Statement: stmt, Err: err}
	}
	return value, true, nil
}

func (s *Settings) Set(ctx context.Context, key, value string) error {
	return s.db.Execute(ctx, `INSERT INTO config (key, value) VALUES (?, ?)
ON CONFLICT (key) DO UPDATE SET value = excluded.value`, key, value)
}

// Unset removes key. Removing a missing key is not an error.
func (s *Settings) Unset(ctx context.Context, key string) error {
	return s.db.Execute(ctx, `DELETE FROM config WHERE key = ?`, key)
}

// All returns every stored setting.
func (s *Settings) All(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.Query(ctx, `SELECT key, value FROM config`)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		k, _ := r["key"].(string)
		v, _ := r["value"].(string)
		out[k] = v
	}
	return out, nil
}
