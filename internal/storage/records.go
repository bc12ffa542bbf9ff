package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"tally/internal/core"
)

var ErrRecordNotFound = errors.New("record not found")

const (
	upsertRecordSQL = `INSERT INTO record (id, date, record_type, amount_cents, description, source_file)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    date = excluded.date,
    record_type = excluded.record_type,
    amount_cents = excluded.amount_cents,
    description = excluded.description,
    source_file = excluded.source_file`

	insertTagSQL = `INSERT INTO tag (name) VALUES (?) ON CONFLICT (name) DO NOTHING`

	linkTagSQL = `INSERT OR IGNORE INTO record_tag (record_id, tag_id)
SELECT ?, id FROM tag WHERE name = ?`

	unlinkTagSQL = `DELETE FROM record_tag
WHERE record_id = ? AND tag_id = (SELECT id FROM tag WHERE name = ?)`

	windowRecordsSQL = `SELECT id, date, record_type, amount_cents, description, source_file
FROM record WHERE date >= ? AND date <= ? ORDER BY date, id`

	windowTagsSQL = `SELECT rt.record_id, t.name
FROM record_tag rt
JOIN tag t ON t.id = rt.tag_id
JOIN record r ON r.id = rt.record_id
WHERE r.date >= ? AND r.date <= ?`

	tagCountsSQL = `SELECT t.name, COUNT(rt.record_id)
FROM tag t LEFT JOIN record_tag rt ON rt.tag_id = t.id
GROUP BY t.id ORDER BY t.name`
)

// SQLiteRepository persists canonical records and their tags.
type SQLiteRepository struct {
	db *DB
}

func NewSQLiteRepository(db *DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// TagCount is a tag name with the number of records carrying it.
type TagCount struct {
	Name    string
	Records int
}

// UpsertRecords writes records keyed by id in one transaction. A record with
// an existing id is replaced field by field; tags are only ever added.
func (r *SQLiteRepository) UpsertRecords(ctx context.Context, records []core.TaggedRecord) (int, error) {
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, rec := range records {
			if _, err := tx.ExecContext(ctx, upsertRecordSQL,
				rec.ID, rec.Date, string(rec.Type), rec.Amount.Cents, rec.Description, rec.SourceFile); err != nil {
				return &core.StorageError{Statement: upsertRecordSQL, Err: err}
			}
			for _, tag := range rec.Tags {
				if err := linkTag(ctx, tx, rec.ID, tag); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "Records saved to SQLite", "count", len(records))
	return len(records), nil
}

// CountRecords returns the number of stored records.
func (r *SQLiteRepository) CountRecords(ctx context.Context) (int, error) {
	const stmt = `SELECT COUNT(*) FROM record`
	var n int
	if err := r.db.db.QueryRowContext(ctx, stmt).Scan(&n); err != nil {
		return 0, &core.StorageError{Statement: stmt, Err: err}
	}
	return n, nil
}

// LastDate returns the latest record date. ok is false on an empty store.
func (r *SQLiteRepository) LastDate(ctx context.Context) (date string, ok bool, err error) {
	const stmt = `SELECT MAX(date) FROM record`
	var last sql.NullString
	if err := r.db.db.QueryRowContext(ctx, stmt).Scan(&last); err != nil {
		return "", false, &core.StorageError{Statement: stmt, Err: err}
	}
	if !last.Valid || last.String == "" {
		return "", false, nil
	}
	return core.TruncateDate(last.String), true, nil
}

// LoadWindow returns every record dated within [from, to] with its tags
// sorted by name. Records and tag links are read concurrently.
func (r *SQLiteRepository) LoadWindow(ctx context.Context, from, to string) ([]core.TaggedRecord, error) {
	var (
		records []core.TaggedRecord
		tags    = map[string][]string{}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := r.db.db.QueryContext(gctx, windowRecordsSQL, from, to)
		if err != nil {
			return &core.StorageError{Statement: windowRecordsSQL, Err: err}
		}
		defer rows.Close()
		for rows.Next() {
			var (
				rec   core.TaggedRecord
				typ   string
				cents int64
			)
			if err := rows.Scan(&rec.ID, &rec.Date, &typ, &cents, &rec.Description, &rec.SourceFile); err != nil {
				return &core.StorageError{Statement: windowRecordsSQL, Err: err}
			}
			rec.Date = core.TruncateDate(rec.Date)
			rec.Type = core.RecordType(typ)
			rec.Amount = core.Money{Cents: cents}
			records = append(records, rec)
		}
		if err := rows.Err(); err != nil {
			return &core.StorageError{Statement: windowRecordsSQL, Err: err}
		}
		return nil
	})
	g.Go(func() error {
		rows, err := r.db.db.QueryContext(gctx, windowTagsSQL, from, to)
		if err != nil {
			return &core.StorageError{Statement: windowTagsSQL, Err: err}
		}
		defer rows.Close()
		for rows.Next() {
			var id, name string
			if err := rows.Scan(&id, &name); err != nil {
				return &core.StorageError{Statement: windowTagsSQL, Err: err}
			}
			tags[id] = append(tags[id], name)
		}
		if err := rows.Err(); err != nil {
			return &core.StorageError{Statement: windowTagsSQL, Err: err}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range records {
		t := tags[records[i].ID]
		sort.Strings(t)
		records[i].Tags = t
	}
	return records, nil
}

// AddTag attaches tag to an existing record, creating the tag if needed.
func (r *SQLiteRepository) AddTag(ctx context.Context, recordID, tag string) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := recordExists(ctx, tx, recordID); err != nil {
			return err
		}
		return linkTag(ctx, tx, recordID, tag)
	})
}

// RemoveTag detaches tag from a record. Removing an absent tag is not an error.
func (r *SQLiteRepository) RemoveTag(ctx context.Context, recordID, tag string) error {
	return r.db.Execute(ctx, unlinkTagSQL, recordID, tag)
}

// ListTags returns every known tag with its record count, by name.
func (r *SQLiteRepository) ListTags(ctx context.Context) ([]TagCount, error) {
	rows, err := r.db.db.QueryContext(ctx, tagCountsSQL)
	if err != nil {
		return nil, &core.StorageError{Statement: tagCountsSQL, Err: err}
	}
	defer rows.Close()

	var out []TagCount
	for rows.Next() {
		var tc TagCount
		if err := rows.Scan(&tc.Name, &tc.Records); err != nil {
			return nil, &core.StorageError{Statement: tagCountsSQL, Err: err}
		}
		out = append(out, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, &core.StorageError{Statement: tagCountsSQL, Err: err}
	}
	return out, nil
}

func linkTag(ctx context.Context, tx *sql.Tx, recordID, tag string) error {
	if _, err := tx.ExecContext(ctx, insertTagSQL, tag); err != nil {
		return &core.StorageError{Statement: insertTagSQL, Err: err}
	}
	if _, err := tx.ExecContext(ctx, linkTagSQL, recordID, tag); err != nil {
		return &core.StorageError{Statement: linkTagSQL, Err: err}
	}
	return nil
}

func recordExists(ctx context.Context, tx *sql.Tx, id string) error {
	const stmt = `SELECT 1 FROM record WHERE id = ?`
	var one int
	err := tx.QueryRowContext(ctx, stmt, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %q", ErrRecordNotFound, id)
	}
	if err != nil {
		return &core.StorageError{Statement: stmt, Err: err}
	}
	return nil
}
