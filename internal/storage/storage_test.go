package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"tally/internal/core"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "nested", "tally.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func rec(id, date string, typ core.RecordType, cents int64, desc string, tags ...string) core.TaggedRecord {
	return core.TaggedRecord{
		Record: core.Record{ID: id, Date: date, Type: typ, Amount: core.Money{Cents: cents}, Description: desc, SourceFile: "a.csv"},
		Tags:   tags,
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tally.db")
	for i := 0; i < 2; i++ {
		db, err := Open(path)
		if err != nil {
			t.Fatalf("open #%d: %v", i+1, err)
		}
		db.Close()
	}
}

func TestEnsureSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tally.db")
	for i := 0; i < 2; i++ {
		v, err := ensureSchema(path)
		if err != nil {
			t.Fatalf("ensure #%d: %v", i+1, err)
		}
		if v != 1 {
			t.Fatalf("ensure #%d: version %d, want 1", i+1, v)
		}
	}
}

func TestForeignKeysEnforced(t *testing.T) {
	db := openTestDB(t)
	err := db.Execute(context.Background(), `INSERT INTO record_tag (record_id, tag_id) VALUES ('ghost', 42)`)
	var serr *core.StorageError
	if !errors.As(err, &serr) {
		t.Fatalf("expected StorageError for dangling link, got %v", err)
	}
}

func TestUpsertReplacesOnSameID(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(openTestDB(t))

	batch := []core.TaggedRecord{
		rec("1", "2024-01-01", core.Debit, -500, "COFFEE"),
		rec("2", "2024-01-02", core.Credit, 10000, "PAYROLL"),
	}
	for i := 0; i < 2; i++ {
		if _, err := repo.UpsertRecords(ctx, batch); err != nil {
			t.Fatalf("upsert #%d: %v", i+1, err)
		}
	}
	if n, _ := repo.CountRecords(ctx); n != 2 {
		t.Fatalf("expected 2 records after re-ingest, got %d", n)
	}

	changed := rec("1", "2024-01-03", core.Credit, 700, "COFFEE REFUND")
	changed.SourceFile = "b.csv"
	if _, err := repo.UpsertRecords(ctx, []core.TaggedRecord{changed}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, err := repo.LoadWindow(ctx, "2024-01-01", "2024-12-31")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	want := core.Record{ID: "1", Date: "2024-01-03", Type: core.Credit, Amount: core.Money{Cents: 700}, Description: "COFFEE REFUND", SourceFile: "b.csv"}
	if got[1].Record != want {
		t.Fatalf("record not fully replaced: %+v", got[1].Record)
	}
}

func TestLastDate(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(openTestDB(t))

	if _, ok, err := repo.LastDate(ctx); err != nil || ok {
		t.Fatalf("empty store: ok=%v err=%v", ok, err)
	}
	_, _ = repo.UpsertRecords(ctx, []core.TaggedRecord{
		rec("1", "2024-01-01", core.Debit, -1, "a"),
		rec("2", "2024-03-15", core.Debit, -1, "b"),
	})
	last, ok, err := repo.LastDate(ctx)
	if err != nil || !ok || last != "2024-03-15" {
		t.Fatalf("got %q ok=%v err=%v", last, ok, err)
	}
}

func TestLoadWindowAttachesSortedTags(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(openTestDB(t))
	_, err := repo.UpsertRecords(ctx, []core.TaggedRecord{
		rec("1", "2023-12-31", core.Debit, -100, "old", "Misc"),
		rec("2", "2024-01-10", core.Debit, -200, "store", "Groceries", "Food"),
		rec("3", "2024-01-11", core.Debit, -300, "gas"),
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := repo.LoadWindow(ctx, "2024-01-01", "2024-01-31")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 || got[0].ID != "2" || got[1].ID != "3" {
		t.Fatalf("unexpected window %+v", got)
	}
	if !reflect.DeepEqual(got[0].Tags, []string{"Food", "Groceries"}) || len(got[1].Tags) != 0 {
		t.Fatalf("unexpected tags %v / %v", got[0].Tags, got[1].Tags)
	}
}

func TestTagOperations(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(openTestDB(t))
	_, _ = repo.UpsertRecords(ctx, []core.TaggedRecord{rec("1", "2024-01-01", core.Debit, -100, "x", "Auto")})

	if err := repo.AddTag(ctx, "1", "Manual"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := repo.AddTag(ctx, "1", "Manual"); err != nil {
		t.Fatalf("add twice: %v", err)
	}
	if err := repo.AddTag(ctx, "missing", "Manual"); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}

	// Re-ingesting keeps the manual tag.
	_, _ = repo.UpsertRecords(ctx, []core.TaggedRecord{rec("1", "2024-01-01", core.Debit, -100, "x", "Auto")})
	tags, err := repo.ListTags(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !reflect.DeepEqual(tags, []TagCount{{"Auto", 1}, {"Manual", 1}}) {
		t.Fatalf("unexpected tags %+v", tags)
	}

	if err := repo.RemoveTag(ctx, "1", "Auto"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := repo.RemoveTag(ctx, "1", "Nope"); err != nil {
		t.Fatalf("remove absent: %v", err)
	}
	tags, _ = repo.ListTags(ctx)
	if !reflect.DeepEqual(tags, []TagCount{{"Auto", 0}, {"Manual", 1}}) {
		t.Fatalf("unexpected tags after remove %+v", tags)
	}
}

func TestSettings(t *testing.T) {
	ctx := context.Background()
	s := NewSettings(openTestDB(t))

	if _, ok, err := s.Get(ctx, "nonExistent"); err != nil || ok {
		t.Fatalf("missing key: ok=%v err=%v", ok, err)
	}
	_ = s.Set(ctx, "myKey", "first")
	_ = s.Set(ctx, "myKey", "second")
	if v, ok, _ := s.Get(ctx, "myKey"); !ok || v != "second" {
		t.Fatalf("expected overwrite, got %q", v)
	}
	_ = s.Set(ctx, "other", "x")
	all, err := s.All(ctx)
	if err != nil || !reflect.DeepEqual(all, map[string]string{"myKey": "second", "other": "x"}) {
		t.Fatalf("unexpected all %v err=%v", all, err)
	}
	if err := s.Unset(ctx, "myKey"); err != nil {
		t.Fatalf("unset: %v", err)
	}
	if err := s.Unset(ctx, "nonExistent"); err != nil {
		t.Fatalf("unset missing: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "myKey"); ok {
		t.Fatalf("key still set after unset")
	}
}

func TestExecuteAndQueryFiles(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	dir := t.TempDir()

	script := filepath.Join(dir, "seed.sql")
	content := "INSERT INTO record VALUES ('a', '2024-01-01', 'DEBIT', -100, 'x', 'f.csv');\n" +
		"INSERT INTO record VALUES ('b', '2024-01-02', 'CREDIT', 200, 'y', 'f.csv');\n"
	if err := os.WriteFile(script, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := db.ExecuteFile(ctx, script); err != nil {
		t.Fatalf("execute file: %v", err)
	}

	query := filepath.Join(dir, "q.sql")
	_ = os.WriteFile(query, []byte("SELECT id, amount_cents FROM record ORDER BY id"), 0o644)
	rows, err := db.QueryFile(ctx, query)
	if err != nil {
		t.Fatalf("query file: %v", err)
	}
	if len(rows) != 2 || rows[0]["id"] != "a" || rows[1]["amount_cents"] != int64(200) {
		t.Fatalf("unexpected rows %v", rows)
	}
}

func TestStorageErrors(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	var serr *core.StorageError
	if err := db.Execute(ctx, "INSERT INTO nope VALUES (1)"); !errors.As(err, &serr) {
		t.Fatalf("expected StorageError, got %v", err)
	}
	if serr.Statement != "INSERT INTO nope VALUES (1)" {
		t.Fatalf("statement not carried: %q", serr.Statement)
	}
	if _, err := db.QueryFile(ctx, filepath.Join(t.TempDir(), "missing.sql")); !errors.As(err, &serr) {
		t.Fatalf("expected StorageError for missing file, got %v", err)
	}
	if err := db.Execute(ctx, "INSERT INTO record VALUES ('z', '2024-01-01', 'REFUND', 1, 'x', 'f')"); !errors.As(err, &serr) {
		t.Fatalf("record_type check constraint not enforced: %v", err)
	}
}
