package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"tally/internal/core"
	"tally/internal/mapping"
	"tally/internal/statement"
	"tally/internal/storage"
	"tally/internal/tagging"
)

type memoryStore struct {
	records map[string]core.TaggedRecord
	calls   int
}

func (m *memoryStore) UpsertRecords(_ context.Context, records []core.TaggedRecord) (int, error) {
	m.calls++
	if m.records == nil {
		m.records = map[string]core.TaggedRecord{}
	}
	for _, r := range records {
		m.records[r.ID] = r
	}
	return len(records), nil
}

func normalize(t *testing.T, text string) []statement.NormalizedRow {
	t.Helper()
	reg, err := mapping.Default()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	rows, _, err := statement.NewNormalizer(reg).NormalizeCSV(text, "test.csv", statement.AutoDetect)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	return rows
}

const fidelityCSV = "Date,Name,Memo,Amount,Transaction\n" +
	"2024-03-01,WHOLE FOODS #12,m1,-54.20,DEBIT\n" +
	"2024-03-02,PAYROLL,m2,2500.00,credit\n" +
	"2024-03-03,REFUND DESK,m3,10.00,REFUND\n" +
	"2024-03-04,NO AMOUNT,m4,,DEBIT\n" +
	"2024-03-05,BAD AMOUNT,m5,12abc,DEBIT\n" +
	"2024-03-06,,m6,-1.00,DEBIT\n" +
	"2024-03-07,NO MEMO,,-1.00,DEBIT\n" +
	"2024-03-08T09:15:00,SHELL OIL,m8,-40.00,Debit\n"

func TestIngestValidatesRows(t *testing.T) {
	store := &memoryStore{}
	res, err := New(store, nil).Ingest(context.Background(), normalize(t, fidelityCSV), "test.csv")
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if res.Inserted != 3 || res.Skipped != 5 {
		t.Fatalf("unexpected result %+v", res)
	}

	tests := []struct {
		id    string
		typ   core.RecordType
		cents int64
		date  string
	}{
		{"m1", core.Debit, -5420, "2024-03-01"},
		{"m2", core.Credit, 250000, "2024-03-02"},
		{"m8", core.Debit, -4000, "2024-03-08"},
	}
	for _, tt := range tests {
		got, ok := store.records[tt.id]
		if !ok {
			t.Fatalf("record %s missing", tt.id)
		}
		if got.Type != tt.typ || got.Amount.Cents != tt.cents || got.Date != tt.date || got.SourceFile != "test.csv" {
			t.Errorf("record %s: %+v", tt.id, got.Record)
		}
	}
	if _, ok := store.records["m3"]; ok {
		t.Errorf("REFUND row must be rejected")
	}
}

func TestIngestRepeatedIDLastRowWins(t *testing.T) {
	text := "Date,Name,Memo,Amount,Transaction\n" +
		"2024-03-01,FIRST,dup,-1.00,DEBIT\n" +
		"2024-03-02,OTHER,x1,-2.00,DEBIT\n" +
		"2024-03-03,SECOND,dup,-3.00,DEBIT\n"
	store := &memoryStore{}
	res, err := New(store, nil).Ingest(context.Background(), normalize(t, text), "dup.csv")
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if res.Inserted != 2 || res.Skipped != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
	if got := store.records["dup"]; got.Description != "SECOND" || got.Amount.Cents != -300 {
		t.Fatalf("last row should win: %+v", got.Record)
	}
	if res.Inserted != len(store.records) {
		t.Fatalf("inserted %d but stored %d", res.Inserted, len(store.records))
	}
}

func TestIngestZeroRowsIsNotAnError(t *testing.T) {
	store := &memoryStore{}
	res, err := New(store, nil).Ingest(context.Background(), nil, "empty.csv")
	if err != nil || res.Inserted != 0 || res.Skipped != 0 {
		t.Fatalf("got %+v, %v", res, err)
	}
	if store.calls != 0 {
		t.Fatalf("store written for an empty batch")
	}
}

func TestIngestDerivesStableIDs(t *testing.T) {
	text := "Date,Description,Amount\n" +
		"2024-03-01,COFFEE,-4.00\n" +
		"2024-03-01,COFFEE,-4.00\n" +
		"2024-03-02,SALARY,100.00\n"

	first, second := &memoryStore{}, &memoryStore{}
	ing := New(first, nil)
	if _, err := ing.Ingest(context.Background(), normalize(t, text), "a.csv"); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if _, err := New(second, nil).Ingest(context.Background(), normalize(t, text), "a.csv"); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if len(first.records) != 3 {
		t.Fatalf("identical rows must get distinct ids, got %d records", len(first.records))
	}
	for id := range first.records {
		if _, ok := second.records[id]; !ok {
			t.Fatalf("id %s not stable across ingestions", id)
		}
	}

	var debits, credits int
	for _, r := range first.records {
		switch r.Type {
		case core.Debit:
			debits++
		case core.Credit:
			credits++
		}
	}
	if debits != 2 || credits != 1 {
		t.Fatalf("sign classification: %d debits, %d credits", debits, credits)
	}
}

func TestIngestAppliesTagRules(t *testing.T) {
	rules, err := tagging.New([]tagging.Rule{
		{Tag: "Groceries", Keywords: []string{"whole foods"}},
		{Tag: "Fuel", Keywords: []string{"shell"}},
	})
	if err != nil {
		t.Fatalf("rules: %v", err)
	}
	store := &memoryStore{}
	if _, err := New(store, rules).Ingest(context.Background(), normalize(t, fidelityCSV), "test.csv"); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if got := store.records["m1"].Tags; !reflect.DeepEqual(got, []string{"Groceries"}) {
		t.Fatalf("m1 tags %v", got)
	}
	if got := store.records["m2"].Tags; len(got) != 0 {
		t.Fatalf("m2 tags %v", got)
	}
}

func TestIngestFileIsIdempotent(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "statement.csv")
	if err := os.WriteFile(path, []byte(fidelityCSV), 0o644); err != nil {
		t.Fatal(err)
	}

	db, err := storage.Open(filepath.Join(dir, "tally.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	repo := storage.NewSQLiteRepository(db)
	reg, _ := mapping.Default()
	n := statement.NewNormalizer(reg)
	ing := New(repo, nil)

	for i := 0; i < 2; i++ {
		res, err := ing.IngestFile(ctx, n, path, "")
		if err != nil {
			t.Fatalf("ingest #%d: %v", i+1, err)
		}
		if res.Source != "statement.csv" || res.Mapping != "fidelity" || res.Inserted != 3 {
			t.Fatalf("ingest #%d: %+v", i+1, res)
		}
	}
	if count, _ := repo.CountRecords(ctx); count != 3 {
		t.Fatalf("expected 3 records after re-ingest, got %d", count)
	}
}

func TestIngestFileUnknownMapping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.csv")
	if err := os.WriteFile(path, []byte(fidelityCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	reg, _ := mapping.Default()
	store := &memoryStore{}
	_, err := New(store, nil).IngestFile(context.Background(), statement.NewNormalizer(reg), path, "nosuchbank")
	if !errors.Is(err, core.ErrUnknownMapping) {
		t.Fatalf("expected ErrUnknownMapping, got %v", err)
	}
	if store.calls != 0 {
		t.Fatalf("store written before mapping resolved")
	}
}
