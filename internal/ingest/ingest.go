// Package ingest validates normalized statement rows into canonical records
// and upserts them into the record store.
package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"tally/internal/core"
	"tally/internal/log"
	"tally/internal/statement"
	"tally/internal/tagging"
)

// recordNamespace seeds derived record ids for sources without a memo column.
var recordNamespace = uuid.MustParse("5b0f3c6e-9a1d-4e8b-8f3a-2d7c1e4b6a90")

// Source columns read directly from a row, matched case-insensitively.
const (
	columnID   = "memo"
	columnType = "transaction"
)

// RecordWriter is the part of the record store the ingestor writes to.
type RecordWriter interface {
	UpsertRecords(ctx context.Context, records []core.TaggedRecord) (int, error)
}

// Result summarizes one ingestion.
type Result struct {
	Inserted int
	Skipped  int
}

type Ingestor struct {
	store RecordWriter
	rules *tagging.Rules
}

// New returns an ingestor writing to store. rules may be nil.
func New(store RecordWriter, rules *tagging.Rules) *Ingestor {
	return &Ingestor{store: store, rules: rules}
}

// Ingest validates rows and upserts the accepted ones, keyed by id; within
// one batch the last row with a given id wins. Rejected rows are logged and
// counted, never fatal. Zero accepted rows is not an
// error and performs no write.
func (i *Ingestor) Ingest(ctx context.Context, rows []statement.NormalizedRow, sourceFile string) (Result, error) {
	logger := log.FromContext(ctx).WithComponent(log.ComponentIngest)
	var (
		res     Result
		records = make([]core.TaggedRecord, 0, len(rows))
		seen    = map[string]int{}
		byID    = map[string]int{}
	)
	for _, row := range rows {
		rec, err := i.canonical(row, sourceFile, seen)
		if err != nil {
			res.Skipped++
			logger.DebugContext(ctx, "Row rejected",
				log.FieldSource, sourceFile,
				log.FieldLine, row.Line,
				log.FieldError, err)
			continue
		}
		// Rows repeating an id replace the earlier one, as the upsert would.
		if at, ok := byID[rec.ID]; ok {
			records[at] = rec
			continue
		}
		byID[rec.ID] = len(records)
		records = append(records, rec)
	}

	if len(records) > 0 {
		n, err := i.store.UpsertRecords(ctx, records)
		if err != nil {
			return res, fmt.Errorf("upsert records: %w", err)
		}
		res.Inserted = n
	}

	logger.InfoContext(ctx, "Statement ingested",
		log.FieldSource, sourceFile,
		log.FieldIngested, res.Inserted,
		log.FieldSkipped, res.Skipped)
	return res, nil
}

func (i *Ingestor) canonical(row statement.NormalizedRow, sourceFile string, seen map[string]int) (core.TaggedRecord, error) {
	fields := foldKeys(row.Fields)

	if row.RawAmount == "" {
		return core.TaggedRecord{}, &core.ValidationError{Field: "amount", Reason: "empty"}
	}
	amount, err := core.ParseAmount(row.RawAmount)
	if err != nil {
		return core.TaggedRecord{}, &core.ValidationError{Field: "amount", Reason: err.Error()}
	}

	if row.Date == "" {
		return core.TaggedRecord{}, &core.ValidationError{Field: "date", Reason: "empty"}
	}
	day, err := core.ParseDay(row.Date)
	if err != nil {
		return core.TaggedRecord{}, err
	}
	date := day.Format(core.DateLayout)

	money := core.MoneyFromDecimal(amount)
	typ, err := recordType(fields, money)
	if err != nil {
		return core.TaggedRecord{}, err
	}

	id, hasID := fields[columnID]
	if !hasID {
		id = derivedID(sourceFile, date, row.Description, row.RawAmount, seen)
	}

	rec := core.Record{
		ID:          strings.TrimSpace(id),
		Date:        date,
		Type:        typ,
		Amount:      money,
		Description: row.Description,
		SourceFile:  sourceFile,
	}
	if err := rec.Validate(); err != nil {
		return core.TaggedRecord{}, err
	}
	return core.TaggedRecord{Record: rec, Tags: i.rules.Match(rec.Description)}, nil
}

// recordType reads the transaction column. Sources without one are
// classified by the sign of the amount.
func recordType(fields map[string]string, amount core.Money) (core.RecordType, error) {
	raw, ok := fields[columnType]
	if !ok {
		if amount.Cents < 0 {
			return core.Debit, nil
		}
		return core.Credit, nil
	}
	if strings.TrimSpace(raw) == "" {
		return "", &core.ValidationError{Field: "record_type", Reason: "empty"}
	}
	return core.ParseRecordType(raw)
}

// derivedID names a row by its content and its occurrence among identical
// rows of the same file, so re-ingesting the file yields the same ids.
func derivedID(sourceFile, date, description, rawAmount string, seen map[string]int) string {
	key := strings.Join([]string{sourceFile, date, description, rawAmount}, "\x1f")
	n := seen[key]
	seen[key] = n + 1
	return uuid.NewSHA1(recordNamespace, []byte(key+"\x1f"+strconv.Itoa(n))).String()
}

func foldKeys(fields map[string]string) map[string]string {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		out[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	return out
}

// SourceName is the provenance name stored on records read from path.
func SourceName(path string) string {
	return filepath.Base(path)
}
