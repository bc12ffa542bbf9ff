package report

import (
	"context"
	"fmt"

	"tally/internal/core"
	"tally/internal/log"
)

// RecordSource is the part of the record store the report pipeline reads.
type RecordSource interface {
	LastDate(ctx context.Context) (string, bool, error)
	LoadWindow(ctx context.Context, from, to string) ([]core.TaggedRecord, error)
}

// Service builds spending reports from the record store.
type Service struct {
	source RecordSource
}

func NewService(source RecordSource) *Service {
	return &Service{source: source}
}

// Build runs the whole pipeline: anchor date, aggregation, assembly. It fails
// with core.ErrNoRecords before aggregating when the store is empty.
func (s *Service) Build(ctx context.Context) (SpendingReport, error) {
	last, ok, err := s.source.LastDate(ctx)
	if err != nil {
		return SpendingReport{}, fmt.Errorf("find last record date: %w", err)
	}
	if !ok {
		return SpendingReport{}, core.ErrNoRecords
	}

	day, err := core.ParseDay(last)
	if err != nil {
		return SpendingReport{}, fmt.Errorf("last record date: %w", err)
	}
	from, to := NewWindow(day).YearBounds()

	records, err := s.source.LoadWindow(ctx, from, to)
	if err != nil {
		return SpendingReport{}, fmt.Errorf("load records: %w", err)
	}

	merchants := NewMerchantNormalizer()
	rows, err := Aggregate(records, to, merchants)
	if err != nil {
		return SpendingReport{}, fmt.Errorf("aggregate: %w", err)
	}
	hits, misses := merchants.Stats()

	log.FromContext(ctx).WithComponent(log.ComponentReport).DebugContext(ctx, "Report aggregated",
		log.FieldOperation, log.OpReport,
		log.FieldLastDate, to,
		"records", len(records),
		"rows", len(rows),
		"merchant_keys", misses,
		"merchant_key_hits", hits)

	return Assemble(rows, to)
}
