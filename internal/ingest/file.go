package ingest

import (
	"context"

	"tally/internal/log"
	"tally/internal/statement"
)

// FileResult is the outcome of ingesting one statement file.
type FileResult struct {
	Result
	Source  string // stored provenance name
	Mapping string // header mapping the rows were read with
}

// IngestFile reads a CSV or XLSX statement, normalizes it with the named
// mapping (auto-detected when empty) and ingests the rows. Structural read
// errors and unknown mappings abort before anything is written.
func (i *Ingestor) IngestFile(ctx context.Context, n *statement.Normalizer, path, mappingName string) (FileResult, error) {
	table, err := statement.ReadFile(path)
	if err != nil {
		return FileResult{}, err
	}
	rows, m, err := n.Normalize(table, mappingName)
	if err != nil {
		return FileResult{}, err
	}

	source := SourceName(path)
	log.FromContext(ctx).WithComponent(log.ComponentStatement).DebugContext(ctx, "Statement normalized",
		log.FieldSource, source,
		log.FieldMapping, m.Name,
		"rows", len(rows))

	res, err := i.Ingest(ctx, rows, source)
	if err != nil {
		return FileResult{}, err
	}
	return FileResult{Result: res, Source: source, Mapping: m.Name}, nil
}
