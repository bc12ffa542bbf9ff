// Package statement turns heterogeneous statement exports into normalized rows.
//
// Rows produced here are still loosely typed: the raw source columns travel
// along in Fields so the ingestor can pick up identifiers and transaction
// types that are not part of a header mapping. Nothing past the ingestor
// sees them.
package statement

import (
	"strings"

	"github.com/shopspring/decimal"

	"tally/internal/core"
	"tally/internal/mapping"
)

// AutoDetect requests header-based mapping detection.
const AutoDetect = "auto"

// NormalizedRow is one statement row projected through a header mapping.
type NormalizedRow struct {
	Line        int
	Date        string // YYYY-MM-DD when the source used M/D/YYYY, otherwise verbatim
	Description string
	Amount      decimal.Decimal // zero when the source amount is empty or non-numeric
	RawAmount   string
	Fields      map[string]string // every source column, keyed by header
}

type Normalizer struct {
	registry *mapping.Registry
}

func NewNormalizer(registry *mapping.Registry) *Normalizer {
	return &Normalizer{registry: registry}
}

// Normalize projects every row of t through the named mapping, or the
// detected one when name is empty or AutoDetect. Output order matches input
// order and no row is dropped.
func (n *Normalizer) Normalize(t *Table, name string) ([]NormalizedRow, mapping.HeaderMapping, error) {
	m, err := n.pick(t.Headers, name)
	if err != nil {
		return nil, mapping.HeaderMapping{}, err
	}

	out := make([]NormalizedRow, 0, len(t.Rows))
	for _, row := range t.Rows {
		fields := make(map[string]string, len(t.Headers))
		for i, h := range t.Headers {
			if i < len(row.Values) {
				fields[h] = row.Values[i]
			}
		}
		raw := strings.TrimSpace(fields[m.Amount])
		out = append(out, NormalizedRow{
			Line:        row.Line,
			Date:        core.NormalizeDate(strings.TrimSpace(fields[m.Date])),
			Description: strings.TrimSpace(fields[m.Description]),
			Amount:      core.AmountOrZero(raw),
			RawAmount:   raw,
			Fields:      fields,
		})
	}
	return out, m, nil
}

// NormalizeCSV is Normalize over CSV text.
func (n *Normalizer) NormalizeCSV(text, source, name string) ([]NormalizedRow, mapping.HeaderMapping, error) {
	t, err := ReadCSV(strings.NewReader(text), source)
	if err != nil {
		return nil, mapping.HeaderMapping{}, err
	}
	return n.Normalize(t, name)
}

func (n *Normalizer) pick(headers []string, name string) (mapping.HeaderMapping, error) {
	if name != "" && name != AutoDetect {
		return n.registry.Resolve(name)
	}
	return n.registry.Detect(headers)
}
