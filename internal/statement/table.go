package statement

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"tally/internal/core"
)

// Table is a header row plus data rows, before any mapping is applied.
type Table struct {
	Source  string
	Headers []string
	Rows    []Row
}

// Row is one data row and the source line it came from.
type Row struct {
	Line   int
	Values []string
}

const utf8BOM = "\ufeff"

// ReadCSV parses CSV text with a header row. Blank lines are skipped;
// quoting follows RFC 4180.
func ReadCSV(r io.Reader, source string) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	t := &Table{Source: source}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return nil, &core.ParseError{Source: source, Line: perr.Line, Err: perr.Err}
			}
			return nil, &core.ParseError{Source: source, Err: err}
		}
		line, _ := cr.FieldPos(0)
		if t.Headers == nil {
			rec[0] = strings.TrimPrefix(rec[0], utf8BOM)
			t.Headers = rec
			continue
		}
		t.Rows = append(t.Rows, Row{Line: line, Values: rec})
	}
	return t, nil
}

// ReadXLSX reads the first sheet of a workbook. The first non-empty row is
// the header row; fully empty rows are skipped.
func ReadXLSX(r io.Reader, source string) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &core.ParseError{Source: source, Err: err}
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &core.ParseError{Source: source, Err: fmt.Errorf("read sheet %q: %w", sheet, err)}
	}

	t := &Table{Source: source}
	for i, rec := range rows {
		if isBlank(rec) {
			continue
		}
		if t.Headers == nil {
			t.Headers = rec
			continue
		}
		t.Rows = append(t.Rows, Row{Line: i + 1, Values: rec})
	}
	return t, nil
}

// ReadFile picks a reader by file extension; anything that is not a
// workbook is treated as CSV.
func ReadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read statement: %w", err)
	}
	source := filepath.Base(path)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ReadXLSX(bytes.NewReader(data), source)
	default:
		return ReadCSV(bytes.NewReader(data), source)
	}
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
