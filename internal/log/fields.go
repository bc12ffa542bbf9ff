package log

import "sort"

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldOperation = "operation"
	FieldError     = "error"
	FieldSource    = "source"
	FieldMapping   = "mapping"
	FieldLine      = "line"
	FieldIngested  = "ingested"
	FieldSkipped   = "skipped"
	FieldLastDate  = "last_date"
	FieldFormat    = "format"
	FieldPath      = "path"
	FieldDuration  = "duration_ms"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentIngest    = "ingest"
	ComponentStatement = "statement"
	ComponentStorage   = "storage"
	ComponentReport    = "report"
	ComponentRender    = "render"
	ComponentConfig    = "config"
)

// Operations defines standard operation names
const (
	OpIngest  = "ingest"
	OpReport  = "report"
	OpQuery   = "query"
	OpExecute = "execute"
	OpTag     = "tag"
	OpUntag   = "untag"
	OpConfig  = "config"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds the error message; nil errors are ignored
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithIngest adds the outcome of one statement ingestion
func (f LogFields) WithIngest(source, mapping string, ingested, skipped int) LogFields {
	f[FieldSource] = source
	f[FieldMapping] = mapping
	f[FieldIngested] = ingested
	f[FieldSkipped] = skipped
	return f
}

// ToSlice converts LogFields to a slice for slog, keys in sorted order
func (f LogFields) ToSlice() []any {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	slice := make([]any, 0, len(f)*2)
	for _, k := range keys {
		slice = append(slice, k, f[k])
	}
	return slice
}
