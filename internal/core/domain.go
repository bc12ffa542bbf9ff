package core

import (
	"errors"
	"strings"
)

const (
	Credit RecordType = "CREDIT"
	Debit  RecordType = "DEBIT"
)

type (
	RecordType string

	Money struct {
		Cents int64
	}

	// Record is one canonical statement line item as persisted in the store.
	Record struct {
		ID          string
		Date        string // YYYY-MM-DD
		Type        RecordType
		Amount      Money // signed, taken verbatim from the source
		Description string
		SourceFile  string
	}

	// TaggedRecord is a record with the names of its tags attached.
	TaggedRecord struct {
		Record
		Tags []string
	}
)

var (
	ErrEmptyID          = errors.New("empty id")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptySourceFile  = errors.New("empty source file")
	ErrInvalidType      = errors.New("invalid record type")
)

// ParseRecordType accepts CREDIT or DEBIT in any case.
func ParseRecordType(s string) (RecordType, error) {
	switch RecordType(strings.ToUpper(strings.TrimSpace(s))) {
	case Credit:
		return Credit, nil
	case Debit:
		return Debit, nil
	default:
		return "", ErrInvalidType
	}
}

func (t RecordType) Valid() bool {
	return t == Credit || t == Debit
}

// Abs returns the magnitude of m.
func (m Money) Abs() Money {
	if m.Cents < 0 {
		return Money{Cents: -m.Cents}
	}
	return m
}

func (r Record) IsDebit() bool {
	return r.Type == Debit
}

func (r Record) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return ErrEmptyID
	}
	if _, err := ParseDay(r.Date); err != nil {
		return err
	}
	if !r.Type.Valid() {
		return ErrInvalidType
	}
	if strings.TrimSpace(r.Description) == "" {
		return ErrEmptyDescription
	}
	if strings.TrimSpace(r.SourceFile) == "" {
		return ErrEmptySourceFile
	}
	return nil
}
