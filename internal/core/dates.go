package core

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DateLayout is the canonical record date format.
const DateLayout = "2006-01-02"

var usDate = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)

// NormalizeDate rewrites M/D/YYYY and MM/DD/YYYY to YYYY-MM-DD.
// Anything else is returned unchanged.
func NormalizeDate(raw string) string {
	m := usDate.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return raw
	}
	return m[3] + "-" + pad2(m[1]) + "-" + pad2(m[2])
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// ParseDay parses a YYYY-MM-DD date, ignoring any time component after it.
func ParseDay(s string) (time.Time, error) {
	s = TruncateDate(s)
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, &ValidationError{Field: "date", Reason: fmt.Sprintf("%q is not YYYY-MM-DD", s)}
	}
	return t, nil
}

// TruncateDate drops a time component from an ISO date or timestamp.
func TruncateDate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > len(DateLayout) && (s[len(DateLayout)] == 'T' || s[len(DateLayout)] == ' ') {
		return s[:len(DateLayout)]
	}
	return s
}

// MonthLabel returns YYYY-MM for t.
func MonthLabel(t time.Time) string {
	return t.Format("2006-01")
}
