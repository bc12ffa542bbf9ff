package core

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// Fold applies Unicode case folding for caseless comparison.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// Ellipsis marks text cut by Truncate.
const Ellipsis = "…"

// Truncate cuts s to max runes and appends an ellipsis, but only when s is
// longer than max.
func Truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return strings.TrimRight(string(r[:max]), " ") + Ellipsis
}

// Clip cuts s to max runes without any marker.
func Clip(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
