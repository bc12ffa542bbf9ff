// Package core provides money parsing and handling utilities.
//
// Amounts are read as decimals and persisted as signed integer cents.
package core

import (
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

// maxAmount is the largest magnitude whose cents fit in an int64.
var maxAmount = decimal.New(math.MaxInt64/100, 0)

// ParseAmount parses a statement amount into a signed decimal.
//
// It tolerates a leading currency symbol, thousands separators and the
// accounting convention of wrapping negatives in parentheses.
//
// Examples:
//
//	ParseAmount("12.34")     -> 12.34
//	ParseAmount("-$1,200.5") -> -1200.5
//	ParseAmount("(7.10)")    -> -7.10
//	ParseAmount("abc")       -> error
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if strings.HasPrefix(s, "-") {
		negative = !negative
		s = strings.TrimSpace(s[1:])
	} else if strings.HasPrefix(s, "+") {
		s = strings.TrimSpace(s[1:])
	}
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || strings.ContainsAny(s, "+-eE") {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.GreaterThan(maxAmount) {
		return decimal.Zero, ErrInvalidAmount
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// AmountOrZero is ParseAmount with unparseable input mapped to zero.
func AmountOrZero(s string) decimal.Decimal {
	d, err := ParseAmount(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// MoneyFromDecimal scales d to cents, rounding half away from zero.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{Cents: d.Shift(2).Round(0).IntPart()}
}

// Decimal returns the amount in whole currency units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// DivRound divides m by n and rounds to whole cents. n must be positive.
func (m Money) DivRound(n int) Money {
	if n <= 1 {
		return m
	}
	q := decimal.NewFromInt(m.Cents).Div(decimal.NewFromInt(int64(n)))
	return Money{Cents: q.Round(0).IntPart()}
}
