// Package core holds the domain model shared by the ingestion pipeline,
// the storage layer and the analytics engine.
//
// This file contains money parsing and handling. Amounts are stored as
// integer cents to keep aggregation exact; floats only appear at the API
// boundary.
package core

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Money is an amount in cents of its transaction's currency.
type Money struct {
	Cents int64
}

// MoneyFromFloat converts a decimal amount to cents with half-up rounding.
func MoneyFromFloat(v float64) Money {
	return Money{Cents: int64(math.Round(v * 100))}
}

// Float64 returns the decimal value for display and JSON encoding.
// Use cents for calculations to avoid floating-point drift.
func (m Money) Float64() float64 {
	return float64(m.Cents) / 100.0
}

// Add returns the sum of two amounts.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// MarshalJSON encodes the amount as a plain decimal number (1234.50).
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(m.Float64(), 'f', 2, 64)), nil
}

// UnmarshalJSON accepts a decimal number and stores it as cents.
func (m *Money) UnmarshalJSON(b []byte) error {
	v, err := strconv.ParseFloat(strings.Trim(string(b), `"`), 64)
	if err != nil {
		return ErrInvalidAmount
	}
	*m = MoneyFromFloat(v)
	return nil
}

// ParseStatementAmount converts an amount string found on a card statement
// to cents. It accepts Argentine formatting (1.234,56), US formatting
// (1,234.56) and plain decimals, tolerates currency markers ($, U$S, USD)
// and whitespace, and returns the absolute value: statement amounts are
// stored as positive spend magnitudes regardless of source sign.
//
// Examples:
//
//	ParseStatementAmount("1.234,56")  -> 123456 cents
//	ParseStatementAmount("1,234.56")  -> 123456 cents
//	ParseStatementAmount("-600,00")   -> 60000 cents
//	ParseStatementAmount("$ 1500.00") -> 150000 cents
func ParseStatementAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}

	// Strip currency markers and sign conventions.
	s = strings.NewReplacer("U$S", "", "USD", "", "ARS", "", "$", "", "(", "", ")", "", "-", "", "+", "", " ", "").Replace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}

	// Disambiguate separators: when both appear, the rightmost one is the
	// decimal separator and the other marks thousands. A single comma is
	// treated as decimal (AR convention); a single dot is decimal unless it
	// groups exactly three trailing digits alongside other dots.
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case lastDot >= 0 && strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return Money{}, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return Money{}, ErrInvalidAmount
		}
	}

	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return Money{}, ErrInvalidAmount
	}

	// Two fractional digits, half-up rounding on the third.
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	return Money{Cents: iv*100 + fracCents}, nil
}
