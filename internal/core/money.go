// Package core holds the domain types shared by every other package.
//
// This file contains the fixed-locale money handling: parsing the amount
// representations found in the backing stores and formatting values back to
// the display form. Amounts are held as integer cents so aggregation never
// accumulates floating-point drift.
package core

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencyPrefix is the fixed display prefix. The formatter is not
// configurable: the whole system speaks one locale.
const CurrencyPrefix = "R$"

// Money is a monetary value in cents.
type Money struct {
	Cents int64
}

// MoneyFromFloat converts a float amount to Money, rounding half-up to two
// decimal places.
func MoneyFromFloat(f float64) Money {
	cents := decimal.NewFromFloat(f).Round(2).Shift(2).IntPart()
	return Money{Cents: cents}
}

// Float returns the amount as a float64 for display and row serialization.
func (m Money) Float() float64 {
	return float64(m.Cents) / 100.0
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// Sub returns m - other.
func (m Money) Sub(other Money) Money {
	return Money{Cents: m.Cents - other.Cents}
}

// ParseAmount normalizes any source representation of an amount to Money.
//
// Accepted forms:
//   - already-numeric values (int, float, json.Number);
//   - locale strings with an optional "R$" prefix, "." thousands separators
//     and a "," decimal separator ("R$ 1.234,56");
//   - plain numeric strings with a dot decimal separator ("1234.56").
//
// The disambiguation rule for dots is the presence of a comma: when the
// string contains a comma, every dot is a thousands separator; otherwise the
// string is read as a plain decimal. Results are rounded to two places.
// Returns ok=false when nothing parses; callers decide what zero means.
func ParseAmount(v any) (Money, bool) {
	switch t := v.(type) {
	case nil:
		return Money{}, false
	case Money:
		return t, true
	case float64:
		return MoneyFromFloat(t), true
	case float32:
		return MoneyFromFloat(float64(t)), true
	case int:
		return Money{Cents: int64(t) * 100}, true
	case int64:
		return Money{Cents: t * 100}, true
	case json.Number:
		return parseAmountString(t.String())
	case string:
		return parseAmountString(t)
	default:
		return Money{}, false
	}
}

func parseAmountString(s string) (Money, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimPrefix(s, CurrencyPrefix))
	if s == "" {
		return Money{}, false
	}
	if strings.Contains(s, ",") {
		// Locale form: dots group thousands, comma separates decimals.
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, false
	}
	return Money{Cents: d.Round(2).Shift(2).IntPart()}, true
}

// Format renders the amount in the fixed display locale: "R$ 1.234,56".
// Negative values carry the sign after the prefix ("R$ -50,00"), matching
// how the dashboard has always shown a negative balance. Format is the
// exact inverse of ParseAmount to two decimal places.
func (m Money) Format() string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	whole := cents / 100
	frac := cents % 100

	digits := decimal.NewFromInt(whole).String()
	var grouped strings.Builder
	pre := len(digits) % 3
	if pre > 0 {
		grouped.WriteString(digits[:pre])
	}
	for i := pre; i < len(digits); i += 3 {
		if grouped.Len() > 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteString(digits[i : i+3])
	}

	return CurrencyPrefix + " " + sign + grouped.String() + "," + twoDigits(frac)
}

func twoDigits(n int64) string {
	return string([]byte{byte('0' + n/10), byte('0' + n%10)})
}
