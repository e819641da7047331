// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FormatMoney formats a BRL amount with thousands dots and a decimal comma.
// e.g., 1234567.891 -> "R$ 1.234.567,89"
func FormatMoney(v float64) string {
	s := formatFixed(v, 2)
	if strings.HasPrefix(s, "-") {
		return "-R$ " + s[1:]
	}
	return "R$ " + s
}

// FormatQuantity formats a measured quantity with up to 4 decimals.
// e.g., 12.5 -> "12,5", 3 -> "3"
func FormatQuantity(v float64) string {
	d := decimal.NewFromFloat(v).Round(4)
	s := d.String()
	intPart, frac, _ := strings.Cut(s, ".")
	neg := strings.HasPrefix(intPart, "-")
	intPart = strings.TrimPrefix(intPart, "-")
	out := groupThousands(intPart)
	if frac != "" {
		out += "," + frac
	}
	if neg {
		return "-" + out
	}
	return out
}

// FormatPercent formats a 0-100 percentage.
// e.g., 12.345 -> "12,35%"
func FormatPercent(pct float64) string {
	return formatFixed(pct, 2) + "%"
}

// FormatNumber adds dot separators to an integer.
// e.g., 1234567 -> "1.234.567"
func FormatNumber(n int64) string {
	return formatFixed(float64(n), 0)
}

// FormatDelta formats a money delta with an explicit sign.
func FormatDelta(current, previous float64) string {
	delta := decimal.NewFromFloat(current).Sub(decimal.NewFromFloat(previous))
	if delta.IsNegative() {
		return "-" + FormatMoney(delta.Neg().InexactFloat64())
	}
	return "+" + FormatMoney(delta.InexactFloat64())
}

// FormatDate formats a date as dd/mm/yyyy, or "-" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02/01/2006")
}

func formatFixed(v float64, places int32) string {
	s := decimal.NewFromFloat(v).StringFixed(places)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, _ := strings.Cut(s, ".")
	out := groupThousands(intPart)
	if frac != "" {
		out += "," + frac
	}
	if neg && strings.Trim(out, "0.,") != "" {
		return "-" + out
	}
	return out
}

func groupThousands(s string) string {
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte('.')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}
