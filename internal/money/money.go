// Package money wraps decimal arithmetic used by the budget engine.
//
// Callers exchange float64 values; sums, products and ratios are carried out
// in decimal so the same inputs always round the same way.
package money

import "github.com/shopspring/decimal"

// Hundred is the percentage multiplier.
var Hundred = decimal.NewFromInt(100)

// D converts a float64 into a decimal.
func D(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// F converts a decimal back to float64.
func F(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

// Mul returns a*b.
func Mul(a, b float64) decimal.Decimal {
	return D(a).Mul(D(b))
}

// Pct returns base * pct / 100.
func Pct(base decimal.Decimal, pct float64) decimal.Decimal {
	return base.Mul(D(pct)).Div(Hundred)
}

// Markup returns base * (1 + pct/100).
func Markup(base decimal.Decimal, pct float64) decimal.Decimal {
	return base.Add(Pct(base, pct))
}

// DivideOrZero returns numerator/denominator, or zero when the denominator is zero.
func DivideOrZero(numerator, denominator decimal.Decimal) decimal.Decimal {
	if denominator.IsZero() {
		return decimal.Zero
	}
	return numerator.Div(denominator)
}

// Share returns part/total*100, or zero when total is zero.
func Share(part, total decimal.Decimal) decimal.Decimal {
	return DivideOrZero(part, total).Mul(Hundred)
}

// Round2 rounds a float to cents.
func Round2(f float64) float64 {
	return F(D(f).Round(2))
}
