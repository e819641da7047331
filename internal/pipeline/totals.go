package pipeline

import (
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/orca/internal/model"
	"github.com/theirongolddev/orca/internal/money"
)

// LineTotal returns quantity x unit price for one budget item.
func LineTotal(it model.BudgetItem) float64 {
	return money.F(lineTotal(it))
}

func lineTotal(it model.BudgetItem) decimal.Decimal {
	return money.Mul(it.Quantity, it.UnitPrice)
}

// ComputeBudgetTotals rolls up budget items into subtotal, discount, tax,
// BDI and grand total.
//
// Discount and tax are each taken from the raw line total, never compounded.
// Items are assumed sanitized: positive quantities and percentages within
// [0,100]. Use ValidateBudgetItem at the boundary; nothing is clamped here.
func ComputeBudgetTotals(items []model.BudgetItem, bdiPct float64) model.BudgetTotals {
	var subtotal, discount, tax decimal.Decimal

	for _, it := range items {
		line := lineTotal(it)
		subtotal = subtotal.Add(line)
		discount = discount.Add(money.Pct(line, it.DiscountPct))
		tax = tax.Add(money.Pct(line, it.TaxRatePct))
	}

	bdi := money.Pct(subtotal, bdiPct)
	grand := subtotal.Sub(discount).Add(tax).Add(bdi)

	return model.BudgetTotals{
		Subtotal:      money.F(subtotal),
		TotalDiscount: money.F(discount),
		TotalTax:      money.F(tax),
		BDIAmount:     money.F(bdi),
		GrandTotal:    money.F(grand),
	}
}

// RecomputeBudget returns a copy of b with fresh totals.
func RecomputeBudget(b model.Budget) model.Budget {
	out := b
	out.Items = append([]model.BudgetItem(nil), b.Items...)
	out.Totals = ComputeBudgetTotals(out.Items, b.BDIPct)
	return out
}

// ValidateBudgetItem checks the numeric preconditions of ComputeBudgetTotals.
func ValidateBudgetItem(it model.BudgetItem) error {
	if err := checkFinite("quantity", it.Quantity); err != nil {
		return err
	}
	if err := checkFinite("unitPrice", it.UnitPrice); err != nil {
		return err
	}
	if it.Quantity <= 0 {
		return &ValidationError{Field: "quantity", Reason: "must be greater than zero"}
	}
	if it.UnitPrice < 0 {
		return &ValidationError{Field: "unitPrice", Reason: "must not be negative"}
	}
	if err := checkPercent("discount", it.DiscountPct); err != nil {
		return err
	}
	return checkPercent("taxRate", it.TaxRatePct)
}

// ValidateBudget checks the BDI percentage and every item.
func ValidateBudget(b model.Budget) error {
	if err := checkPercent("bdi", b.BDIPct); err != nil {
		return err
	}
	for _, it := range b.Items {
		if err := ValidateBudgetItem(it); err != nil {
			return err
		}
	}
	return nil
}

// ValidateComposition checks the percentages and coefficients of a composition.
func ValidateComposition(c model.Composition) error {
	if err := checkFinite("socialCharges", c.SocialChargesPct); err != nil {
		return err
	}
	if err := checkFinite("bdi", c.BDIPct); err != nil {
		return err
	}
	if c.SocialChargesPct < 0 {
		return &ValidationError{Field: "socialCharges", Reason: "must not be negative"}
	}
	if c.BDIPct < 0 {
		return &ValidationError{Field: "bdi", Reason: "must not be negative"}
	}
	for _, it := range c.Items {
		if err := checkFinite("coefficient", it.Coefficient); err != nil {
			return err
		}
		if err := checkFinite("unitPrice", it.UnitPrice); err != nil {
			return err
		}
		if it.Coefficient < 0 {
			return &ValidationError{Field: "coefficient", Reason: "must not be negative"}
		}
	}
	return nil
}
