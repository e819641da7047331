package pipeline

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/orca/internal/model"
)

func TestComputeBudgetTotals(t *testing.T) {
	items := []model.BudgetItem{{ID: "a", Quantity: 2, UnitPrice: 2500, DiscountPct: 5, TaxRatePct: 15}}

	got := ComputeBudgetTotals(items, 25)
	assert.Equal(t, model.BudgetTotals{
		Subtotal:      5000,
		TotalDiscount: 250,
		TotalTax:      750,
		BDIAmount:     1250,
		GrandTotal:    6750,
	}, got)
}

func TestComputeBudgetTotals_Empty(t *testing.T) {
	assert.Equal(t, model.BudgetTotals{}, ComputeBudgetTotals(nil, 30))
}

func TestComputeBudgetTotals_NotCompounded(t *testing.T) {
	items := []model.BudgetItem{
		{ID: "a", Quantity: 1, UnitPrice: 100, DiscountPct: 10, TaxRatePct: 10},
		{ID: "b", Quantity: 3, UnitPrice: 0.1},
	}

	got := ComputeBudgetTotals(items, 0)
	assert.Equal(t, 100.3, got.Subtotal)
	assert.Equal(t, 10.0, got.TotalDiscount)
	assert.Equal(t, 10.0, got.TotalTax)
	assert.Equal(t, 100.3, got.GrandTotal)
}

func TestComputeBudgetTotals_Deterministic(t *testing.T) {
	items := []model.BudgetItem{
		{ID: "a", Quantity: 1.37, UnitPrice: 19.99, DiscountPct: 3.3, TaxRatePct: 7.7},
		{ID: "b", Quantity: 12, UnitPrice: 0.07, TaxRatePct: 1},
	}
	assert.Equal(t, ComputeBudgetTotals(items, 17.5), ComputeBudgetTotals(items, 17.5))
}

func TestRecomputeBudget_Idempotent(t *testing.T) {
	b := model.Budget{
		ID:     "b1",
		BDIPct: 25,
		Items:  []model.BudgetItem{{ID: "a", Quantity: 2, UnitPrice: 2500, DiscountPct: 5, TaxRatePct: 15}},
	}

	first := RecomputeBudget(b)
	assert.Zero(t, b.Totals.GrandTotal, "input untouched")

	stripped := first
	stripped.Totals = model.BudgetTotals{}
	assert.Equal(t, first.Totals, RecomputeBudget(stripped).Totals)
}

func TestValidateBudgetItem(t *testing.T) {
	tests := []struct {
		name  string
		item  model.BudgetItem
		field string
	}{
		{name: "ok", item: model.BudgetItem{Quantity: 1, UnitPrice: 1}},
		{name: "zero quantity", item: model.BudgetItem{Quantity: 0}, field: "quantity"},
		{name: "negative price", item: model.BudgetItem{Quantity: 1, UnitPrice: -1}, field: "unitPrice"},
		{name: "discount over 100", item: model.BudgetItem{Quantity: 1, DiscountPct: 101}, field: "discount"},
		{name: "negative tax", item: model.BudgetItem{Quantity: 1, TaxRatePct: -1}, field: "taxRate"},
		{name: "NaN quantity", item: model.BudgetItem{Quantity: math.NaN(), UnitPrice: 1}, field: "quantity"},
		{name: "infinite quantity", item: model.BudgetItem{Quantity: math.Inf(1), UnitPrice: 1}, field: "quantity"},
		{name: "NaN price", item: model.BudgetItem{Quantity: 1, UnitPrice: math.NaN()}, field: "unitPrice"},
		{name: "infinite price", item: model.BudgetItem{Quantity: 1, UnitPrice: math.Inf(1)}, field: "unitPrice"},
		{name: "NaN discount", item: model.BudgetItem{Quantity: 1, DiscountPct: math.NaN()}, field: "discount"},
		{name: "NaN tax", item: model.BudgetItem{Quantity: 1, TaxRatePct: math.NaN()}, field: "taxRate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBudgetItem(tt.item)
			if tt.field == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))

			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestValidateBudget_BDI(t *testing.T) {
	for _, bdi := range []float64{120, -1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		err := ValidateBudget(model.Budget{BDIPct: bdi})
		assert.ErrorIs(t, err, ErrValidation, "bdi %v", bdi)
	}
}

func TestValidateComposition(t *testing.T) {
	tests := []struct {
		name  string
		comp  model.Composition
		field string
	}{
		{name: "ok", comp: model.Composition{SocialChargesPct: 80, BDIPct: 25, Items: []model.CompositionItem{{Coefficient: 1}}}},
		{name: "negative charges", comp: model.Composition{SocialChargesPct: -1}, field: "socialCharges"},
		{name: "NaN charges", comp: model.Composition{SocialChargesPct: math.NaN()}, field: "socialCharges"},
		{name: "infinite bdi", comp: model.Composition{BDIPct: math.Inf(1)}, field: "bdi"},
		{name: "NaN coefficient", comp: model.Composition{Items: []model.CompositionItem{{Coefficient: math.NaN()}}}, field: "coefficient"},
		{name: "infinite coefficient", comp: model.Composition{Items: []model.CompositionItem{{Coefficient: math.Inf(1)}}}, field: "coefficient"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateComposition(tt.comp)
			if tt.field == "" {
				require.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}
