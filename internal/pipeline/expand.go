package pipeline

import (
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/orca/internal/model"
	"github.com/theirongolddev/orca/internal/money"
)

type contribution struct {
	label string
	value decimal.Decimal
}

// accumulator sums values by id, remembering first-seen order.
type accumulator struct {
	order []string
	byID  map[string]*contribution
}

func newAccumulator() *accumulator {
	return &accumulator{byID: make(map[string]*contribution)}
}

func (a *accumulator) add(id, label string, v decimal.Decimal) {
	c, ok := a.byID[id]
	if !ok {
		c = &contribution{label: label}
		a.byID[id] = c
		a.order = append(a.order, id)
	}
	c.value = c.value.Add(v)
}

func (a *accumulator) entries() []AbcInput {
	out := make([]AbcInput, 0, len(a.order))
	for _, id := range a.order {
		c := a.byID[id]
		out = append(out, AbcInput{ID: id, Label: c.label, Value: money.F(c.value)})
	}
	return out
}

// ExpandInputs flattens budget lines into per-input values.
//
// A line referencing a composition contributes quantity x coefficient x price
// for each composition item, aggregated by input id. Nested compositions are
// expanded with multiplied coefficients; a composition already on the current
// path is skipped and reported as a cycle. Lines without a composition, or
// whose composition cannot be resolved, contribute their own line total.
func ExpandInputs(
	items []model.BudgetItem,
	comps CompositionLookup,
	inputs InputLookup,
) ([]AbcInput, []ReferenceWarning) {
	acc := newAccumulator()
	var warnings []ReferenceWarning

	for _, it := range items {
		if it.CompositionID == "" {
			acc.add(lineKey(it), it.Name, lineTotal(it))
			continue
		}

		comp, ok := lookupComposition(comps, it.CompositionID)
		if !ok {
			warnings = append(warnings, ReferenceWarning{Kind: MissingComposition, RefID: it.CompositionID, Owner: it.ID})
			acc.add(lineKey(it), it.Name, lineTotal(it))
			continue
		}

		visited := map[string]bool{comp.ID: true}
		warnings = expandComposition(acc, comp, money.D(it.Quantity), comps, inputs, visited, warnings)
	}

	return acc.entries(), warnings
}

func expandComposition(
	acc *accumulator,
	comp model.Composition,
	multiplier decimal.Decimal,
	comps CompositionLookup,
	inputs InputLookup,
	visited map[string]bool,
	warnings []ReferenceWarning,
) []ReferenceWarning {
	for _, ci := range comp.Items {
		qty := multiplier.Mul(money.D(ci.Coefficient))

		if ci.Type == model.ItemComposition {
			if visited[ci.RefID] {
				warnings = append(warnings, ReferenceWarning{Kind: CycleDetected, RefID: ci.RefID, Owner: comp.ID})
				continue
			}
			child, ok := lookupComposition(comps, ci.RefID)
			if !ok {
				warnings = append(warnings, ReferenceWarning{Kind: MissingComposition, RefID: ci.RefID, Owner: comp.ID})
				continue
			}
			visited[child.ID] = true
			warnings = expandComposition(acc, child, qty, comps, inputs, visited, warnings)
			delete(visited, child.ID)
			continue
		}

		in, ok := lookupInput(inputs, ci.RefID)
		if !ok {
			warnings = append(warnings, ReferenceWarning{Kind: MissingInput, RefID: ci.RefID, Owner: comp.ID})
			acc.add(ci.RefID, ci.RefID, decimal.Zero)
			continue
		}
		price := ci.UnitPrice
		if price == 0 {
			price = in.Price
		}
		acc.add(in.ID, inputLabel(in), qty.Mul(money.D(price)))
	}
	return warnings
}

func lineKey(it model.BudgetItem) string {
	if it.ProductID != "" {
		return it.ProductID
	}
	return it.ID
}

func inputLabel(in model.Input) string {
	if in.Code == "" {
		return in.Name
	}
	return in.Code + " " + in.Name
}
