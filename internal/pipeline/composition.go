// Package pipeline holds the budget financial engine: composition rollups,
// budget totals, ABC classification, schedule allocation and measurements.
//
// Every function here is synchronous and side-effect free. Inputs are never
// mutated; results are fresh values.
package pipeline

import (
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/orca/internal/model"
	"github.com/theirongolddev/orca/internal/money"
)

// InputLookup resolves a priced input by id.
type InputLookup interface {
	Input(id string) (model.Input, bool)
}

// CompositionLookup resolves a composition by id.
type CompositionLookup interface {
	Composition(id string) (model.Composition, bool)
}

// InputMap is an in-memory InputLookup.
type InputMap map[string]model.Input

// Input implements InputLookup.
func (m InputMap) Input(id string) (model.Input, bool) {
	in, ok := m[id]
	return in, ok
}

// CompositionMap is an in-memory CompositionLookup.
type CompositionMap map[string]model.Composition

// Composition implements CompositionLookup.
func (m CompositionMap) Composition(id string) (model.Composition, bool) {
	c, ok := m[id]
	return c, ok
}

// ComputeComposition rolls up composition items into a cost breakdown.
//
// Labor and equipment inputs accumulate into their own buckets; everything
// else, including unresolved references and nested compositions, counts as
// material. Labor is loaded with social charges before the BDI markup is
// applied to the direct cost. Dangling input references are priced at zero
// and reported as warnings.
func ComputeComposition(
	items []model.CompositionItem,
	inputs InputLookup,
	socialChargesPct float64,
	bdiPct float64,
) (model.CompositionCost, []ReferenceWarning) {
	var material, labor, equipment decimal.Decimal
	var warnings []ReferenceWarning

	for _, it := range items {
		kind := model.KindMaterial
		price := it.UnitPrice

		if it.Type != model.ItemComposition {
			in, ok := lookupInput(inputs, it.RefID)
			if ok {
				kind = in.Kind
				if price == 0 {
					price = in.Price
				}
			} else {
				price = 0
				warnings = append(warnings, ReferenceWarning{Kind: MissingInput, RefID: it.RefID, Owner: it.ID})
			}
		}

		cost := money.Mul(it.Coefficient, price)
		switch kind {
		case model.KindLabor:
			labor = labor.Add(cost)
		case model.KindEquipment:
			equipment = equipment.Add(cost)
		default:
			material = material.Add(cost)
		}
	}

	laborWithCharges := money.Markup(labor, socialChargesPct)
	direct := material.Add(equipment).Add(laborWithCharges)

	return model.CompositionCost{
		MaterialCost:     money.F(material),
		LaborCost:        money.F(labor),
		EquipmentCost:    money.F(equipment),
		LaborWithCharges: money.F(laborWithCharges),
		DirectCost:       money.F(direct),
		TotalWithBDI:     money.F(money.Markup(direct, bdiPct)),
	}, warnings
}

// Recompose returns a copy of c with its derived cost recomputed.
func Recompose(c model.Composition, inputs InputLookup) (model.Composition, []ReferenceWarning) {
	out := c
	out.Items = append([]model.CompositionItem(nil), c.Items...)
	cost, warnings := ComputeComposition(out.Items, inputs, c.SocialChargesPct, c.BDIPct)
	out.Cost = cost
	for i := range warnings {
		warnings[i].Owner = c.ID
	}
	return out, warnings
}

// AttachInput builds a composition item that snapshots the input's current price.
func AttachInput(id string, in model.Input, coefficient float64) model.CompositionItem {
	return model.CompositionItem{
		ID:          id,
		Type:        model.ItemInput,
		RefID:       in.ID,
		Coefficient: coefficient,
		UnitPrice:   in.Price,
	}
}

// AttachComposition builds a composition item pointing at another composition,
// snapshotting its current total with BDI.
func AttachComposition(id string, c model.Composition, coefficient float64) model.CompositionItem {
	return model.CompositionItem{
		ID:          id,
		Type:        model.ItemComposition,
		RefID:       c.ID,
		Coefficient: coefficient,
		UnitPrice:   c.Cost.TotalWithBDI,
	}
}

func lookupInput(inputs InputLookup, id string) (model.Input, bool) {
	if inputs == nil {
		return model.Input{}, false
	}
	return inputs.Input(id)
}

func lookupComposition(comps CompositionLookup, id string) (model.Composition, bool) {
	if comps == nil {
		return model.Composition{}, false
	}
	return comps.Composition(id)
}
