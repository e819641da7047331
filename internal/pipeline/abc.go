package pipeline

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/orca/internal/model"
	"github.com/theirongolddev/orca/internal/money"
)

// Pareto cutoffs on cumulative percentage.
var (
	classACutoff = decimal.NewFromInt(80)
	classBCutoff = decimal.NewFromInt(95)
)

// AbcInput is one weighted contributor to classify.
type AbcInput struct {
	ID    string
	Label string
	Value float64
}

// ClassSummary totals the entries that fell into one class.
type ClassSummary struct {
	Count int
	Value float64
	Share float64
}

// Classify ranks contributors by value and buckets them into Pareto classes.
//
// Entries are sorted descending by value; equal values keep their input
// order. A cumulative share up to 80% is class A, up to 95% class B and the
// rest class C. When the total is not positive the result is empty.
func Classify(entries []AbcInput) []model.AbcEntry {
	sorted := make([]AbcInput, len(entries))
	copy(sorted, entries)

	total := decimal.Zero
	for _, e := range sorted {
		total = total.Add(money.D(e.Value))
	}
	if !total.IsPositive() {
		return []model.AbcEntry{}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Value > sorted[j].Value
	})

	out := make([]model.AbcEntry, 0, len(sorted))
	cumulative := decimal.Zero
	for _, e := range sorted {
		value := money.D(e.Value)
		cumulative = cumulative.Add(value)
		cumPct := money.Share(cumulative, total)

		out = append(out, model.AbcEntry{
			ID:                   e.ID,
			Label:                e.Label,
			Value:                e.Value,
			Percentage:           money.F(money.Share(value, total)),
			CumulativePercentage: money.F(cumPct),
			Class:                classFor(cumPct),
		})
	}
	return out
}

func classFor(cumPct decimal.Decimal) model.AbcClass {
	switch {
	case cumPct.LessThanOrEqual(classACutoff):
		return model.ClassA
	case cumPct.LessThanOrEqual(classBCutoff):
		return model.ClassB
	default:
		return model.ClassC
	}
}

// ClassifyBudgetItems classifies budget lines by their line total.
func ClassifyBudgetItems(items []model.BudgetItem) []model.AbcEntry {
	entries := make([]AbcInput, 0, len(items))
	for _, it := range items {
		entries = append(entries, AbcInput{ID: it.ID, Label: it.Name, Value: LineTotal(it)})
	}
	return Classify(entries)
}

// ClassifyInputs expands composition lines into their inputs and classifies
// the aggregated inputs.
func ClassifyInputs(
	items []model.BudgetItem,
	comps CompositionLookup,
	inputs InputLookup,
) ([]model.AbcEntry, []ReferenceWarning) {
	entries, warnings := ExpandInputs(items, comps, inputs)
	return Classify(entries), warnings
}

// SummarizeClasses totals count, value and share per class.
func SummarizeClasses(entries []model.AbcEntry) map[model.AbcClass]ClassSummary {
	out := map[model.AbcClass]ClassSummary{
		model.ClassA: {},
		model.ClassB: {},
		model.ClassC: {},
	}
	for _, e := range entries {
		s := out[e.Class]
		s.Count++
		s.Value = money.F(money.D(s.Value).Add(money.D(e.Value)))
		s.Share = money.F(money.D(s.Share).Add(money.D(e.Percentage)))
		out[e.Class] = s
	}
	return out
}
