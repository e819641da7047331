// Package state holds the in-memory workspace the CLI and TUI edit. Every
// action returns a new Workspace and leaves the receiver untouched.
package state

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/orca/internal/model"
	"github.com/theirongolddev/orca/internal/pipeline"
)

// ErrNotFound is returned when an action names an unknown record.
var ErrNotFound = errors.New("not found")

// Workspace is a reconstructible snapshot of budgets and the catalog.
// Treat it as immutable; use the action methods to derive new snapshots.
type Workspace struct {
	Budgets      map[string]model.Budget
	Compositions map[string]model.Composition
	Inputs       map[string]model.Input
}

// New builds a workspace, recomputing every budget's totals.
func New(budgets []model.Budget, comps []model.Composition, inputs []model.Input) Workspace {
	w := Workspace{
		Budgets:      make(map[string]model.Budget, len(budgets)),
		Compositions: make(map[string]model.Composition, len(comps)),
		Inputs:       make(map[string]model.Input, len(inputs)),
	}
	for _, b := range budgets {
		w.Budgets[b.ID] = pipeline.RecomputeBudget(b)
	}
	for _, c := range comps {
		w.Compositions[c.ID] = c
	}
	for _, in := range inputs {
		w.Inputs[in.ID] = in
	}
	return w
}

// Budget returns a budget by id.
func (w Workspace) Budget(id string) (model.Budget, error) {
	b, ok := w.Budgets[id]
	if !ok {
		return model.Budget{}, fmt.Errorf("budget %s: %w", id, ErrNotFound)
	}
	return b, nil
}

// InputLookup exposes the workspace inputs to the engine.
func (w Workspace) InputLookup() pipeline.InputMap {
	return pipeline.InputMap(w.Inputs)
}

// CompositionLookup exposes the workspace compositions to the engine.
func (w Workspace) CompositionLookup() pipeline.CompositionMap {
	return pipeline.CompositionMap(w.Compositions)
}

func (w Workspace) withBudgets(budgets map[string]model.Budget) Workspace {
	return Workspace{Budgets: budgets, Compositions: w.Compositions, Inputs: w.Inputs}
}

// updateBudget applies fn to a copy of budget id, validates the result and
// recomputes its totals.
func (w Workspace) updateBudget(id string, fn func(b model.Budget) (model.Budget, error)) (Workspace, error) {
	b, err := w.Budget(id)
	if err != nil {
		return w, err
	}
	next, err := fn(b)
	if err != nil {
		return w, err
	}
	if err := pipeline.ValidateBudget(next); err != nil {
		return w, fmt.Errorf("budget %s: %w", id, err)
	}
	budgets := maps.Clone(w.Budgets)
	budgets[id] = pipeline.RecomputeBudget(next)
	return w.withBudgets(budgets), nil
}

// AddBudget validates and inserts b, assigning an id when empty.
func (w Workspace) AddBudget(b model.Budget) (Workspace, model.Budget, error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if _, ok := w.Budgets[b.ID]; ok {
		return w, model.Budget{}, fmt.Errorf("budget %s already exists", b.ID)
	}
	if err := pipeline.ValidateBudget(b); err != nil {
		return w, model.Budget{}, fmt.Errorf("budget %s: %w", b.ID, err)
	}
	b = pipeline.RecomputeBudget(b)
	budgets := maps.Clone(w.Budgets)
	if budgets == nil {
		budgets = make(map[string]model.Budget)
	}
	budgets[b.ID] = b
	return w.withBudgets(budgets), b, nil
}

// UpsertItem adds or replaces a budget item. An item linked to a known
// composition with no unit price is priced at the composition's total.
func (w Workspace) UpsertItem(budgetID string, it model.BudgetItem) (Workspace, error) {
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	if it.CompositionID != "" && it.UnitPrice == 0 {
		if c, ok := w.Compositions[it.CompositionID]; ok {
			it.UnitPrice = c.Cost.TotalWithBDI
			if it.Unit == "" {
				it.Unit = c.Unit
			}
		}
	}
	if err := pipeline.ValidateBudgetItem(it); err != nil {
		return w, fmt.Errorf("item %s: %w", it.ID, err)
	}

	return w.updateBudget(budgetID, func(b model.Budget) (model.Budget, error) {
		items := make([]model.BudgetItem, 0, len(b.Items)+1)
		replaced := false
		for _, existing := range b.Items {
			if existing.ID == it.ID {
				items = append(items, it)
				replaced = true
				continue
			}
			items = append(items, existing)
		}
		if !replaced {
			items = append(items, it)
		}
		b.Items = items
		return b, nil
	})
}

// RemoveItem drops a budget item. Stored measurements keep their record of
// it; they are reconciled when next opened.
func (w Workspace) RemoveItem(budgetID, itemID string) (Workspace, error) {
	return w.updateBudget(budgetID, func(b model.Budget) (model.Budget, error) {
		if _, ok := b.Item(itemID); !ok {
			return b, fmt.Errorf("item %s: %w", itemID, ErrNotFound)
		}
		items := make([]model.BudgetItem, 0, len(b.Items))
		for _, it := range b.Items {
			if it.ID != itemID {
				items = append(items, it)
			}
		}
		b.Items = items
		return b, nil
	})
}

// SetBDI sets the budget-level BDI percentage.
func (w Workspace) SetBDI(budgetID string, pct float64) (Workspace, error) {
	return w.updateBudget(budgetID, func(b model.Budget) (model.Budget, error) {
		b.BDIPct = pct
		return b, nil
	})
}

// AddPeriod appends a schedule period, assigning an id when empty.
func (w Workspace) AddPeriod(budgetID string, p model.SchedulePeriod) (Workspace, model.SchedulePeriod, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	next, err := w.updateBudget(budgetID, func(b model.Budget) (model.Budget, error) {
		b.SchedulePeriods = pipeline.AddPeriod(b.SchedulePeriods, p)
		return b, nil
	})
	return next, p, err
}

// RemovePeriod drops a period and the live allocations referencing it.
func (w Workspace) RemovePeriod(budgetID, periodID string) (Workspace, error) {
	return w.updateBudget(budgetID, func(b model.Budget) (model.Budget, error) {
		b.SchedulePeriods, b.ScheduleAllocations = pipeline.RemovePeriod(b.SchedulePeriods, b.ScheduleAllocations, periodID)
		return b, nil
	})
}

// SetAllocation sets the share of stage executed in period. Zero removes it.
func (w Workspace) SetAllocation(budgetID, stage, periodID string, pct float64) (Workspace, error) {
	if math.IsNaN(pct) || pct < 0 || pct > 100 {
		return w, &pipeline.ValidationError{Field: "percentage", Reason: fmt.Sprintf("%.2f is outside [0,100]", pct)}
	}
	return w.updateBudget(budgetID, func(b model.Budget) (model.Budget, error) {
		known := false
		for _, p := range b.SchedulePeriods {
			if p.ID == periodID {
				known = true
				break
			}
		}
		if !known {
			return b, fmt.Errorf("period %s: %w", periodID, ErrNotFound)
		}
		b.ScheduleAllocations = pipeline.Allocate(b.ScheduleAllocations, stage, periodID, pct)
		return b, nil
	})
}

// SnapshotBaseline freezes the current allocations as the baseline.
func (w Workspace) SnapshotBaseline(budgetID string) (Workspace, error) {
	return w.updateBudget(budgetID, func(b model.Budget) (model.Budget, error) {
		b.BaselineAllocations = pipeline.SnapshotBaseline(b.ScheduleAllocations)
		return b, nil
	})
}

// NewMeasurement starts a draft covering every current budget item.
func (w Workspace) NewMeasurement(budgetID, name string, date time.Time) (model.Measurement, error) {
	b, err := w.Budget(budgetID)
	if err != nil {
		return model.Measurement{}, err
	}
	return pipeline.NewDraft(b, uuid.NewString(), name, date), nil
}

// OpenMeasurement returns a stored measurement reconciled against the
// budget's current items.
func (w Workspace) OpenMeasurement(budgetID, measurementID string) (model.Measurement, error) {
	b, err := w.Budget(budgetID)
	if err != nil {
		return model.Measurement{}, err
	}
	m, ok := pipeline.OpenMeasurement(b, measurementID)
	if !ok {
		return model.Measurement{}, fmt.Errorf("measurement %s: %w", measurementID, ErrNotFound)
	}
	return m, nil
}

// SaveMeasurement persists m into the budget, replacing any record with the
// same id.
func (w Workspace) SaveMeasurement(budgetID string, m model.Measurement, at time.Time) (Workspace, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	for _, mi := range m.Items {
		if math.IsNaN(mi.QuantityExecuted) || math.IsInf(mi.QuantityExecuted, 0) || mi.QuantityExecuted < 0 {
			return w, fmt.Errorf("measurement %s: %w", m.ID,
				&pipeline.ValidationError{Field: "quantityExecuted", Reason: "must be a finite, non-negative number"})
		}
	}
	return w.updateBudget(budgetID, func(b model.Budget) (model.Budget, error) {
		b.Measurements = pipeline.SaveMeasurement(b.Measurements, m, at)
		return b, nil
	})
}

// UpsertComposition prices c against the workspace inputs and stores it.
func (w Workspace) UpsertComposition(c model.Composition) (Workspace, model.Composition, []pipeline.ReferenceWarning, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if err := pipeline.ValidateComposition(c); err != nil {
		return w, model.Composition{}, nil, fmt.Errorf("composition %s: %w", c.ID, err)
	}
	priced, warnings := pipeline.Recompose(c, w.InputLookup())

	comps := maps.Clone(w.Compositions)
	if comps == nil {
		comps = make(map[string]model.Composition)
	}
	comps[priced.ID] = priced
	return Workspace{Budgets: w.Budgets, Compositions: comps, Inputs: w.Inputs}, priced, warnings, nil
}

// UpsertInput stores a catalog input. Compositions keep the prices they
// captured when their items were attached.
func (w Workspace) UpsertInput(in model.Input) (Workspace, error) {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	if !in.Kind.Valid() {
		return w, &pipeline.ValidationError{Field: "kind", Reason: "unknown input kind " + string(in.Kind)}
	}
	if math.IsNaN(in.Price) || math.IsInf(in.Price, 0) || in.Price < 0 {
		return w, &pipeline.ValidationError{Field: "price", Reason: "must be a finite, non-negative number"}
	}
	inputs := maps.Clone(w.Inputs)
	if inputs == nil {
		inputs = make(map[string]model.Input)
	}
	inputs[in.ID] = in
	return Workspace{Budgets: w.Budgets, Compositions: w.Compositions, Inputs: inputs}, nil
}
