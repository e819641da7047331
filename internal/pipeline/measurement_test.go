package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/orca/internal/model"
)

func measuredBudget(t *testing.T) model.Budget {
	t.Helper()
	b := model.Budget{
		ID:    "b1",
		Items: []model.BudgetItem{{ID: "wall", Name: "Alvenaria", Quantity: 100, UnitPrice: 50}},
		Measurements: []model.Measurement{{
			ID:      "m1",
			Name:    "Medição 1",
			Date:    day(t, "2025-01-31"),
			Items:   []model.MeasurementItem{{ItemID: "wall", QuantityExecuted: 30}},
			SavedAt: day(t, "2025-02-01"),
		}},
	}
	return RecomputeBudget(b)
}

func TestMeasurement_Accumulation(t *testing.T) {
	b := measuredBudget(t)
	draft := SetQuantity(NewDraft(b, "m2", "Medição 2", day(t, "2025-02-28")), "wall", 40)

	rows := MeasurementRows(b, draft)
	require.Len(t, rows, 1)
	assert.Equal(t, 30.0, rows[0].PreviousAccumulated)
	assert.Equal(t, 40.0, rows[0].Current)
	assert.Equal(t, 30.0, rows[0].Balance)
	assert.Equal(t, 2000.0, rows[0].CurrentValue)
	assert.False(t, rows[0].Exceeded)
	assert.False(t, HasExceeded(rows))
}

func TestMeasurement_OverMeasurementIsSoft(t *testing.T) {
	b := measuredBudget(t)
	draft := SetQuantity(NewDraft(b, "m2", "Medição 2", day(t, "2025-02-28")), "wall", 80)

	rows := MeasurementRows(b, draft)
	assert.Equal(t, -10.0, rows[0].Balance)
	assert.True(t, rows[0].Exceeded)

	saved := SaveMeasurement(b.Measurements, draft, time.Now())
	assert.Len(t, saved, 2, "a negative balance never blocks saving")
}

func TestPreviousAccumulated_IgnoresDates(t *testing.T) {
	ms := []model.Measurement{
		{ID: "m1", Date: day(t, "2025-03-01"), Items: []model.MeasurementItem{{ItemID: "x", QuantityExecuted: 5}}},
		{ID: "m2", Date: day(t, "2025-01-01"), Items: []model.MeasurementItem{{ItemID: "x", QuantityExecuted: 7}}},
	}
	// m1 is dated later than m2 yet still counts as previous when editing m2.
	assert.Equal(t, 5.0, PreviousAccumulated("x", ms, "m2"))
	assert.Equal(t, 12.0, PreviousAccumulated("x", ms, ""))
}

func TestBalanceAndCurrentValue(t *testing.T) {
	assert.Equal(t, 30.0, Balance(100, 30, 40))
	assert.Equal(t, -10.0, Balance(100, 30, 80))
	assert.Equal(t, 2000.0, CurrentValue(40, 50))
}

func TestSaveMeasurement_ReplacesByID(t *testing.T) {
	b := measuredBudget(t)
	edited, ok := OpenMeasurement(b, "m1")
	require.True(t, ok)
	edited = SetQuantity(edited, "wall", 35)

	at := day(t, "2025-03-01")
	saved := SaveMeasurement(b.Measurements, edited, at)
	require.Len(t, saved, 1)
	assert.Equal(t, 35.0, saved[0].Quantity("wall"))
	assert.Equal(t, at, saved[0].SavedAt)
	assert.Equal(t, 30.0, b.Measurements[0].Quantity("wall"), "history slice untouched")
}

func TestReconcile(t *testing.T) {
	m := model.Measurement{ID: "m1", Items: []model.MeasurementItem{
		{ItemID: "removed", QuantityExecuted: 9},
		{ItemID: "b", QuantityExecuted: 2},
	}}
	items := []model.BudgetItem{{ID: "a"}, {ID: "b"}}

	got := Reconcile(m, items)
	assert.Equal(t, []model.MeasurementItem{
		{ItemID: "a", QuantityExecuted: 0},
		{ItemID: "b", QuantityExecuted: 2},
	}, got.Items)
	assert.Len(t, m.Items, 2)
}

func TestOpenMeasurement_Missing(t *testing.T) {
	_, ok := OpenMeasurement(measuredBudget(t), "nope")
	assert.False(t, ok)
}

func TestAggregateProgress(t *testing.T) {
	b := model.Budget{
		Items: []model.BudgetItem{
			{ID: "a", Quantity: 100, UnitPrice: 50},
			{ID: "b", Quantity: 100, UnitPrice: 50},
		},
		Measurements: []model.Measurement{
			{ID: "m1", Items: []model.MeasurementItem{{ItemID: "a", QuantityExecuted: 30}}},
			{ID: "m2", Items: []model.MeasurementItem{
				{ItemID: "a", QuantityExecuted: 20},
				{ItemID: "gone", QuantityExecuted: 99},
			}},
		},
	}
	b = RecomputeBudget(b)

	got := AggregateProgress(b)
	assert.Equal(t, 50.0, got.MeasuredQty)
	assert.Equal(t, 200.0, got.ContractedQty)
	assert.Equal(t, 25.0, got.PhysicalPct)
	assert.Equal(t, 2500.0, got.MeasuredValue)
	assert.Equal(t, 25.0, got.FinancialPct)
}

func TestAggregateProgress_Empty(t *testing.T) {
	got := AggregateProgress(model.Budget{})
	assert.Equal(t, Progress{}, got)
}
