package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/orca/internal/model"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func TestStages_Ordering(t *testing.T) {
	items := []model.BudgetItem{
		{ID: "1", Stage: "10.0 Acabamento", Quantity: 1, UnitPrice: 1},
		{ID: "2", Stage: "Administração", Quantity: 1, UnitPrice: 1},
		{ID: "3", Stage: "2.0 Estrutura", Quantity: 2, UnitPrice: 3},
		{ID: "4", Quantity: 1, UnitPrice: 1},
		{ID: "5", Stage: "1.0 Fundação", Quantity: 1, UnitPrice: 1},
		{ID: "6", Stage: "2.0 Estrutura", Quantity: 1, UnitPrice: 4},
	}

	got := Stages(items)
	var labels []string
	for _, s := range got {
		labels = append(labels, s.Stage)
	}
	assert.Equal(t, []string{"1.0 Fundação", "2.0 Estrutura", "10.0 Acabamento", "Administração", model.NoStage}, labels)
	assert.Equal(t, 10.0, got[1].Value)
	assert.Equal(t, 2, got[1].ItemCount)
}

func TestAllocate_Sparse(t *testing.T) {
	var allocs []model.ScheduleAllocation
	allocs = Allocate(allocs, "S", "p1", 60)
	allocs = Allocate(allocs, "S", "p2", 40)
	require.Len(t, allocs, 2)

	updated := Allocate(allocs, "S", "p1", 70)
	assert.Equal(t, 70.0, Allocation(updated, "S", "p1"))
	assert.Equal(t, 60.0, Allocation(allocs, "S", "p1"), "original untouched")

	removed := Allocate(updated, "S", "p1", 0)
	require.Len(t, removed, 1)
	assert.Equal(t, 0.0, Allocation(removed, "S", "p1"))
}

func TestValidateStage(t *testing.T) {
	allocs := []model.ScheduleAllocation{
		{Stage: "S", PeriodID: "p1", Percentage: 60},
		{Stage: "S", PeriodID: "p2", Percentage: 40},
		{Stage: "T", PeriodID: "p1", Percentage: 33.33},
		{Stage: "T", PeriodID: "p2", Percentage: 33.33},
		{Stage: "T", PeriodID: "p3", Percentage: 33.33},
	}

	s := ValidateStage("S", allocs)
	assert.True(t, s.Valid)
	assert.Equal(t, 100.0, s.Sum)

	tv := ValidateStage("T", allocs)
	assert.True(t, tv.Valid, "99.99 is within tolerance")

	u := ValidateStage("U", allocs)
	assert.False(t, u.Valid)
	assert.Equal(t, 0.0, u.Sum)
}

func TestValidateSchedule_FlagsIncompleteStages(t *testing.T) {
	items := []model.BudgetItem{
		{ID: "a", Stage: "1 Obra", Quantity: 1, UnitPrice: 1},
		{ID: "b", Stage: "2 Final", Quantity: 1, UnitPrice: 1},
	}
	allocs := []model.ScheduleAllocation{
		{Stage: "1 Obra", PeriodID: "p1", Percentage: 100},
		{Stage: "2 Final", PeriodID: "p1", Percentage: 50},
	}

	got := ValidateSchedule(items, allocs)
	require.Len(t, got, 2)
	assert.True(t, got[0].Valid)
	assert.False(t, got[1].Valid)
	assert.Equal(t, 50.0, got[1].Sum)
}

func TestPeriodTotals(t *testing.T) {
	items := []model.BudgetItem{{ID: "a", Stage: "S", Quantity: 100, UnitPrice: 100}}
	periods := []model.SchedulePeriod{
		{ID: "p2", Name: "Fev", Date: day(t, "2025-02-01")},
		{ID: "p1", Name: "Jan", Date: day(t, "2025-01-01")},
	}
	allocs := []model.ScheduleAllocation{
		{Stage: "S", PeriodID: "p1", Percentage: 60},
		{Stage: "S", PeriodID: "p2", Percentage: 40},
	}

	got := PeriodTotals(periods, items, allocs)
	require.Len(t, got, 2)
	assert.Equal(t, "p1", got[0].PeriodID)
	assert.Equal(t, 6000.0, got[0].Value)
	assert.Equal(t, 4000.0, got[1].Value)
	assert.Equal(t, 60.0, got[0].CumulativePercent)
	assert.Equal(t, 100.0, got[1].CumulativePercent)
	assert.Equal(t, 10000.0, got[1].CumulativeValue)

	assert.Equal(t, 6000.0, PeriodValue(periods[1], items, allocs))
	assert.Equal(t, "p2", periods[0].ID, "input order untouched")
}

func TestPeriodTotals_ShareOfSubtotal(t *testing.T) {
	b := RecomputeBudget(model.Budget{
		BDIPct: 25,
		Items:  []model.BudgetItem{{ID: "a", Stage: "S", Quantity: 100, UnitPrice: 100}},
		SchedulePeriods: []model.SchedulePeriod{
			{ID: "p1", Name: "Jan", Date: day(t, "2025-01-01")},
		},
		ScheduleAllocations: []model.ScheduleAllocation{{Stage: "S", PeriodID: "p1", Percentage: 100}},
		Measurements: []model.Measurement{
			{ID: "m1", Items: []model.MeasurementItem{{ItemID: "a", QuantityExecuted: 100}}},
		},
	})
	require.Equal(t, 12500.0, b.Totals.GrandTotal)

	got := PeriodTotals(b.SchedulePeriods, b.Items, b.ScheduleAllocations)
	require.Len(t, got, 1)
	assert.Equal(t, 100.0, got[0].CumulativePercent)
	assert.Equal(t, 80.0, AggregateProgress(b).FinancialPct)
}

func TestPeriodTotals_EmptyBudget(t *testing.T) {
	got := PeriodTotals([]model.SchedulePeriod{{ID: "p1"}}, nil, nil)
	require.Len(t, got, 1)
	assert.Zero(t, got[0].CumulativePercent)
}

func TestSnapshotBaseline_DeepCopy(t *testing.T) {
	live := []model.ScheduleAllocation{{Stage: "S", PeriodID: "p1", Percentage: 100}}
	baseline := SnapshotBaseline(live)

	live[0].Percentage = 10
	assert.Equal(t, 100.0, baseline[0].Percentage)
	assert.Nil(t, SnapshotBaseline(nil))
}

func TestCompareBaseline(t *testing.T) {
	items := []model.BudgetItem{{ID: "a", Stage: "S", Quantity: 1, UnitPrice: 1000}}
	periods := []model.SchedulePeriod{
		{ID: "p1", Date: day(t, "2025-01-01")},
		{ID: "p2", Date: day(t, "2025-02-01")},
	}
	baseline := []model.ScheduleAllocation{{Stage: "S", PeriodID: "p1", Percentage: 100}}
	current := []model.ScheduleAllocation{
		{Stage: "S", PeriodID: "p1", Percentage: 50},
		{Stage: "S", PeriodID: "p2", Percentage: 50},
	}

	got := CompareBaseline(periods, items, current, baseline)
	require.Len(t, got, 2)
	assert.Equal(t, -500.0, got[0].Delta)
	assert.Equal(t, 500.0, got[1].Delta)
	assert.Equal(t, 100.0, got[0].BaselineCumulativePercent)
	assert.Equal(t, 50.0, got[0].PlannedCumulativePercent)
}

func TestAddRemovePeriod(t *testing.T) {
	items := []model.BudgetItem{{ID: "a", Stage: "S", Quantity: 2, UnitPrice: 50}}
	periods := []model.SchedulePeriod{{ID: "p1"}}
	allocs := []model.ScheduleAllocation{
		{Stage: "S", PeriodID: "p1", Percentage: 50},
		{Stage: "S", PeriodID: "p2", Percentage: 50},
	}

	before := StageValue("S", items)
	periods = AddPeriod(periods, model.SchedulePeriod{ID: "p2"})
	require.Len(t, periods, 2)

	periods, allocs = RemovePeriod(periods, allocs, "p2")
	assert.Len(t, periods, 1)
	require.Len(t, allocs, 1)
	assert.Equal(t, "p1", allocs[0].PeriodID)
	assert.Equal(t, before, StageValue("S", items))
}
