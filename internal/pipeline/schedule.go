package pipeline

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/orca/internal/model"
	"github.com/theirongolddev/orca/internal/money"
)

// stageTolerance is how far a stage's allocation sum may drift from 100%.
var stageTolerance = decimal.NewFromFloat(0.1)

var leadingNumber = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)`)

// StageSummary is one work-breakdown group of budget items.
type StageSummary struct {
	Stage     string
	Value     float64
	ItemCount int
}

// StageValidation reports whether a stage is fully allocated.
type StageValidation struct {
	Stage string
	Sum   float64
	Valid bool
}

// PeriodTotal is the scheduled value of one period.
type PeriodTotal struct {
	PeriodID          string
	Name              string
	Date              time.Time
	Value             float64
	CumulativeValue   float64
	CumulativePercent float64
}

// BaselineDelta compares the live plan with the baseline for one period.
type BaselineDelta struct {
	PeriodID                  string
	Name                      string
	Planned                   float64
	Baseline                  float64
	Delta                     float64
	PlannedCumulativePercent  float64
	BaselineCumulativePercent float64
}

// Stages groups budget items by stage label.
// Labels led by a number sort numerically; the rest sort lexicographically after them.
func Stages(items []model.BudgetItem) []StageSummary {
	byStage := make(map[string]*StageSummary)
	values := make(map[string]decimal.Decimal)

	for _, it := range items {
		label := it.StageLabel()
		s, ok := byStage[label]
		if !ok {
			s = &StageSummary{Stage: label}
			byStage[label] = s
		}
		s.ItemCount++
		values[label] = values[label].Add(lineTotal(it))
	}

	stages := make([]StageSummary, 0, len(byStage))
	for label, s := range byStage {
		s.Value = money.F(values[label])
		stages = append(stages, *s)
	}
	sort.Slice(stages, func(i, j int) bool {
		return stageLess(stages[i].Stage, stages[j].Stage)
	})
	return stages
}

// StageLabels returns the ordered stage labels of items.
func StageLabels(items []model.BudgetItem) []string {
	stages := Stages(items)
	labels := make([]string, len(stages))
	for i, s := range stages {
		labels[i] = s.Stage
	}
	return labels
}

func stageLess(a, b string) bool {
	na, okA := stageNumber(a)
	nb, okB := stageNumber(b)
	switch {
	case okA && okB:
		if na != nb {
			return na < nb
		}
		return a < b
	case okA:
		return true
	case okB:
		return false
	default:
		return a < b
	}
}

func stageNumber(label string) (float64, bool) {
	m := leadingNumber.FindStringSubmatch(label)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// StageValue sums quantity x unit price over the items in stage.
func StageValue(stage string, items []model.BudgetItem) float64 {
	return money.F(stageValue(stage, items))
}

func stageValue(stage string, items []model.BudgetItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		if it.StageLabel() == stage {
			total = total.Add(lineTotal(it))
		}
	}
	return total
}

// Allocate sets the percentage of stage scheduled in periodID.
// A zero, negative or NaN percentage removes the allocation.
func Allocate(allocs []model.ScheduleAllocation, stage, periodID string, pct float64) []model.ScheduleAllocation {
	remove := pct <= 0 || math.IsNaN(pct)
	out := make([]model.ScheduleAllocation, 0, len(allocs)+1)
	found := false

	for _, a := range allocs {
		if a.Stage == stage && a.PeriodID == periodID {
			found = true
			if remove {
				continue
			}
			a.Percentage = pct
		}
		out = append(out, a)
	}
	if !found && !remove {
		out = append(out, model.ScheduleAllocation{Stage: stage, PeriodID: periodID, Percentage: pct})
	}
	return out
}

// Allocation returns the percentage of stage scheduled in periodID, or 0.
func Allocation(allocs []model.ScheduleAllocation, stage, periodID string) float64 {
	for _, a := range allocs {
		if a.Stage == stage && a.PeriodID == periodID {
			return a.Percentage
		}
	}
	return 0
}

// ValidateStage sums the stage's percentages across periods.
// The stage is valid when the sum is within 0.1 of 100. Nothing is normalized.
func ValidateStage(stage string, allocs []model.ScheduleAllocation) StageValidation {
	sum := decimal.Zero
	for _, a := range allocs {
		if a.Stage == stage {
			sum = sum.Add(money.D(a.Percentage))
		}
	}
	return StageValidation{
		Stage: stage,
		Sum:   money.F(sum),
		Valid: sum.Sub(money.Hundred).Abs().LessThan(stageTolerance),
	}
}

// ValidateSchedule validates every stage present in items.
func ValidateSchedule(items []model.BudgetItem, allocs []model.ScheduleAllocation) []StageValidation {
	labels := StageLabels(items)
	out := make([]StageValidation, 0, len(labels))
	for _, stage := range labels {
		out = append(out, ValidateStage(stage, allocs))
	}
	return out
}

// SortPeriods returns periods ordered by date; equal dates keep their order.
func SortPeriods(periods []model.SchedulePeriod) []model.SchedulePeriod {
	out := append([]model.SchedulePeriod(nil), periods...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// PeriodValue sums each stage's value weighted by its allocation in period.
func PeriodValue(period model.SchedulePeriod, items []model.BudgetItem, allocs []model.ScheduleAllocation) float64 {
	return money.F(periodTotal(period.ID, items, allocs))
}

func periodTotal(periodID string, items []model.BudgetItem, allocs []model.ScheduleAllocation) decimal.Decimal {
	total := decimal.Zero
	for _, a := range allocs {
		if a.PeriodID != periodID {
			continue
		}
		total = total.Add(money.Pct(stageValue(a.Stage, items), a.Percentage))
	}
	return total
}

// PeriodTotals computes every period's value and the running cumulative
// share of the budget subtotal, with periods in date order. The share is
// taken over the subtotal, not the grand total AggregateProgress uses for
// FinancialPct, so the two differ once any markup applies.
func PeriodTotals(periods []model.SchedulePeriod, items []model.BudgetItem, allocs []model.ScheduleAllocation) []PeriodTotal {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(lineTotal(it))
	}

	ordered := SortPeriods(periods)
	out := make([]PeriodTotal, 0, len(ordered))
	cumulative := decimal.Zero
	for _, p := range ordered {
		v := periodTotal(p.ID, items, allocs)
		cumulative = cumulative.Add(v)
		out = append(out, PeriodTotal{
			PeriodID:          p.ID,
			Name:              p.Name,
			Date:              p.Date,
			Value:             money.F(v),
			CumulativeValue:   money.F(cumulative),
			CumulativePercent: money.F(money.Share(cumulative, subtotal)),
		})
	}
	return out
}

// SnapshotBaseline deep-copies the live allocations into a baseline.
func SnapshotBaseline(allocs []model.ScheduleAllocation) []model.ScheduleAllocation {
	if allocs == nil {
		return nil
	}
	out := make([]model.ScheduleAllocation, len(allocs))
	copy(out, allocs)
	return out
}

// CompareBaseline lines up the live plan against the baseline, period by period.
// The baseline is display data and never feeds budget totals.
func CompareBaseline(
	periods []model.SchedulePeriod,
	items []model.BudgetItem,
	current []model.ScheduleAllocation,
	baseline []model.ScheduleAllocation,
) []BaselineDelta {
	planned := PeriodTotals(periods, items, current)
	base := PeriodTotals(periods, items, baseline)

	out := make([]BaselineDelta, len(planned))
	for i := range planned {
		out[i] = BaselineDelta{
			PeriodID:                  planned[i].PeriodID,
			Name:                      planned[i].Name,
			Planned:                   planned[i].Value,
			Baseline:                  base[i].Value,
			Delta:                     money.F(money.D(planned[i].Value).Sub(money.D(base[i].Value))),
			PlannedCumulativePercent:  planned[i].CumulativePercent,
			BaselineCumulativePercent: base[i].CumulativePercent,
		}
	}
	return out
}

// AddPeriod appends a period. Stage values are unaffected.
func AddPeriod(periods []model.SchedulePeriod, p model.SchedulePeriod) []model.SchedulePeriod {
	out := make([]model.SchedulePeriod, 0, len(periods)+1)
	out = append(out, periods...)
	return append(out, p)
}

// RemovePeriod drops the period and every live allocation referencing it.
func RemovePeriod(
	periods []model.SchedulePeriod,
	allocs []model.ScheduleAllocation,
	periodID string,
) ([]model.SchedulePeriod, []model.ScheduleAllocation) {
	outPeriods := make([]model.SchedulePeriod, 0, len(periods))
	for _, p := range periods {
		if p.ID != periodID {
			outPeriods = append(outPeriods, p)
		}
	}
	outAllocs := make([]model.ScheduleAllocation, 0, len(allocs))
	for _, a := range allocs {
		if a.PeriodID != periodID {
			outAllocs = append(outAllocs, a)
		}
	}
	return outPeriods, outAllocs
}
