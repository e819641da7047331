package pipeline

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/orca/internal/model"
	"github.com/theirongolddev/orca/internal/money"
)

// MeasurementRow is the per-item view of a measurement being edited.
type MeasurementRow struct {
	ItemID              string
	Name                string
	Unit                string
	Contracted          float64
	UnitPrice           float64
	PreviousAccumulated float64
	Current             float64
	Balance             float64
	CurrentValue        float64
	Exceeded            bool
}

// Progress is the physical and financial completion of a budget.
type Progress struct {
	MeasuredQty   float64
	ContractedQty float64
	PhysicalPct   float64
	MeasuredValue float64
	FinancialPct  float64
}

// PreviousAccumulated sums the executed quantity of itemID over every
// measurement except excludingID. Dates are not considered: every other
// stored measurement counts as previous.
func PreviousAccumulated(itemID string, measurements []model.Measurement, excludingID string) float64 {
	return money.F(previousAccumulated(itemID, measurements, excludingID))
}

func previousAccumulated(itemID string, measurements []model.Measurement, excludingID string) decimal.Decimal {
	total := decimal.Zero
	for _, m := range measurements {
		if m.ID == excludingID {
			continue
		}
		for _, mi := range m.Items {
			if mi.ItemID == itemID {
				total = total.Add(money.D(mi.QuantityExecuted))
			}
		}
	}
	return total
}

// Balance returns contracted - previous - current. A negative balance means
// the item was over-measured; it is a warning, not an error.
func Balance(contracted, previous, current float64) float64 {
	return money.F(money.D(contracted).Sub(money.D(previous)).Sub(money.D(current)))
}

// CurrentValue returns the billed value of the current quantity.
func CurrentValue(currentQty, unitPrice float64) float64 {
	return money.F(money.Mul(currentQty, unitPrice))
}

// MeasurementRows builds one row per budget item for the measurement m,
// flagging items whose balance went negative.
func MeasurementRows(b model.Budget, m model.Measurement) []MeasurementRow {
	rows := make([]MeasurementRow, 0, len(b.Items))
	for _, it := range b.Items {
		prev := PreviousAccumulated(it.ID, b.Measurements, m.ID)
		cur := m.Quantity(it.ID)
		bal := Balance(it.Quantity, prev, cur)
		rows = append(rows, MeasurementRow{
			ItemID:              it.ID,
			Name:                it.Name,
			Unit:                it.Unit,
			Contracted:          it.Quantity,
			UnitPrice:           it.UnitPrice,
			PreviousAccumulated: prev,
			Current:             cur,
			Balance:             bal,
			CurrentValue:        CurrentValue(cur, it.UnitPrice),
			Exceeded:            bal < 0,
		})
	}
	return rows
}

// HasExceeded reports whether any row is over-measured.
func HasExceeded(rows []MeasurementRow) bool {
	for _, r := range rows {
		if r.Exceeded {
			return true
		}
	}
	return false
}

// AggregateProgress computes physical progress (measured over contracted
// quantity) and financial progress (measured value over the grand total)
// across all stored measurements. Quantities recorded for items no longer in
// the budget are ignored.
func AggregateProgress(b model.Budget) Progress {
	var measured, contracted, value decimal.Decimal

	prices := make(map[string]decimal.Decimal, len(b.Items))
	for _, it := range b.Items {
		contracted = contracted.Add(money.D(it.Quantity))
		prices[it.ID] = money.D(it.UnitPrice)
	}

	for _, m := range b.Measurements {
		for _, mi := range m.Items {
			price, ok := prices[mi.ItemID]
			if !ok {
				continue
			}
			q := money.D(mi.QuantityExecuted)
			measured = measured.Add(q)
			value = value.Add(q.Mul(price))
		}
	}

	return Progress{
		MeasuredQty:   money.F(measured),
		ContractedQty: money.F(contracted),
		PhysicalPct:   money.F(money.Share(measured, contracted)),
		MeasuredValue: money.F(value),
		FinancialPct:  money.F(money.Share(value, money.D(b.Totals.GrandTotal))),
	}
}

// Reconcile aligns a measurement's items with the budget's current items:
// items missing from m get quantity 0 and items no longer in the budget are
// dropped. Item order follows the budget.
func Reconcile(m model.Measurement, items []model.BudgetItem) model.Measurement {
	out := m
	out.Items = make([]model.MeasurementItem, 0, len(items))
	for _, it := range items {
		out.Items = append(out.Items, model.MeasurementItem{
			ItemID:           it.ID,
			QuantityExecuted: m.Quantity(it.ID),
		})
	}
	return out
}

// NewDraft starts an unsaved measurement covering every budget item.
func NewDraft(b model.Budget, id, name string, date time.Time) model.Measurement {
	return Reconcile(model.Measurement{ID: id, Name: name, Date: date}, b.Items)
}

// OpenMeasurement returns the stored measurement id reconciled against the
// budget's current items.
func OpenMeasurement(b model.Budget, id string) (model.Measurement, bool) {
	for _, m := range b.Measurements {
		if m.ID == id {
			return Reconcile(m, b.Items), true
		}
	}
	return model.Measurement{}, false
}

// SetQuantity returns a copy of m with itemID's executed quantity set.
func SetQuantity(m model.Measurement, itemID string, qty float64) model.Measurement {
	out := m
	out.Items = make([]model.MeasurementItem, 0, len(m.Items)+1)
	found := false
	for _, mi := range m.Items {
		if mi.ItemID == itemID {
			mi.QuantityExecuted = qty
			found = true
		}
		out.Items = append(out.Items, mi)
	}
	if !found {
		out.Items = append(out.Items, model.MeasurementItem{ItemID: itemID, QuantityExecuted: qty})
	}
	return out
}

// SaveMeasurement stores m, replacing any measurement with the same id.
// Measurements are never removed here.
func SaveMeasurement(measurements []model.Measurement, m model.Measurement, at time.Time) []model.Measurement {
	saved := m
	saved.Items = append([]model.MeasurementItem(nil), m.Items...)
	saved.SavedAt = at

	out := make([]model.Measurement, 0, len(measurements)+1)
	replaced := false
	for _, existing := range measurements {
		if existing.ID == m.ID {
			out = append(out, saved)
			replaced = true
			continue
		}
		out = append(out, existing)
	}
	if !replaced {
		out = append(out, saved)
	}
	return out
}
