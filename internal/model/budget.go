package model

import "time"

// NoStage is the label used for budget items without a stage.
const NoStage = "Sem Etapa"

// BudgetItem is one priced line of a budget.
type BudgetItem struct {
	ID            string  `json:"id"`
	ProductID     string  `json:"productId,omitempty"`
	CompositionID string  `json:"compositionId,omitempty"`
	Name          string  `json:"name"`
	Unit          string  `json:"unit,omitempty"`
	Stage         string  `json:"stage"`
	Quantity      float64 `json:"quantity"`
	UnitPrice     float64 `json:"unitPrice"`
	DiscountPct   float64 `json:"discount"`
	TaxRatePct    float64 `json:"taxRate"`
}

// StageLabel returns the item's stage, or NoStage when blank.
func (i BudgetItem) StageLabel() string {
	if i.Stage == "" {
		return NoStage
	}
	return i.Stage
}

// BudgetTotals holds the derived money figures of a budget.
type BudgetTotals struct {
	Subtotal      float64 `json:"subtotal"`
	TotalDiscount float64 `json:"totalDiscount"`
	TotalTax      float64 `json:"totalTax"`
	BDIAmount     float64 `json:"bdiAmount"`
	GrandTotal    float64 `json:"total"`
}

// Budget is the aggregate the engine operates on.
type Budget struct {
	ID                  string               `json:"id"`
	ClientID            string               `json:"clientId"`
	Name                string               `json:"name"`
	Items               []BudgetItem         `json:"items"`
	BDIPct              float64              `json:"bdi"`
	Totals              BudgetTotals         `json:"totals"`
	SchedulePeriods     []SchedulePeriod     `json:"schedulePeriods"`
	ScheduleAllocations []ScheduleAllocation `json:"scheduleAllocations"`
	BaselineAllocations []ScheduleAllocation `json:"baselineAllocations"`
	Measurements        []Measurement        `json:"measurements"`
	CreatedAt           time.Time            `json:"createdAt"`
	UpdatedAt           time.Time            `json:"updatedAt"`
}

// Item returns the budget item with the given id.
func (b Budget) Item(id string) (BudgetItem, bool) {
	for _, it := range b.Items {
		if it.ID == id {
			return it, true
		}
	}
	return BudgetItem{}, false
}
