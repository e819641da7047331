package model

// ItemType says what a composition item points at.
type ItemType string

const (
	ItemInput       ItemType = "INPUT"
	ItemComposition ItemType = "COMPOSITION"
)

// CompositionItem references an input (or another composition) with a coefficient.
// UnitPrice is a snapshot taken when the item was attached.
type CompositionItem struct {
	ID          string   `json:"id"`
	Type        ItemType `json:"type"`
	RefID       string   `json:"refId"`
	Coefficient float64  `json:"coefficient"`
	UnitPrice   float64  `json:"unitPrice"`
}

// CompositionCost is the derived cost breakdown of a composition.
type CompositionCost struct {
	MaterialCost     float64 `json:"materialCost"`
	LaborCost        float64 `json:"laborCost"`
	EquipmentCost    float64 `json:"equipmentCost"`
	LaborWithCharges float64 `json:"laborWithCharges"`
	DirectCost       float64 `json:"directCost"`
	TotalWithBDI     float64 `json:"totalWithBdi"`
}

// Composition is a unit-cost build-up for one unit of work.
// Cost is derived and must only be set by pipeline.Recompose.
type Composition struct {
	ID               string            `json:"id"`
	Code             string            `json:"code"`
	Name             string            `json:"name"`
	Unit             string            `json:"unit"`
	Items            []CompositionItem `json:"items"`
	SocialChargesPct float64           `json:"socialChargesPct"`
	BDIPct           float64           `json:"bdiPct"`
	Cost             CompositionCost   `json:"cost"`
}
