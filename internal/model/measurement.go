package model

import "time"

// MeasurementItem is the quantity executed for one budget item.
type MeasurementItem struct {
	ItemID           string  `json:"itemId"`
	QuantityExecuted float64 `json:"quantityExecuted"`
}

// Measurement is a progress-billing snapshot. A zero SavedAt marks a draft.
type Measurement struct {
	ID      string            `json:"id"`
	Name    string            `json:"name"`
	Date    time.Time         `json:"date"`
	Items   []MeasurementItem `json:"items"`
	SavedAt time.Time         `json:"savedAt,omitempty"`
}

// IsDraft reports whether the measurement has never been saved.
func (m Measurement) IsDraft() bool {
	return m.SavedAt.IsZero()
}

// Quantity returns the executed quantity recorded for itemID.
func (m Measurement) Quantity(itemID string) float64 {
	for _, it := range m.Items {
		if it.ItemID == itemID {
			return it.QuantityExecuted
		}
	}
	return 0
}
