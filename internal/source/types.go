package source

import "github.com/theirongolddev/orca/internal/model"

// DocKind identifies what a discovered JSON document holds.
type DocKind int

const (
	KindBudget DocKind = iota
	KindCatalog
)

func (k DocKind) String() string {
	if k == KindCatalog {
		return "catalog"
	}
	return "budget"
}

// DiscoveredFile is a JSON document found during directory scanning.
type DiscoveredFile struct {
	Path string
	Name string // file name without extension
	Kind DocKind
}

// RawBudget is the persisted Budget document. Dates are ISO-8601 strings,
// either a calendar date or a full timestamp.
type RawBudget struct {
	ID                  string                     `json:"id"`
	ClientID            string                     `json:"clientId"`
	Name                string                     `json:"name"`
	BDIPct              float64                    `json:"bdi"`
	Items               []model.BudgetItem         `json:"items"`
	SchedulePeriods     []RawPeriod                `json:"schedulePeriods"`
	ScheduleAllocations []model.ScheduleAllocation `json:"scheduleAllocations"`
	BaselineAllocations []model.ScheduleAllocation `json:"baselineAllocations"`
	Measurements        []RawMeasurement           `json:"measurements"`
	CreatedAt           string                     `json:"createdAt,omitempty"`
	UpdatedAt           string                     `json:"updatedAt,omitempty"`
}

// RawPeriod is a persisted schedule period.
type RawPeriod struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Date string `json:"date"`
}

// RawMeasurement is a persisted measurement.
type RawMeasurement struct {
	ID      string                  `json:"id"`
	Name    string                  `json:"name"`
	Date    string                  `json:"date"`
	Items   []model.MeasurementItem `json:"items"`
	SavedAt string                  `json:"savedAt,omitempty"`
}

// RawCatalog is a persisted catalog of inputs and compositions.
type RawCatalog struct {
	Inputs       []model.Input       `json:"inputs"`
	Compositions []model.Composition `json:"compositions"`
}
