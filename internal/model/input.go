// Package model defines domain types for orca budgets, compositions and measurements.
package model

// InputKind classifies a priced resource for cost rollups.
type InputKind string

const (
	KindMaterial  InputKind = "MATERIAL"
	KindLabor     InputKind = "LABOR"
	KindEquipment InputKind = "EQUIPMENT"
	KindService   InputKind = "SERVICE"
)

// Valid reports whether k is one of the known input kinds.
func (k InputKind) Valid() bool {
	switch k {
	case KindMaterial, KindLabor, KindEquipment, KindService:
		return true
	}
	return false
}

// SourceKind tags where a priced resource came from.
type SourceKind string

const (
	SourceSINAPI   SourceKind = "SINAPI"
	SourceORSE     SourceKind = "ORSE"
	SourceOwn      SourceKind = "OWN"
	SourceInternal SourceKind = "INTERNAL"
)

// Input is a priced resource (material, labor hour, equipment hour, service).
// Price is the current unit cost; references copy it at use time.
type Input struct {
	ID     string     `json:"id"`
	Code   string     `json:"code"`
	Name   string     `json:"name"`
	Unit   string     `json:"unit"`
	Price  float64    `json:"price"`
	Kind   InputKind  `json:"kind"`
	Source SourceKind `json:"source"`
}
