package model

// AbcClass is a Pareto bucket.
type AbcClass string

const (
	ClassA AbcClass = "A"
	ClassB AbcClass = "B"
	ClassC AbcClass = "C"
)

// AbcEntry is one ranked contributor. Purely derived; never persisted.
type AbcEntry struct {
	ID                   string
	Label                string
	Value                float64
	Percentage           float64
	CumulativePercentage float64
	Class                AbcClass
}
