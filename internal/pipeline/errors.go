package pipeline

import (
	"errors"
	"fmt"
	"math"
)

// ErrValidation marks malformed numeric input rejected at the boundary.
var ErrValidation = errors.New("validation error")

// ValidationError describes one rejected field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// WarningKind categorizes a reference-integrity problem.
type WarningKind string

const (
	MissingInput       WarningKind = "missing_input"
	MissingComposition WarningKind = "missing_composition"
	CycleDetected      WarningKind = "cycle_detected"
)

// ReferenceWarning reports a dangling or cyclic reference that was priced as zero.
// It is returned next to results and never aborts a computation.
type ReferenceWarning struct {
	Kind  WarningKind
	RefID string
	Owner string // composition or budget item holding the reference
}

func (w ReferenceWarning) String() string {
	switch w.Kind {
	case MissingInput:
		return fmt.Sprintf("%s references missing input %s", w.Owner, w.RefID)
	case MissingComposition:
		return fmt.Sprintf("%s references missing composition %s", w.Owner, w.RefID)
	case CycleDetected:
		return fmt.Sprintf("%s: composition %s is nested inside itself", w.Owner, w.RefID)
	}
	return fmt.Sprintf("%s: %s %s", w.Owner, w.Kind, w.RefID)
}

func checkFinite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &ValidationError{Field: field, Reason: "must be a finite number"}
	}
	return nil
}

func checkPercent(field string, v float64) error {
	if err := checkFinite(field, v); err != nil {
		return err
	}
	if v < 0 || v > 100 {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("%.2f is outside [0,100]", v)}
	}
	return nil
}
