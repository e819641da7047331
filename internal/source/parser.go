// Package source discovers and decodes persisted budget and catalog documents.
package source

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/theirongolddev/orca/internal/model"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseResult holds the output of decoding a single document.
type ParseResult struct {
	File        DiscoveredFile
	Budget      *model.Budget
	Catalog     *RawCatalog
	ParseErrors int // unparseable dates, left as zero time
	Err         error
}

// ParseFile reads and decodes one document according to its kind.
func ParseFile(df DiscoveredFile) ParseResult {
	data, err := os.ReadFile(df.Path)
	if err != nil {
		return ParseResult{File: df, Err: err}
	}
	return Parse(df, data)
}

// Parse decodes document bytes according to df.Kind.
func Parse(df DiscoveredFile, data []byte) ParseResult {
	res := ParseResult{File: df}

	if df.Kind == KindCatalog {
		var cat RawCatalog
		if err := json.Unmarshal(data, &cat); err != nil {
			res.Err = fmt.Errorf("decoding catalog %s: %w", df.Path, err)
			return res
		}
		res.Catalog = &cat
		return res
	}

	var raw RawBudget
	if err := json.Unmarshal(data, &raw); err != nil {
		res.Err = fmt.Errorf("decoding budget %s: %w", df.Path, err)
		return res
	}
	if raw.ID == "" {
		raw.ID = df.Name
	}

	b, bad := raw.toModel()
	res.Budget = &b
	res.ParseErrors = bad
	return res
}

func (raw RawBudget) toModel() (model.Budget, int) {
	bad := 0
	parse := func(s string) time.Time {
		t, ok := ParseDate(s)
		if !ok {
			bad++
		}
		return t
	}

	b := model.Budget{
		ID:                  raw.ID,
		ClientID:            raw.ClientID,
		Name:                raw.Name,
		BDIPct:              raw.BDIPct,
		Items:               raw.Items,
		ScheduleAllocations: raw.ScheduleAllocations,
		BaselineAllocations: raw.BaselineAllocations,
		CreatedAt:           parse(raw.CreatedAt),
		UpdatedAt:           parse(raw.UpdatedAt),
	}
	for _, p := range raw.SchedulePeriods {
		b.SchedulePeriods = append(b.SchedulePeriods, model.SchedulePeriod{ID: p.ID, Name: p.Name, Date: parse(p.Date)})
	}
	for _, m := range raw.Measurements {
		b.Measurements = append(b.Measurements, model.Measurement{
			ID:      m.ID,
			Name:    m.Name,
			Date:    parse(m.Date),
			Items:   m.Items,
			SavedAt: parse(m.SavedAt),
		})
	}
	return b, bad
}

// ParseDate accepts an ISO-8601 date or timestamp. Empty strings yield the
// zero time and are not errors.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// FormatDate renders t as an ISO-8601 timestamp, or "" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// EncodeBudget renders a budget in the persisted document shape.
func EncodeBudget(b model.Budget) ([]byte, error) {
	raw := RawBudget{
		ID:                  b.ID,
		ClientID:            b.ClientID,
		Name:                b.Name,
		BDIPct:              b.BDIPct,
		Items:               nonNil(b.Items),
		SchedulePeriods:     []RawPeriod{},
		ScheduleAllocations: nonNil(b.ScheduleAllocations),
		BaselineAllocations: nonNil(b.BaselineAllocations),
		Measurements:        []RawMeasurement{},
		CreatedAt:           FormatDate(b.CreatedAt),
		UpdatedAt:           FormatDate(b.UpdatedAt),
	}
	for _, p := range b.SchedulePeriods {
		raw.SchedulePeriods = append(raw.SchedulePeriods, RawPeriod{ID: p.ID, Name: p.Name, Date: FormatDate(p.Date)})
	}
	for _, m := range b.Measurements {
		raw.Measurements = append(raw.Measurements, RawMeasurement{
			ID:      m.ID,
			Name:    m.Name,
			Date:    FormatDate(m.Date),
			Items:   nonNil(m.Items),
			SavedAt: FormatDate(m.SavedAt),
		})
	}
	return json.MarshalIndent(raw, "", "  ")
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
