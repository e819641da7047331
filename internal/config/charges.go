package config

import (
	"sort"
	"time"
)

// Payroll regimes for the labor social-charges table.
const (
	RegimeStandard = "standard" // charges on payroll
	RegimeRelief   = "relief"   // payroll tax relief, charged on revenue instead
)

type chargesVersion struct {
	EffectiveFrom time.Time
	Pct           float64
}

// defaultCharges stores effective-dated hourly social-charges rates per
// regime. Entries must be sorted by EffectiveFrom ascending.
var defaultCharges = map[string][]chargesVersion{
	RegimeStandard: {
		{EffectiveFrom: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), Pct: 114.15},
		{EffectiveFrom: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Pct: 113.50},
	},
	RegimeRelief: {
		{EffectiveFrom: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), Pct: 85.27},
		{EffectiveFrom: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Pct: 84.44},
	},
}

// Regimes returns the known regime names, sorted.
func Regimes() []string {
	names := make([]string, 0, len(defaultCharges))
	for name := range defaultCharges {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupSocialCharges returns the latest social-charges rate for regime.
func LookupSocialCharges(regime string) (float64, bool) {
	return LookupSocialChargesAt(regime, time.Time{})
}

// LookupSocialChargesAt returns the rate in effect for regime at the given
// time. A zero time yields the latest rate.
func LookupSocialChargesAt(regime string, at time.Time) (float64, bool) {
	versions, ok := defaultCharges[regime]
	if !ok || len(versions) == 0 {
		return 0, false
	}
	if at.IsZero() {
		return versions[len(versions)-1].Pct, true
	}

	// Before the first entry, use the earliest known rate.
	pct := versions[0].Pct
	for _, v := range versions {
		if at.Before(v.EffectiveFrom) {
			break
		}
		pct = v.Pct
	}
	return pct, true
}

// SocialChargesPct resolves the social-charges percentage for new
// compositions: the explicit override if set, otherwise the regime table.
func (d DefaultsConfig) SocialCharges(at time.Time) float64 {
	if d.ChargesOverride != nil {
		return *d.ChargesOverride
	}
	pct, _ := LookupSocialChargesAt(d.ChargesRegime, at)
	return pct
}
