package tui

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/theirongolddev/orca/internal/config"
	"github.com/theirongolddev/orca/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// SetupValues holds the answers collected by the setup form. Percentages
// stay strings while the form is open so partial input can be edited.
type SetupValues struct {
	DBPath        string
	ChargesRegime string
	ChargesPct    string // blank uses the regime table
	BDIPct        string
	TaxRatePct    string
	Theme         string
}

// SetupValuesFrom seeds the form with the current configuration.
func SetupValuesFrom(cfg config.Config) SetupValues {
	v := SetupValues{
		DBPath:        cfg.General.DBPath,
		ChargesRegime: cfg.Defaults.ChargesRegime,
		BDIPct:        formatPct(cfg.Defaults.BDIPct),
		TaxRatePct:    formatPct(cfg.Defaults.TaxRatePct),
		Theme:         cfg.Appearance.Theme,
	}
	if cfg.Defaults.ChargesOverride != nil {
		v.ChargesPct = formatPct(*cfg.Defaults.ChargesOverride)
	}
	return v
}

// NewSetupForm builds the interactive configuration form bound to vals.
func NewSetupForm(vals *SetupValues) *huh.Form {
	regimes := make([]huh.Option[string], 0, len(config.Regimes()))
	for _, r := range config.Regimes() {
		pct, _ := config.LookupSocialCharges(r)
		regimes = append(regimes, huh.NewOption(fmt.Sprintf("%s (%s%%)", r, formatPct(pct)), r))
	}
	themes := make([]huh.Option[string], 0, len(theme.All))
	for _, name := range theme.Names() {
		themes = append(themes, huh.NewOption(name, name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("orca setup").
				Description("Defaults applied to new budgets and compositions."),
			huh.NewInput().
				Title("Database path").
				Description("Leave blank for the default data directory.").
				Value(&vals.DBPath),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Payroll regime for social charges").
				Options(regimes...).
				Value(&vals.ChargesRegime),
			huh.NewInput().
				Title("Social charges % override").
				Description("Leave blank to use the regime table.").
				Validate(optionalPct(false)).
				Value(&vals.ChargesPct),
			huh.NewInput().
				Title("Default BDI %").
				Validate(optionalPct(true)).
				Value(&vals.BDIPct),
			huh.NewInput().
				Title("Default tax rate %").
				Validate(optionalPct(true)).
				Value(&vals.TaxRatePct),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themes...).
				Value(&vals.Theme),
		),
	)
}

// Apply writes the form answers into cfg.
func (v SetupValues) Apply(cfg config.Config) (config.Config, error) {
	cfg.General.DBPath = strings.TrimSpace(v.DBPath)
	cfg.Defaults.ChargesRegime = v.ChargesRegime
	cfg.Appearance.Theme = v.Theme

	cfg.Defaults.ChargesOverride = nil
	if s := strings.TrimSpace(v.ChargesPct); s != "" {
		pct, err := parsePct(s)
		if err != nil {
			return cfg, fmt.Errorf("social charges: %w", err)
		}
		cfg.Defaults.ChargesOverride = &pct
	}

	var err error
	if cfg.Defaults.BDIPct, err = parsePctOrZero(v.BDIPct); err != nil {
		return cfg, fmt.Errorf("bdi: %w", err)
	}
	if cfg.Defaults.TaxRatePct, err = parsePctOrZero(v.TaxRatePct); err != nil {
		return cfg, fmt.Errorf("tax rate: %w", err)
	}
	return cfg, nil
}

func optionalPct(capped bool) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return nil
		}
		pct, err := parsePct(s)
		if err != nil {
			return err
		}
		if capped && pct > 100 {
			return fmt.Errorf("must be between 0 and 100")
		}
		return nil
	}
}

// parsePct accepts "25", "25.5" or "25,5".
func parsePct(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%")), ",", ".")
	pct, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(pct) || math.IsInf(pct, 0) {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if pct < 0 {
		return 0, fmt.Errorf("must not be negative")
	}
	return pct, nil
}

func parsePctOrZero(s string) (float64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	return parsePct(s)
}

func formatPct(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
