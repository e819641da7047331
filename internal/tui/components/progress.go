package components

import (
	"github.com/theirongolddev/orca/internal/cli"
	"github.com/theirongolddev/orca/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ColorForPct returns the bar color for a 0-100 completion percentage.
// Anything past 100 is over-measured and drawn red.
func ColorForPct(pct float64) lipgloss.Color {
	t := theme.Active
	switch {
	case pct > 100:
		return t.Red
	case pct >= 80:
		return t.AccentBright
	case pct >= 50:
		return t.Accent
	default:
		return t.Cyan
	}
}

// ProgressBar renders a labeled completion bar for a 0-100 percentage.
func ProgressBar(label string, pct float64, labelW, barWidth int) string {
	t := theme.Active
	color := ColorForPct(pct)

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(max(barWidth, 4)),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	ratio := max(0, min(pct/100, 1))

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return labelStyle.Width(labelW).Render(label) +
		spaceStyle.Render(" ") +
		bar.ViewAs(ratio) +
		spaceStyle.Render(" ") +
		pctStyle.Render(cli.FormatPercent(pct))
}
