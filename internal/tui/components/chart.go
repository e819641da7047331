package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/theirongolddev/orca/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Sparkline renders a unicode sparkline from values.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	peak := values[0]
	for _, v := range values[1:] {
		if v > peak {
			peak = v
		}
	}
	if peak == 0 {
		peak = 1
	}

	style := lipgloss.NewStyle().Foreground(color).Background(t.Surface)

	var buf strings.Builder
	buf.Grow(len(values) * 4) // UTF-8 block chars are up to 3 bytes
	for _, v := range values {
		idx := int(v / peak * float64(len(blocks)-1))
		if idx >= len(blocks) {
			idx = len(blocks) - 1
		}
		if idx < 0 {
			idx = 0
		}
		buf.WriteRune(blocks[idx]) //nolint:gosec // bounds checked above
	}

	return style.Render(buf.String())
}

// FlowPoint is one period of a disbursement chart.
type FlowPoint struct {
	Label         string
	Value         float64
	CumulativePct float64 // 0-100, plotted as the S-curve marker
}

// FlowChart renders period disbursements as vertical bars on a money axis
// with the cumulative percentage drawn as a marker over each bar.
// Columns that do not fit are dropped from the right.
func FlowChart(points []FlowPoint, width, height int) string {
	if len(points) == 0 {
		return ""
	}
	t := theme.Active
	if width < 20 || height < 4 {
		values := make([]float64, len(points))
		for i, p := range points {
			values[i] = p.Value
		}
		return Sparkline(values, t.Blue)
	}

	peak := 0.0
	for _, p := range points {
		peak = math.Max(peak, p.Value)
	}
	step := chartTickStep(peak)
	ticks := max(int(math.Ceil(peak/step)), 1)
	for ticks > height/2 {
		step *= 2
		ticks = max(int(math.Ceil(peak/step)), 1)
	}
	top := step * float64(ticks)
	rowsPerTick := max(height/ticks, 1)
	rows := rowsPerTick * ticks

	axisW := max(len(formatChartLabel(top))+1, 4)
	colW := 4
	cols := min(len(points), max((width-axisW-1)/(colW+1), 1))
	points = points[:cols]

	surface := lipgloss.NewStyle().Background(t.Surface)
	axis := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	bar := lipgloss.NewStyle().Foreground(t.Blue).Background(t.Surface)
	marker := lipgloss.NewStyle().Foreground(t.Yellow).Background(t.Surface).Bold(true)

	// markerRow is the chart row (1..rows) at which each S-curve marker sits.
	markerRow := make([]int, cols)
	for i, p := range points {
		markerRow[i] = int(math.Round(math.Min(math.Max(p.CumulativePct, 0), 100) / 100 * float64(rows)))
	}

	var b strings.Builder
	for row := rows; row >= 1; row-- {
		label := ""
		if row%rowsPerTick == 0 {
			label = formatChartLabel(step * float64(row/rowsPerTick))
		}
		b.WriteString(axis.Render(fmt.Sprintf("%*s│", axisW, label)))

		lo := top * float64(row-1) / float64(rows)
		for i, p := range points {
			b.WriteString(surface.Render(" "))
			cell := strings.Repeat(" ", colW)
			style := surface
			if p.Value > lo {
				cell, style = strings.Repeat("█", colW), bar
			}
			if markerRow[i] == row {
				cell, style = " ●  ", marker
			}
			b.WriteString(style.Render(cell))
		}
		b.WriteString("\n")
	}

	b.WriteString(axis.Render(fmt.Sprintf("%*s└%s", axisW, "0", strings.Repeat("─", cols*(colW+1)))))
	b.WriteString("\n")
	b.WriteString(surface.Render(strings.Repeat(" ", axisW+1)))
	for _, p := range points {
		lbl := []rune(p.Label)
		if len(lbl) > colW {
			lbl = lbl[:colW]
		}
		b.WriteString(axis.Render(fmt.Sprintf(" %-*s", colW, string(lbl))))
	}
	return b.String()
}

// chartTickStep computes a nice tick interval targeting ~5 ticks.
func chartTickStep(maxVal float64) float64 {
	if maxVal <= 0 {
		return 1
	}
	rough := maxVal / 5
	exp := math.Floor(math.Log10(rough))
	base := math.Pow(10, exp)
	frac := rough / base

	switch {
	case frac < 1.5:
		return base
	case frac < 3.5:
		return 2 * base
	default:
		return 5 * base
	}
}

// formatChartLabel renders an axis value with Brazilian short scale
// suffixes ("mil", "mi"), e.g. 1500 -> "1,5mil".
func formatChartLabel(v float64) string {
	short := func(x float64, suffix string) string {
		if x == math.Trunc(x) {
			return fmt.Sprintf("%.0f%s", x, suffix)
		}
		return strings.Replace(fmt.Sprintf("%.1f%s", x, suffix), ".", ",", 1)
	}
	switch {
	case v >= 1e9:
		return short(v/1e9, "bi")
	case v >= 1e6:
		return short(v/1e6, "mi")
	case v >= 1e3:
		return short(v/1e3, "mil")
	case v >= 1:
		return fmt.Sprintf("%.0f", v)
	default:
		return strings.Replace(fmt.Sprintf("%.2f", v), ".", ",", 1)
	}
}
