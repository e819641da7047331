package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/orca/internal/cli"
	"github.com/theirongolddev/orca/internal/pipeline"
	"github.com/theirongolddev/orca/internal/tui/components"
	"github.com/theirongolddev/orca/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderScheduleTab(cw int) string {
	t := theme.Active
	b := a.budget

	if len(b.SchedulePeriods) == 0 {
		return components.ContentCard("Cronograma", "Nenhum período cadastrado.", cw)
	}

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	// Stage validation
	var stages strings.Builder
	inner := components.CardInnerWidth(cw)
	for _, s := range a.stages {
		mark := "✓"
		if !s.Valid {
			mark = "!"
		}
		style := lipgloss.NewStyle().Foreground(t.BalanceColor(s.Valid)).Background(t.Surface)
		value := cli.FormatMoney(pipeline.StageValue(s.Stage, b.Items))
		line := fmt.Sprintf("%s %-*s %s  %s",
			style.Render(mark),
			max(inner-40, 10), truncStr(s.Stage, max(inner-40, 10)),
			valueStyle.Render(fmt.Sprintf("%16s", value)),
			style.Render(fmt.Sprintf("%9s alocado", cli.FormatPercent(s.Sum))))
		stages.WriteString(line)
		stages.WriteString("\n")
	}

	// Period totals as bars, cumulative percent as the S-curve marker
	points := make([]components.FlowPoint, len(a.periods))
	var cum strings.Builder
	for i, p := range a.periods {
		points[i] = components.FlowPoint{Label: p.Name, Value: p.Value, CumulativePct: p.CumulativePercent}
		fmt.Fprintf(&cum, "%s %s  %s\n",
			labelStyle.Render(fmt.Sprintf("%-14s", truncStr(p.Name, 14))),
			valueStyle.Render(fmt.Sprintf("%16s", cli.FormatMoney(p.Value))),
			labelStyle.Render("acum. "+cli.FormatPercent(p.CumulativePercent)))
	}
	chart := components.FlowChart(points, inner, 8)

	cards := []string{
		components.ContentCard("Etapas", strings.TrimRight(stages.String(), "\n"), cw),
		components.ContentCard("Desembolso por Período", chart+"\n\n"+strings.TrimRight(cum.String(), "\n"), cw),
	}

	if len(b.BaselineAllocations) > 0 {
		var base strings.Builder
		for _, d := range pipeline.CompareBaseline(pipeline.SortPeriods(b.SchedulePeriods), b.Items, b.ScheduleAllocations, b.BaselineAllocations) {
			deltaStyle := valueStyle
			if d.Delta != 0 {
				deltaStyle = lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
			}
			fmt.Fprintf(&base, "%s %s  %s\n",
				labelStyle.Render(fmt.Sprintf("%-14s", truncStr(d.Name, 14))),
				valueStyle.Render(fmt.Sprintf("%16s", cli.FormatMoney(d.Baseline))),
				deltaStyle.Render(cli.FormatDelta(d.Planned, d.Baseline)))
		}
		cards = append(cards, components.ContentCard("Linha de Base", strings.TrimRight(base.String(), "\n"), cw))
	}

	return strings.Join(cards, "\n")
}
