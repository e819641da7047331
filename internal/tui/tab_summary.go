package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/orca/internal/cli"
	"github.com/theirongolddev/orca/internal/model"
	"github.com/theirongolddev/orca/internal/pipeline"
	"github.com/theirongolddev/orca/internal/tui/components"
	"github.com/theirongolddev/orca/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderSummaryTab(cw int) string {
	t := theme.Active
	b := a.budget
	tot := b.Totals

	unbalanced := 0
	for _, s := range a.stages {
		if !s.Valid {
			unbalanced++
		}
	}

	metrics := []components.Metric{
		{Label: "Subtotal", Value: cli.FormatMoney(tot.Subtotal), Note: fmt.Sprintf("%d itens", len(b.Items))},
		{Label: "BDI", Value: cli.FormatMoney(tot.BDIAmount), Note: cli.FormatPercent(b.BDIPct)},
		{Label: "Total Geral", Value: cli.FormatMoney(tot.GrandTotal)},
		{
			Label: "Etapas",
			Value: fmt.Sprintf("%d", len(a.stages)),
			Note:  fmt.Sprintf("%d desbalanceadas", unbalanced),
			Warn:  unbalanced > 0,
		},
	}

	var out strings.Builder
	out.WriteString(components.MetricCardRow(metrics, cw))
	out.WriteString("\n")

	half := components.LayoutRow(cw, 2)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	inner := components.CardInnerWidth(half[0])
	line := func(label, value string) string {
		gap := max(inner-lipgloss.Width(label)-lipgloss.Width(value), 1)
		return labelStyle.Render(label) + labelStyle.Render(strings.Repeat(" ", gap)) + valueStyle.Render(value)
	}
	breakdown := strings.Join([]string{
		line("Subtotal", cli.FormatMoney(tot.Subtotal)),
		line("(-) Descontos", cli.FormatMoney(tot.TotalDiscount)),
		line("(+) Impostos", cli.FormatMoney(tot.TotalTax)),
		line("(+) BDI "+cli.FormatPercent(b.BDIPct), cli.FormatMoney(tot.BDIAmount)),
		line("Total Geral", cli.FormatMoney(tot.GrandTotal)),
	}, "\n")

	summary := pipeline.SummarizeClasses(a.abc)
	classLines := make([]string, 0, 3)
	for _, c := range []model.AbcClass{model.ClassA, model.ClassB, model.ClassC} {
		s := summary[c]
		style := lipgloss.NewStyle().Foreground(t.ClassColor(string(c))).Background(t.Surface).Bold(true)
		classLines = append(classLines, style.Render(string(c))+
			labelStyle.Render(fmt.Sprintf("  %3d itens  ", s.Count))+
			valueStyle.Render(fmt.Sprintf("%s  %s", cli.FormatMoney(s.Value), cli.FormatPercent(s.Share))))
	}

	flow := make([]float64, len(a.periods))
	for i, p := range a.periods {
		flow[i] = p.Value
	}

	progressBody := components.ProgressBar("Físico", a.progress.PhysicalPct, 10, components.CardInnerWidth(half[1])-22) + "\n" +
		components.ProgressBar("Financeiro", a.progress.FinancialPct, 10, components.CardInnerWidth(half[1])-22)
	if len(flow) > 0 {
		progressBody += "\n\n" + labelStyle.Render("Desembolso  ") + components.Sparkline(flow, t.Blue)
	}

	out.WriteString(components.CardRow([]string{
		components.ContentCard("Composição do Total", breakdown, half[0]),
		components.ContentCard("Curva ABC", strings.Join(classLines, "\n")+"\n\n"+progressBody, half[1]),
	}))
	return out.String()
}
