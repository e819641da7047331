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

func (a App) renderMeasurementsTab(cw int) string {
	t := theme.Active
	b := a.budget

	barW := max(components.CardInnerWidth(cw)-24, 10)
	progress := components.ProgressBar("Físico", a.progress.PhysicalPct, 10, barW) + "\n" +
		components.ProgressBar("Financeiro", a.progress.FinancialPct, 10, barW)
	head := components.ContentCard("Avanço Acumulado", progress, cw)

	if len(b.Measurements) == 0 {
		return head + "\n" + components.ContentCard("Medições", "Nenhuma medição salva.", cw)
	}

	m, _ := pipeline.OpenMeasurement(b, b.Measurements[a.measureIdx].ID)
	rows := pipeline.MeasurementRows(b, m)

	table := cli.Table{
		Headers: []string{"Item", "Contratado", "Anterior", "Atual", "Saldo", "Valor Atual"},
	}
	exceeded := lipgloss.NewStyle().Foreground(t.Red)
	for _, r := range rows {
		balance := cli.FormatQuantity(r.Balance)
		if r.Exceeded {
			balance = exceeded.Render(balance)
		}
		table.Rows = append(table.Rows, []string{
			truncStr(r.Name, 30),
			cli.FormatQuantity(r.Contracted),
			cli.FormatQuantity(r.PreviousAccumulated),
			cli.FormatQuantity(r.Current),
			balance,
			cli.FormatMoney(r.CurrentValue),
		})
	}

	title := fmt.Sprintf("%s  (%d/%d)  [j/k] navegar", m.Name, a.measureIdx+1, len(b.Measurements))
	if !m.Date.IsZero() {
		title += "  " + cli.FormatDate(m.Date)
	}

	var body strings.Builder
	body.WriteString(strings.TrimRight(cli.RenderTable(table), "\n"))
	if pipeline.HasExceeded(rows) {
		body.WriteString("\n")
		body.WriteString(lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).
			Render("! quantidade medida excede o contratado"))
	}

	return head + "\n" + components.ContentCard(title, body.String(), cw)
}
