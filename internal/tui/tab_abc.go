package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/orca/internal/cli"
	"github.com/theirongolddev/orca/internal/model"
	"github.com/theirongolddev/orca/internal/tui/components"
	"github.com/theirongolddev/orca/internal/tui/theme"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

func abcColumns(cw int) []table.Column {
	return flexColumns(cw, "Descrição", []table.Column{
		{Title: "#", Width: 4},
		{Title: "Valor", Width: 16},
		{Title: "%", Width: 9},
		{Title: "% Acum.", Width: 9},
		{Title: "Classe", Width: 6},
	})
}

func abcRows(entries []model.AbcEntry) []table.Row {
	rows := make([]table.Row, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, table.Row{
			e.Label,
			fmt.Sprintf("%d", i+1),
			cli.FormatMoney(e.Value),
			cli.FormatPercent(e.Percentage),
			cli.FormatPercent(e.CumulativePercentage),
			string(e.Class),
		})
	}
	return rows
}

func (a App) renderABCTab(cw int) string {
	t := theme.Active
	mode := "por item"
	if a.abcByInput {
		mode = "por insumo"
	}
	title := fmt.Sprintf("Curva ABC (%s)  [x] alternar", mode)

	if len(a.abc) == 0 {
		return components.ContentCard(title, "Sem valores para classificar.", cw)
	}

	var body strings.Builder
	body.WriteString(a.abcTable.View())

	if len(a.abcWarnings) > 0 {
		warn := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
		body.WriteString("\n\n")
		for i, w := range a.abcWarnings {
			if i == 3 {
				body.WriteString(warn.Render(fmt.Sprintf("... e mais %d avisos", len(a.abcWarnings)-3)))
				break
			}
			body.WriteString(warn.Render("! " + w.String()))
			body.WriteString("\n")
		}
	}
	return components.ContentCard(title, body.String(), cw)
}
