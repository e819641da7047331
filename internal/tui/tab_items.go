package tui

import (
	"github.com/theirongolddev/orca/internal/cli"
	"github.com/theirongolddev/orca/internal/model"
	"github.com/theirongolddev/orca/internal/pipeline"
	"github.com/theirongolddev/orca/internal/tui/components"
	"github.com/theirongolddev/orca/internal/tui/theme"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

func newTable() table.Model {
	t := theme.Active
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Foreground(t.Accent).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(t.Border).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(t.TextPrimary).
		Background(t.SurfaceHover).
		Bold(false)
	styles.Cell = styles.Cell.Foreground(t.TextPrimary)

	m := table.New(table.WithFocused(true))
	m.SetStyles(styles)
	return m
}

// flexColumns gives the first column whatever width the fixed columns leave.
func flexColumns(cw int, first string, fixed []table.Column) []table.Column {
	used := 0
	for _, c := range fixed {
		used += c.Width + 2 // cell padding
	}
	cols := []table.Column{{Title: first, Width: max(cw-used-4, 12)}}
	return append(cols, fixed...)
}

func itemColumns(cw int) []table.Column {
	return flexColumns(cw, "Item", []table.Column{
		{Title: "Etapa", Width: 18},
		{Title: "Un", Width: 4},
		{Title: "Qtd", Width: 10},
		{Title: "Unitário", Width: 15},
		{Title: "Desc %", Width: 8},
		{Title: "Imp %", Width: 8},
		{Title: "Total", Width: 16},
	})
}

func itemRows(items []model.BudgetItem) []table.Row {
	rows := make([]table.Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, table.Row{
			it.Name,
			truncStr(it.StageLabel(), 18),
			it.Unit,
			cli.FormatQuantity(it.Quantity),
			cli.FormatMoney(it.UnitPrice),
			cli.FormatPercent(it.DiscountPct),
			cli.FormatPercent(it.TaxRatePct),
			cli.FormatMoney(pipeline.LineTotal(it)),
		})
	}
	return rows
}

func (a App) renderItemsTab(cw int) string {
	if len(a.budget.Items) == 0 {
		return components.ContentCard("Itens", "Nenhum item no orçamento.", cw)
	}
	return components.ContentCard("Itens do Orçamento", a.itemsTable.View(), cw)
}
