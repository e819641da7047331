// Package export renders a budget into an xlsx workbook.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/theirongolddev/orca/internal/model"
	"github.com/theirongolddev/orca/internal/pipeline"
)

// Sheet names, in workbook order.
const (
	SheetBudget       = "Orçamento"
	SheetABC          = "Curva ABC"
	SheetSchedule     = "Cronograma"
	SheetMeasurements = "Medições"
)

// Options selects optional workbook content.
type Options struct {
	// Inputs and Compositions enable the input-level ABC curve. Without
	// them the curve ranks budget items.
	Inputs       pipeline.InputLookup
	Compositions pipeline.CompositionLookup
}

type styles struct {
	header, money, pct, total int
}

// Workbook builds the full report for b. The caller owns the returned file
// and must Close it.
func Workbook(b model.Budget, opts Options) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetBudget); err != nil {
		_ = f.Close()
		return nil, err
	}
	for _, name := range []string{SheetABC, SheetSchedule, SheetMeasurements} {
		if _, err := f.NewSheet(name); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	st, err := newStyles(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	b = pipeline.RecomputeBudget(b)
	steps := []func(*excelize.File, model.Budget, styles) error{
		writeBudget,
		func(f *excelize.File, b model.Budget, st styles) error { return writeABC(f, b, opts, st) },
		writeSchedule,
		writeMeasurements,
	}
	for _, step := range steps {
		if err := step(f, b, st); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	return f, nil
}

// WriteFile builds the workbook for b and saves it to path.
func WriteFile(path string, b model.Budget, opts Options) error {
	f, err := Workbook(b, opts)
	if err != nil {
		return fmt.Errorf("building workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func newStyles(f *excelize.File) (styles, error) {
	var st styles
	var err error
	st.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "#000000", Style: 1},
		},
	})
	if err != nil {
		return st, err
	}
	moneyFmt := `"R$" #,##0.00`
	st.money, err = f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFmt})
	if err != nil {
		return st, err
	}
	pctFmt := `0.00"%"`
	st.pct, err = f.NewStyle(&excelize.Style{CustomNumFmt: &pctFmt})
	if err != nil {
		return st, err
	}
	st.total, err = f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Bold: true},
		CustomNumFmt: &moneyFmt,
	})
	return st, err
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

// writeRow writes values starting at column A of row.
func writeRow(f *excelize.File, sheet string, row int, values ...any) error {
	return f.SetSheetRow(sheet, cellName(1, row), &values)
}

func writeHeader(f *excelize.File, sheet string, st styles, headers ...string) error {
	values := make([]any, len(headers))
	for i, h := range headers {
		values[i] = h
	}
	if err := writeRow(f, sheet, 1, values...); err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", cellName(len(headers), 1), st.header)
}

// styleCols applies style to columns [from, to] of rows [first, last].
func styleCols(f *excelize.File, sheet string, from, to, first, last, style int) error {
	if last < first {
		return nil
	}
	return f.SetCellStyle(sheet, cellName(from, first), cellName(to, last), style)
}

func writeBudget(f *excelize.File, b model.Budget, st styles) error {
	const sheet = SheetBudget
	if err := writeHeader(f, sheet, st,
		"Etapa", "Item", "Unidade", "Quantidade", "Preço Unitário", "Desconto %", "Imposto %", "Total"); err != nil {
		return err
	}

	row := 2
	for _, it := range b.Items {
		if err := writeRow(f, sheet, row,
			it.StageLabel(), it.Name, it.Unit, it.Quantity, it.UnitPrice,
			it.DiscountPct, it.TaxRatePct, pipeline.LineTotal(it)); err != nil {
			return err
		}
		row++
	}
	if err := styleCols(f, sheet, 5, 5, 2, row-1, st.money); err != nil {
		return err
	}
	if err := styleCols(f, sheet, 8, 8, 2, row-1, st.money); err != nil {
		return err
	}

	row++
	t := b.Totals
	summary := []struct {
		label string
		value float64
	}{
		{"Subtotal", t.Subtotal},
		{"Descontos", -t.TotalDiscount},
		{"Impostos", t.TotalTax},
		{fmt.Sprintf("BDI (%.2f%%)", b.BDIPct), t.BDIAmount},
		{"Total Geral", t.GrandTotal},
	}
	for _, s := range summary {
		if err := writeRow(f, sheet, row, nil, s.label, nil, nil, nil, nil, nil, s.value); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cellName(2, row), cellName(8, row), st.total); err != nil {
			return err
		}
		row++
	}

	return setWidths(f, sheet, 20, 40, 10, 12, 16, 12, 12, 18)
}

func writeABC(f *excelize.File, b model.Budget, opts Options, st styles) error {
	const sheet = SheetABC
	var entries []model.AbcEntry
	if opts.Inputs != nil || opts.Compositions != nil {
		entries, _ = pipeline.ClassifyInputs(b.Items, opts.Compositions, opts.Inputs)
	} else {
		entries = pipeline.ClassifyBudgetItems(b.Items)
	}

	if err := writeHeader(f, sheet, st, "#", "Descrição", "Valor", "%", "% Acumulado", "Classe"); err != nil {
		return err
	}
	for i, e := range entries {
		if err := writeRow(f, sheet, i+2,
			i+1, e.Label, e.Value, e.Percentage, e.CumulativePercentage, string(e.Class)); err != nil {
			return err
		}
	}
	last := len(entries) + 1
	if err := styleCols(f, sheet, 3, 3, 2, last, st.money); err != nil {
		return err
	}
	if err := styleCols(f, sheet, 4, 5, 2, last, st.pct); err != nil {
		return err
	}
	return setWidths(f, sheet, 6, 40, 18, 10, 14, 8)
}

func writeSchedule(f *excelize.File, b model.Budget, st styles) error {
	const sheet = SheetSchedule
	periods := pipeline.SortPeriods(b.SchedulePeriods)

	headers := []string{"Etapa", "Valor"}
	for _, p := range periods {
		headers = append(headers, p.Name)
	}
	headers = append(headers, "Soma %")
	if err := writeHeader(f, sheet, st, headers...); err != nil {
		return err
	}

	row := 2
	for _, s := range pipeline.Stages(b.Items) {
		values := []any{s.Stage, s.Value}
		for _, p := range periods {
			values = append(values, pipeline.Allocation(b.ScheduleAllocations, s.Stage, p.ID))
		}
		v := pipeline.ValidateStage(s.Stage, b.ScheduleAllocations)
		values = append(values, v.Sum)
		if err := writeRow(f, sheet, row, values...); err != nil {
			return err
		}
		row++
	}
	if err := styleCols(f, sheet, 2, 2, 2, row-1, st.money); err != nil {
		return err
	}
	if err := styleCols(f, sheet, 3, len(headers), 2, row-1, st.pct); err != nil {
		return err
	}

	row++
	totals := pipeline.PeriodTotals(periods, b.Items, b.ScheduleAllocations)
	periodValues := []any{"Total no período", nil}
	cumValues := []any{"Acumulado %", nil}
	for _, pt := range totals {
		periodValues = append(periodValues, pt.Value)
		cumValues = append(cumValues, pt.CumulativePercent)
	}
	if err := writeRow(f, sheet, row, periodValues...); err != nil {
		return err
	}
	if err := styleCols(f, sheet, 1, len(headers), row, row, st.total); err != nil {
		return err
	}
	if err := writeRow(f, sheet, row+1, cumValues...); err != nil {
		return err
	}
	if err := styleCols(f, sheet, 3, len(headers), row+1, row+1, st.pct); err != nil {
		return err
	}

	widths := []float64{24, 16}
	for range periods {
		widths = append(widths, 14)
	}
	return setWidths(f, sheet, append(widths, 10)...)
}

func writeMeasurements(f *excelize.File, b model.Budget, st styles) error {
	const sheet = SheetMeasurements
	if err := writeHeader(f, sheet, st,
		"Medição", "Data", "Item", "Contratado", "Acumulado Anterior", "Atual", "Saldo", "Valor Atual", "Excedido"); err != nil {
		return err
	}

	row := 2
	for _, m := range b.Measurements {
		open, _ := pipeline.OpenMeasurement(b, m.ID)
		for _, r := range pipeline.MeasurementRows(b, open) {
			exceeded := ""
			if r.Exceeded {
				exceeded = "SIM"
			}
			date := ""
			if !m.Date.IsZero() {
				date = m.Date.Format("2006-01-02")
			}
			if err := writeRow(f, sheet, row,
				m.Name, date, r.Name, r.Contracted, r.PreviousAccumulated, r.Current,
				r.Balance, r.CurrentValue, exceeded); err != nil {
				return err
			}
			row++
		}
	}
	if err := styleCols(f, sheet, 8, 8, 2, row-1, st.money); err != nil {
		return err
	}

	progress := pipeline.AggregateProgress(b)
	row++
	if err := writeRow(f, sheet, row, "Avanço físico %", nil, nil, progress.PhysicalPct); err != nil {
		return err
	}
	if err := writeRow(f, sheet, row+1, "Avanço financeiro %", nil, nil, progress.FinancialPct); err != nil {
		return err
	}
	if err := styleCols(f, sheet, 4, 4, row, row+1, st.pct); err != nil {
		return err
	}
	return setWidths(f, sheet, 16, 12, 36, 12, 18, 12, 12, 16, 10)
}

func setWidths(f *excelize.File, sheet string, widths ...float64) error {
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}
	return nil
}
