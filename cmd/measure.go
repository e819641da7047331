package cmd

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/orca/internal/cli"
	"github.com/theirongolddev/orca/internal/model"
	"github.com/theirongolddev/orca/internal/pipeline"
	"github.com/theirongolddev/orca/internal/source"
	"github.com/theirongolddev/orca/internal/state"
	"github.com/theirongolddev/orca/internal/store"

	"github.com/spf13/cobra"
)

var measureCmd = &cobra.Command{
	Use:   "measure <id>",
	Short: "Show or record progress measurements of a budget",
	Long: "Without flags, lists measurements and accumulated progress.\n" +
		"--open shows one measurement; --new or --open with --set records quantities.",
	Example: "  orca measure casa --new \"Medição 3\" --date 2026-03-31 --set alv=12 --set pint=40",
	Args:    cobra.ExactArgs(1),
	RunE:    runMeasure,
}

var (
	flagMeasureOpen string
	flagMeasureNew  string
	flagMeasureDate string
	flagMeasureSet  []string
)

func init() {
	measureCmd.Flags().StringVar(&flagMeasureOpen, "open", "", "Measurement id to show or edit")
	measureCmd.Flags().StringVar(&flagMeasureNew, "new", "", "Start a new measurement with this name")
	measureCmd.Flags().StringVar(&flagMeasureDate, "date", "", "Measurement date (YYYY-MM-DD)")
	measureCmd.Flags().StringArrayVar(&flagMeasureSet, "set", nil, "Executed quantity as itemID=qty (repeatable)")
	rootCmd.AddCommand(measureCmd)
}

func runMeasure(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	id := args[0]
	if flagMeasureNew != "" && flagMeasureOpen != "" {
		return fmt.Errorf("--new and --open are mutually exclusive")
	}

	return withRepo(ctx, func(repo *store.Repo) error {
		if flagMeasureNew == "" && flagMeasureOpen == "" {
			b, err := repo.FindBudget(ctx, id)
			if err != nil {
				return fmt.Errorf("budget %s: %w", id, err)
			}
			printMeasurementList(b)
			return nil
		}

		quantities, err := parseQuantities(flagMeasureSet)
		if err != nil {
			return err
		}
		date, ok := source.ParseDate(flagMeasureDate)
		if !ok {
			return fmt.Errorf("invalid --date %q", flagMeasureDate)
		}

		var mID string
		b, err := editBudget(ctx, repo, id, func(w state.Workspace) (state.Workspace, error) {
			var m model.Measurement
			var err error
			if flagMeasureNew != "" {
				m, err = w.NewMeasurement(id, flagMeasureNew, date)
			} else {
				m, err = w.OpenMeasurement(id, flagMeasureOpen)
				if err == nil && !date.IsZero() {
					m.Date = date
				}
			}
			if err != nil {
				return w, err
			}
			if flagMeasureOpen != "" && len(quantities) == 0 && date.IsZero() {
				mID = m.ID
				return w, nil
			}
			b, err := w.Budget(id)
			if err != nil {
				return w, err
			}
			for itemID, qty := range quantities {
				if _, ok := b.Item(itemID); !ok {
					return w, fmt.Errorf("item %s is not in budget %s", itemID, id)
				}
				m = pipeline.SetQuantity(m, itemID, qty)
			}
			mID = m.ID
			return w.SaveMeasurement(id, m, time.Now().UTC().Truncate(time.Second))
		})
		if err != nil {
			return err
		}

		m, _ := pipeline.OpenMeasurement(b, mID)
		printMeasurement(b, m)
		return nil
	})
}

// parseQuantities reads itemID=qty pairs. A decimal comma is accepted.
func parseQuantities(pairs []string) (map[string]float64, error) {
	out := make(map[string]float64, len(pairs))
	for _, p := range pairs {
		itemID, raw, ok := strings.Cut(p, "=")
		if !ok || itemID == "" {
			return nil, fmt.Errorf("invalid --set %q, want itemID=qty", p)
		}
		qty, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(raw), ",", "."), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid quantity in --set %q: %w", p, err)
		}
		if math.IsNaN(qty) || math.IsInf(qty, 0) {
			return nil, fmt.Errorf("invalid quantity in --set %q: must be a finite number", p)
		}
		out[itemID] = qty
	}
	return out, nil
}

func printMeasurementList(b model.Budget) {
	progress := pipeline.AggregateProgress(b)

	fmt.Println()
	fmt.Println(cli.RenderTitle("Medições  ·  " + b.Name))
	fmt.Println()
	fmt.Printf("  Físico      %s %s\n", cli.RenderProgressBar(progress.PhysicalPct, 30), cli.FormatPercent(progress.PhysicalPct))
	fmt.Printf("  Financeiro  %s %s  (%s de %s)\n\n",
		cli.RenderProgressBar(progress.FinancialPct, 30), cli.FormatPercent(progress.FinancialPct),
		cli.FormatMoney(progress.MeasuredValue), cli.FormatMoney(b.Totals.GrandTotal))

	if len(b.Measurements) == 0 {
		fmt.Println("  No measurements recorded.")
		return
	}

	rows := make([][]string, 0, len(b.Measurements))
	for _, m := range b.Measurements {
		measured, _ := pipeline.OpenMeasurement(b, m.ID)
		mRows := pipeline.MeasurementRows(b, measured)
		var value float64
		for _, r := range mRows {
			value += r.CurrentValue
		}
		status := "salva"
		if m.IsDraft() {
			status = "rascunho"
		}
		if pipeline.HasExceeded(mRows) {
			status = cli.ErrorStyle.Render("excedida")
		}
		rows = append(rows, []string{m.ID, m.Name, cli.FormatDate(m.Date), cli.FormatMoney(value), status})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers:  []string{"ID", "Nome", "Data", "Valor", "Situação"},
		Rows:     rows,
		LeftCols: 3,
	}))
	fmt.Println()
}

func printMeasurement(b model.Budget, m model.Measurement) {
	rows := pipeline.MeasurementRows(b, m)
	out := make([][]string, 0, len(rows))
	var total float64
	for _, r := range rows {
		balance := cli.FormatQuantity(r.Balance)
		if r.Exceeded {
			balance = cli.ErrorStyle.Render(balance)
		}
		total += r.CurrentValue
		out = append(out, []string{
			r.ItemID,
			r.Name,
			r.Unit,
			cli.FormatQuantity(r.Contracted),
			cli.FormatQuantity(r.PreviousAccumulated),
			cli.FormatQuantity(r.Current),
			balance,
			cli.FormatMoney(r.CurrentValue),
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:    fmt.Sprintf("%s  ·  %s  ·  %s", m.Name, cli.FormatDate(m.Date), m.ID),
		Headers:  []string{"Item", "Descrição", "Un", "Contratado", "Anterior", "Atual", "Saldo", "Valor"},
		Rows:     out,
		Footer:   []string{"", "", "", "", "", "", "", cli.FormatMoney(total)},
		LeftCols: 3,
	}))
	if pipeline.HasExceeded(rows) {
		fmt.Println("  " + cli.ErrorStyle.Render("! executed quantity exceeds the contracted quantity"))
	}
	fmt.Println()
}
