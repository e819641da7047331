package cmd

import (
	"context"
	"fmt"

	"github.com/theirongolddev/orca/internal/cli"
	"github.com/theirongolddev/orca/internal/model"
	"github.com/theirongolddev/orca/internal/pipeline"
	"github.com/theirongolddev/orca/internal/state"
	"github.com/theirongolddev/orca/internal/store"

	"github.com/spf13/cobra"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule <id>",
	Short: "Physical-financial schedule of a budget",
	Args:  cobra.ExactArgs(1),
	RunE:  runSchedule,
}

var (
	flagBaseline bool
	flagSnapshot bool
)

func init() {
	scheduleCmd.Flags().BoolVar(&flagBaseline, "baseline", false, "Compare the plan against the frozen baseline")
	scheduleCmd.Flags().BoolVar(&flagSnapshot, "snapshot", false, "Freeze the current plan as the new baseline")
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	return withRepo(ctx, func(repo *store.Repo) error {
		var (
			b   model.Budget
			err error
		)
		if flagSnapshot {
			b, err = editBudget(ctx, repo, args[0], func(w state.Workspace) (state.Workspace, error) {
				return w.SnapshotBaseline(args[0])
			})
			if err == nil {
				progressf("  Baseline frozen (%d allocations)\n", len(b.BaselineAllocations))
			}
		} else {
			b, err = repo.FindBudget(ctx, args[0])
		}
		if err != nil {
			return fmt.Errorf("budget %s: %w", args[0], err)
		}

		if len(b.SchedulePeriods) == 0 {
			fmt.Println("\n  No schedule periods in this budget.")
			return nil
		}
		printSchedule(b)
		if flagBaseline {
			printBaseline(b)
		}
		return nil
	})
}

func printSchedule(b model.Budget) {
	periods := pipeline.SortPeriods(b.SchedulePeriods)

	headers := []string{"Etapa", "Valor"}
	for _, p := range periods {
		headers = append(headers, p.Name)
	}
	headers = append(headers, "Total")

	var rows [][]string
	for _, v := range pipeline.ValidateSchedule(b.Items, b.ScheduleAllocations) {
		row := []string{v.Stage, cli.FormatMoney(pipeline.StageValue(v.Stage, b.Items))}
		for _, p := range periods {
			pct := pipeline.Allocation(b.ScheduleAllocations, v.Stage, p.ID)
			if pct == 0 {
				row = append(row, "-")
				continue
			}
			row = append(row, cli.FormatPercent(pct))
		}
		sum := cli.FormatPercent(v.Sum)
		if v.Valid {
			sum = cli.OKStyle.Render(sum)
		} else {
			sum = cli.WarnStyle.Render(sum)
		}
		rows = append(rows, append(row, sum))
	}

	totals := pipeline.PeriodTotals(periods, b.Items, b.ScheduleAllocations)
	rows = append(rows, []string{"---"})
	money := []string{"Desembolso", ""}
	cum := []string{"Acumulado", ""}
	for _, t := range totals {
		money = append(money, cli.FormatMoney(t.Value))
		cum = append(cum, cli.FormatPercent(t.CumulativePercent))
	}
	rows = append(rows, append(money, ""))

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Cronograma Físico-Financeiro  ·  " + b.Name,
		Headers: headers,
		Rows:    rows,
		Footer:  append(cum, ""),
	}))
	fmt.Println()
}

func printBaseline(b model.Budget) {
	if len(b.BaselineAllocations) == 0 {
		fmt.Println("  No baseline frozen yet. Run with --snapshot first.")
		return
	}
	deltas := pipeline.CompareBaseline(pipeline.SortPeriods(b.SchedulePeriods), b.Items, b.ScheduleAllocations, b.BaselineAllocations)
	rows := make([][]string, 0, len(deltas))
	for _, d := range deltas {
		delta := cli.FormatMoney(d.Delta)
		if d.Delta != 0 {
			delta = cli.WarnStyle.Render(delta)
		}
		rows = append(rows, []string{
			d.Name,
			cli.FormatMoney(d.Baseline),
			cli.FormatMoney(d.Planned),
			delta,
			cli.FormatPercent(d.BaselineCumulativePercent),
			cli.FormatPercent(d.PlannedCumulativePercent),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Linha de Base",
		Headers: []string{"Período", "Base", "Planejado", "Diferença", "Base Acum.", "Plan. Acum."},
		Rows:    rows,
	}))
	fmt.Println()
}

// editBudget runs one workspace action against a stored budget and persists
// the result.
func editBudget(ctx context.Context, repo *store.Repo, id string, fn func(state.Workspace) (state.Workspace, error)) (model.Budget, error) {
	b, err := repo.FindBudget(ctx, id)
	if err != nil {
		return model.Budget{}, err
	}
	ws, err := fn(state.New([]model.Budget{b}, nil, nil))
	if err != nil {
		return model.Budget{}, err
	}
	updated, err := ws.Budget(id)
	if err != nil {
		return model.Budget{}, err
	}
	return repo.SaveBudget(ctx, updated)
}
