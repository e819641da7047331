package cmd

import (
	"fmt"

	"github.com/theirongolddev/orca/internal/cli"
	"github.com/theirongolddev/orca/internal/model"
	"github.com/theirongolddev/orca/internal/pipeline"
	"github.com/theirongolddev/orca/internal/store"

	"github.com/spf13/cobra"
)

var abcCmd = &cobra.Command{
	Use:   "abc <id>",
	Short: "ABC curve of a budget's items or inputs",
	Args:  cobra.ExactArgs(1),
	RunE:  runABC,
}

var flagABCInputs bool

func init() {
	abcCmd.Flags().BoolVar(&flagABCInputs, "inputs", false, "Classify inputs exploded through compositions")
	rootCmd.AddCommand(abcCmd)
}

func runABC(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	return withRepo(ctx, func(repo *store.Repo) error {
		b, err := repo.FindBudget(ctx, args[0])
		if err != nil {
			return fmt.Errorf("budget %s: %w", args[0], err)
		}

		var (
			entries  []model.AbcEntry
			warnings []pipeline.ReferenceWarning
			mode     = "itens"
		)
		if flagABCInputs {
			inputs, comps, err := repo.Catalog(ctx)
			if err != nil {
				return err
			}
			entries, warnings = pipeline.ClassifyInputs(b.Items, comps, inputs)
			mode = "insumos"
		} else {
			entries = pipeline.ClassifyBudgetItems(b.Items)
		}

		if len(entries) == 0 {
			fmt.Println("\n  Nothing to classify.")
			return nil
		}

		rows := make([][]string, 0, len(entries))
		for i, e := range entries {
			rows = append(rows, []string{
				fmt.Sprintf("%d", i+1),
				e.Label,
				cli.FormatMoney(e.Value),
				cli.FormatPercent(e.Percentage),
				cli.FormatPercent(e.CumulativePercentage),
				classLabel(e.Class),
			})
		}

		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:    fmt.Sprintf("Curva ABC (%s)  ·  %s", mode, b.Name),
			Headers:  []string{"#", "Descrição", "Valor", "%", "% Acum.", "Classe"},
			Rows:     rows,
			LeftCols: 2,
		}))
		fmt.Println()

		summary := pipeline.SummarizeClasses(entries)
		srows := make([][]string, 0, 3)
		for _, c := range []model.AbcClass{model.ClassA, model.ClassB, model.ClassC} {
			s := summary[c]
			srows = append(srows, []string{
				classLabel(c),
				cli.FormatNumber(int64(s.Count)),
				cli.FormatMoney(s.Value),
				cli.FormatPercent(s.Share),
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"Classe", "Itens", "Valor", "Participação"},
			Rows:    srows,
		}))

		for _, w := range warnings {
			fmt.Println("  " + cli.WarnStyle.Render("! "+w.String()))
		}
		fmt.Println()
		return nil
	})
}

func classLabel(c model.AbcClass) string {
	switch c {
	case model.ClassA:
		return cli.ErrorStyle.Render(string(c))
	case model.ClassB:
		return cli.WarnStyle.Render(string(c))
	default:
		return cli.OKStyle.Render(string(c))
	}
}
