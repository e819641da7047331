package cmd

import (
	"fmt"
	"strconv"

	"github.com/theirongolddev/orca/internal/cli"
	"github.com/theirongolddev/orca/internal/model"
	"github.com/theirongolddev/orca/internal/pipeline"
	"github.com/theirongolddev/orca/internal/store"

	"github.com/spf13/cobra"
)

var budgetsCmd = &cobra.Command{
	Use:   "budgets",
	Short: "List stored budgets",
	Args:  cobra.NoArgs,
	RunE:  runBudgets,
}

var budgetCmd = &cobra.Command{
	Use:   "budget <id>",
	Short: "Show a budget's items and totals",
	Args:  cobra.ExactArgs(1),
	RunE:  runBudget,
}

var flagBDI float64

func init() {
	budgetCmd.Flags().Float64Var(&flagBDI, "bdi", 0, "Set the budget's BDI percentage before showing it")
	rootCmd.AddCommand(budgetsCmd, budgetCmd)
}

func runBudgets(cmd *cobra.Command, _ []string) error {
	return withRepo(cmd.Context(), func(repo *store.Repo) error {
		budgets, err := repo.FindAllBudgets(cmd.Context())
		if err != nil {
			return err
		}
		if len(budgets) == 0 {
			fmt.Println("\n  No budgets stored.")
			fmt.Println("  Run `orca import <dir>` to load documents.")
			return nil
		}

		var grand float64
		rows := make([][]string, 0, len(budgets))
		for _, b := range budgets {
			grand += b.Totals.GrandTotal
			rows = append(rows, []string{
				b.ID,
				b.Name,
				strconv.Itoa(len(b.Items)),
				cli.FormatPercent(b.BDIPct),
				cli.FormatMoney(b.Totals.GrandTotal),
				cli.FormatDate(b.UpdatedAt),
			})
		}

		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:    "Orçamentos",
			Headers:  []string{"ID", "Nome", "Itens", "BDI", "Total", "Atualizado"},
			Rows:     rows,
			Footer:   []string{"", "", "", "", cli.FormatMoney(grand), ""},
			LeftCols: 2,
		}))
		return nil
	})
}

func runBudget(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	return withRepo(ctx, func(repo *store.Repo) error {
		var (
			b   model.Budget
			err error
		)
		if cmd.Flags().Changed("bdi") {
			b, err = repo.UpdateBudget(ctx, args[0], store.BudgetPatch{BDIPct: &flagBDI})
		} else {
			b, err = repo.FindBudget(ctx, args[0])
		}
		if err != nil {
			return fmt.Errorf("budget %s: %w", args[0], err)
		}
		printBudget(b)
		return nil
	})
}

func printBudget(b model.Budget) {
	rows := make([][]string, 0, len(b.Items))
	for _, it := range b.Items {
		rows = append(rows, []string{
			it.StageLabel(),
			it.Name,
			it.Unit,
			cli.FormatQuantity(it.Quantity),
			cli.FormatMoney(it.UnitPrice),
			cli.FormatPercent(it.DiscountPct),
			cli.FormatPercent(it.TaxRatePct),
			cli.FormatMoney(pipeline.LineTotal(it)),
		})
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("%s  ·  %s", b.Name, b.ID)))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:    "Itens",
		Headers:  []string{"Etapa", "Descrição", "Un", "Qtd", "Preço Unit.", "Desc.", "Imposto", "Total"},
		Rows:     rows,
		LeftCols: 3,
	}))
	fmt.Println()

	t := b.Totals
	fmt.Print(cli.RenderTable(cli.Table{
		Title: "Totais",
		Rows: [][]string{
			{"Subtotal", cli.FormatMoney(t.Subtotal)},
			{"(-) Descontos", cli.FormatMoney(t.TotalDiscount)},
			{"(+) Impostos", cli.FormatMoney(t.TotalTax)},
			{"(+) BDI " + cli.FormatPercent(b.BDIPct), cli.FormatMoney(t.BDIAmount)},
		},
		Footer: []string{"Total Geral", cli.FormatMoney(t.GrandTotal)},
	}))
	fmt.Println()
}
