package cmd

import (
	"fmt"

	"github.com/theirongolddev/orca/internal/cli"
	"github.com/theirongolddev/orca/internal/store"

	"github.com/spf13/cobra"
)

var compositionsCmd = &cobra.Command{
	Use:   "compositions",
	Short: "List catalog compositions with their cost breakdown",
	Args:  cobra.NoArgs,
	RunE:  runCompositions,
}

var flagShowInputs bool

func init() {
	compositionsCmd.Flags().BoolVar(&flagShowInputs, "inputs", false, "List catalog inputs instead")
	rootCmd.AddCommand(compositionsCmd)
}

func runCompositions(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	return withRepo(ctx, func(repo *store.Repo) error {
		if flagShowInputs {
			return printInputs(cmd, repo)
		}

		comps, err := repo.FindAllCompositions(ctx)
		if err != nil {
			return err
		}
		if len(comps) == 0 {
			fmt.Println("\n  No compositions in the catalog.")
			return nil
		}

		rows := make([][]string, 0, len(comps))
		for _, c := range comps {
			rows = append(rows, []string{
				c.Code,
				c.Name,
				c.Unit,
				cli.FormatMoney(c.Cost.MaterialCost),
				cli.FormatMoney(c.Cost.LaborWithCharges),
				cli.FormatMoney(c.Cost.EquipmentCost),
				cli.FormatMoney(c.Cost.DirectCost),
				cli.FormatMoney(c.Cost.TotalWithBDI),
			})
		}

		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:    "Composições",
			Headers:  []string{"Código", "Descrição", "Un", "Material", "M.O. c/ Encargos", "Equip.", "Custo Direto", "c/ BDI"},
			Rows:     rows,
			LeftCols: 3,
		}))
		return nil
	})
}

func printInputs(cmd *cobra.Command, repo *store.Repo) error {
	inputs, err := repo.FindAllInputs(cmd.Context())
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		fmt.Println("\n  No inputs in the catalog.")
		return nil
	}

	rows := make([][]string, 0, len(inputs))
	for _, in := range inputs {
		rows = append(rows, []string{
			in.Code,
			in.Name,
			in.Unit,
			string(in.Kind),
			string(in.Source),
			cli.FormatMoney(in.Price),
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:    "Insumos",
		Headers:  []string{"Código", "Descrição", "Un", "Tipo", "Fonte", "Preço"},
		Rows:     rows,
		LeftCols: 5,
	}))
	return nil
}
