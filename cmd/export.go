package cmd

import (
	"fmt"

	"github.com/theirongolddev/orca/internal/export"
	"github.com/theirongolddev/orca/internal/store"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export a budget to an xlsx workbook",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

var flagOutput string

func init() {
	exportCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Output file (default: <id>.xlsx)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := flagOutput
	if out == "" {
		out = args[0] + ".xlsx"
	}

	return withRepo(ctx, func(repo *store.Repo) error {
		b, err := repo.FindBudget(ctx, args[0])
		if err != nil {
			return fmt.Errorf("budget %s: %w", args[0], err)
		}
		inputs, comps, err := repo.Catalog(ctx)
		if err != nil {
			return err
		}
		if err := export.WriteFile(out, b, export.Options{Inputs: inputs, Compositions: comps}); err != nil {
			return err
		}
		progressf("  Wrote %s\n", out)
		return nil
	})
}
