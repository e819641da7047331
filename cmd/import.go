package cmd

import (
	"fmt"
	"log/slog"

	"github.com/theirongolddev/orca/internal/cli"
	"github.com/theirongolddev/orca/internal/store"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <dir>",
	Short: "Import budget and catalog documents from a directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	dir := args[0]
	progressf("  Scanning %s...\n", dir)

	return withRepo(cmd.Context(), func(repo *store.Repo) error {
		res, err := repo.Sync(cmd.Context(), dir, func(current, total int) {
			if current%50 == 0 || current == total {
				progressf("\r  Parsing [%d/%d]", current, total)
			}
		})
		if err != nil {
			return err
		}
		if res.TotalFiles == 0 {
			progressf("  No documents found in %s\n", dir)
			return nil
		}

		progressf("\r  %s files: %d unchanged, %d imported    \n",
			cli.FormatNumber(int64(res.TotalFiles)), res.Unchanged, res.Reparsed)
		progressf("  %d budgets, %d compositions, %d inputs\n",
			len(res.Budgets), len(res.Compositions), len(res.Inputs))

		for _, w := range res.Warnings {
			slog.Warn("reference", "warning", w.String())
			fmt.Println("  " + cli.WarnStyle.Render("! "+w.String()))
		}
		for _, e := range res.Invalid {
			fmt.Println("  " + cli.ErrorStyle.Render("x "+e.Error()))
		}
		for _, path := range res.FailedFiles {
			fmt.Println("  " + cli.ErrorStyle.Render("x could not read "+path))
		}
		return nil
	})
}
