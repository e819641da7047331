// Package cmd implements the orca CLI commands.
package cmd

import (
	"fmt"
	"time"

	"github.com/theirongolddev/orca/internal/cli"
	"github.com/theirongolddev/orca/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Database:    %s\n", dbPath())
	fmt.Printf("    Log level:   %s\n", cfg.General.LogLevel)
	fmt.Printf("    Log format:  %s\n", cfg.General.LogFormat)
	fmt.Println()

	fmt.Println("  [Defaults]")
	charges := cfg.Defaults.SocialCharges(time.Now())
	if cfg.Defaults.ChargesOverride != nil {
		fmt.Printf("    Social charges: %s (override)\n", cli.FormatPercent(charges))
	} else {
		fmt.Printf("    Social charges: %s (%s regime)\n", cli.FormatPercent(charges), cfg.Defaults.ChargesRegime)
	}
	fmt.Printf("    BDI:            %s\n", cli.FormatPercent(cfg.Defaults.BDIPct))
	fmt.Printf("    Tax rate:       %s\n", cli.FormatPercent(cfg.Defaults.TaxRatePct))
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  Run `orca setup` to reconfigure.")
	return nil
}
