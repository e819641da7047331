package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/theirongolddev/orca/internal/config"
	"github.com/theirongolddev/orca/internal/logger"
	"github.com/theirongolddev/orca/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagDBPath   string
	flagQuiet    bool
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "orca",
	Short: "Construction budget engine",
	Long:  "Price compositions, total budgets, rank costs on the ABC curve, plan schedules and track measurements.",
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		level := cfg.General.LogLevel
		if cmd.Flags().Changed("log-level") {
			level = flagLogLevel
		}
		slog.SetDefault(logger.New(os.Stderr, level, cfg.General.LogFormat))
		return nil
	},
	RunE:          runBudgets,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "  error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Database path (default: config, $ORCA_DB_PATH, then data dir)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
}

// dbPath resolves the database location: flag, env/config, then default.
func dbPath() string {
	if flagDBPath != "" {
		return flagDBPath
	}
	cfg, _ := config.Load()
	if p := config.DBPath(cfg); p != "" {
		return p
	}
	return store.DefaultPath()
}

// openRepo is the shared database path used by all commands.
func openRepo(ctx context.Context) (*store.Repo, error) {
	path := dbPath()
	slog.Debug("opening store", "path", path)
	repo, err := store.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return repo, nil
}

// withRepo opens the store, runs fn and closes the store.
func withRepo(ctx context.Context, fn func(*store.Repo) error) error {
	repo, err := openRepo(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = repo.Close() }()
	return fn(repo)
}

func progressf(format string, args ...any) {
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
