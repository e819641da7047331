package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/theirongolddev/orca/internal/daemon"
	"github.com/theirongolddev/orca/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagWatchAddr         string
	flagWatchInterval     time.Duration
	flagWatchEventsBuffer int
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Keep importing a document directory and serve budgets over HTTP/SSE",
	Long: "Polls <dir> and imports changed documents. Endpoints:\n" +
		"  /healthz  /v1/status  /v1/events  /v1/budgets/{id}  /v1/stream (SSE)",
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&flagWatchAddr, "addr", "127.0.0.1:8787", "HTTP listen address")
	watchCmd.Flags().DurationVar(&flagWatchInterval, "interval", 10*time.Second, "Polling interval")
	watchCmd.Flags().IntVar(&flagWatchEventsBuffer, "events-buffer", 200, "Max in-memory events kept")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return withRepo(ctx, func(repo *store.Repo) error {
		svc := daemon.New(daemon.Config{
			Dir:          args[0],
			Interval:     flagWatchInterval,
			Addr:         flagWatchAddr,
			EventsBuffer: flagWatchEventsBuffer,
		}, repo, slog.Default())

		progressf("  orca watch: %s -> http://%s\n", args[0], flagWatchAddr)
		if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("watch: %w", err)
		}
		return nil
	})
}
