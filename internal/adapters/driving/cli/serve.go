package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// SchedulerRunner is the blocking background loop behind 'sitekit serve'.
type SchedulerRunner interface {
	Start(ctx context.Context) error
	Stop() error
}

var schedulerRunner SchedulerRunner

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the background scheduler",
	Long: `Runs the scheduler loop that keeps snapshots fresh on the configured
interval. Blocks until interrupted.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if schedulerRunner == nil {
		return errors.New("scheduler not configured")
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cmd.Println("\nShutting down...")
		schedulerRunner.Stop()
		cancel()
	}()

	cmd.Println("Scheduler running. Press Ctrl+C to stop.")
	return schedulerRunner.Start(ctx)
}
