package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/boxincode/sitekit/internal/core/domain"
	"github.com/boxincode/sitekit/internal/core/ports/driven"
)

// batchPollInterval is how often a dispatched batch is polled for
// completion before the command returns.
const batchPollInterval = 250 * time.Millisecond

var syncAccountFlag int64

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch and store metric snapshots",
	Long: `Fetches metrics for every connected account across all enabled
connectors and configured periods, and stores one snapshot per day.
With --account only that account is synced.

With sync.queue_enabled the accounts are fetched concurrently; the
command still waits for every account to finish before returning.
Recurring sync runs are listed by 'sitekit schedule'.`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().Int64Var(&syncAccountFlag, "account", 0, "sync a single account id")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	if syncOrchestrator == nil {
		return errors.New("sync service not configured")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var status *driven.BatchStatus
	var err error
	if syncAccountFlag > 0 {
		cmd.Printf("Syncing account #%d...\n", syncAccountFlag)
		status, err = syncOrchestrator.SyncAccount(ctx, syncAccountFlag)
	} else {
		cmd.Println("Syncing all accounts...")
		status, err = syncOrchestrator.SyncAll(ctx)
	}
	if errors.Is(err, domain.ErrSyncDisabled) {
		cmd.Println("Sync is disabled in configuration (sync.enabled = false).")
		return nil
	}
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	// The batch executor returns before the workers finish. Exiting now
	// would kill them mid-fetch, so wait for the batch to drain.
	if !status.Done {
		cmd.Printf("Batch %s dispatched with %d accounts, waiting...\n", status.ID, status.Total)
		if status, err = waitForBatch(ctx, status.ID); err != nil {
			return err
		}
	}

	cmd.Printf("Synced %d of %d accounts (%d failed).\n",
		status.Completed-status.Failed, status.Total, status.Failed)
	return nil
}

// waitForBatch polls the dispatched batch until every unit has run.
func waitForBatch(ctx context.Context, batchID string) (*driven.BatchStatus, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(batchPollInterval):
		}

		status, err := syncOrchestrator.Status(ctx, batchID)
		if err != nil {
			return nil, fmt.Errorf("batch status: %w", err)
		}
		if status.Done {
			return status, nil
		}
	}
}
