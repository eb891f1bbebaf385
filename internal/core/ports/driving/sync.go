package driving

import (
	"context"

	"github.com/boxincode/sitekit/internal/core/ports/driven"
)

// SyncOrchestrator drives the snapshot synchronization pipeline.
type SyncOrchestrator interface {
	// SyncAll syncs every account with a stored token across all enabled
	// connectors and configured periods. Returns domain.ErrSyncDisabled
	// when sync is switched off in configuration.
	SyncAll(ctx context.Context) (*driven.BatchStatus, error)

	// SyncAccount syncs a single account across all enabled connectors
	// and configured periods.
	SyncAccount(ctx context.Context, accountID int64) (*driven.BatchStatus, error)

	// Status reports progress of a dispatched batch.
	Status(ctx context.Context, batchID string) (*driven.BatchStatus, error)
}
