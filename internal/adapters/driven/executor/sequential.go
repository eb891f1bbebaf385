package executor

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/boxincode/sitekit/internal/core/domain"
	"github.com/boxincode/sitekit/internal/core/ports/driven"
	"github.com/boxincode/sitekit/internal/logger"
)

// Ensure Sequential implements the interface.
var _ driven.SyncExecutor = (*Sequential)(nil)

// Sequential runs sync units inline, one after another. Execute returns
// only when every unit has finished, so callers see a completed batch.
type Sequential struct {
	mu      sync.RWMutex
	batches map[string]*driven.BatchStatus
}

// NewSequential creates a sequential executor.
func NewSequential() *Sequential {
	return &Sequential{
		batches: make(map[string]*driven.BatchStatus),
	}
}

// Execute runs the units in order and returns the finished batch status.
// A unit failure is recorded and the remaining units still run.
func (e *Sequential) Execute(ctx context.Context, name string, units []driven.SyncUnit) (*driven.BatchStatus, error) {
	status := &driven.BatchStatus{
		ID:    uuid.NewString(),
		Name:  name,
		Total: len(units),
	}

	for _, unit := range units {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := unit.Run(ctx); err != nil {
			logger.Warn("Sync unit failed for account %d: %v", unit.AccountID, err)
			status.Failed++
		}
		status.Completed++
	}
	status.Done = true

	e.mu.Lock()
	e.batches[status.ID] = status
	e.mu.Unlock()

	return status, nil
}

// Status reports a previously executed batch.
func (e *Sequential) Status(_ context.Context, batchID string) (*driven.BatchStatus, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	status, ok := e.batches[batchID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *status
	return &copied, nil
}
