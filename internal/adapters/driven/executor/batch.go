package executor

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/boxincode/sitekit/internal/core/domain"
	"github.com/boxincode/sitekit/internal/core/ports/driven"
	"github.com/boxincode/sitekit/internal/logger"
)

// defaultWorkers bounds batch concurrency when none is configured.
const defaultWorkers = 3

// Ensure Batch implements the interface.
var _ driven.SyncExecutor = (*Batch)(nil)

// Batch fans sync units out onto a bounded worker pool. Execute returns
// as soon as the batch is dispatched; progress is polled via Status.
type Batch struct {
	workers int

	mu      sync.RWMutex
	batches map[string]*driven.BatchStatus
}

// NewBatch creates a batch executor with the given worker count.
// Non-positive counts fall back to the default.
func NewBatch(workers int) *Batch {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Batch{
		workers: workers,
		batches: make(map[string]*driven.BatchStatus),
	}
}

// Execute dispatches the units and returns the in-flight batch status.
func (e *Batch) Execute(ctx context.Context, name string, units []driven.SyncUnit) (*driven.BatchStatus, error) {
	status := &driven.BatchStatus{
		ID:    uuid.NewString(),
		Name:  name,
		Total: len(units),
		Done:  len(units) == 0,
	}

	e.mu.Lock()
	e.batches[status.ID] = status
	e.mu.Unlock()

	// Snapshot before any worker can touch the shared status.
	dispatched := *status
	if len(units) == 0 {
		return &dispatched, nil
	}

	jobs := make(chan driven.SyncUnit)
	var wg sync.WaitGroup
	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for unit := range jobs {
				err := unit.Run(ctx)
				if err != nil {
					logger.Warn("Sync unit failed for account %d: %v", unit.AccountID, err)
				}
				e.recordResult(status.ID, err)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, unit := range units {
			select {
			case jobs <- unit:
			case <-ctx.Done():
				e.markDone(status.ID)
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		e.markDone(status.ID)
	}()

	return &dispatched, nil
}

// Status reports progress for a dispatched batch.
func (e *Batch) Status(_ context.Context, batchID string) (*driven.BatchStatus, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	status, ok := e.batches[batchID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *status
	return &copied, nil
}

func (e *Batch) recordResult(batchID string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	status, ok := e.batches[batchID]
	if !ok {
		return
	}
	status.Completed++
	if err != nil {
		status.Failed++
	}
	if status.Completed >= status.Total {
		status.Done = true
	}
}

func (e *Batch) markDone(batchID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if status, ok := e.batches[batchID]; ok {
		status.Done = true
	}
}
