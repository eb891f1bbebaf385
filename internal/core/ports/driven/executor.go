package driven

import "context"

// SyncUnit is one account's unit of sync work.
type SyncUnit struct {
	// AccountID identifies the account to sync.
	AccountID int64
	// Run performs the work. Implementations catch their own per-metric
	// failures; a returned error means the whole unit failed.
	Run func(ctx context.Context) error
}

// BatchStatus describes a dispatched batch.
type BatchStatus struct {
	// ID is the batch identifier.
	ID string
	// Name is the batch's display name.
	Name string
	// Total is the number of units in the batch.
	Total int
	// Completed is the number of finished units (failed ones included).
	Completed int
	// Failed is the number of units whose Run returned an error.
	Failed int
	// Done reports whether every unit has finished.
	Done bool
}

// SyncExecutor is the execution strategy for per-account sync units.
// The sequential executor runs units inline and returns once all have
// finished; the batch executor fans units out onto workers and returns a
// batch id immediately.
type SyncExecutor interface {
	// Execute runs the units under a named batch and returns its status.
	Execute(ctx context.Context, name string, units []SyncUnit) (*BatchStatus, error)

	// Status reports progress for a previously dispatched batch.
	// Returns domain.ErrNotFound for unknown batch ids.
	Status(ctx context.Context, batchID string) (*BatchStatus, error)
}
