package memory

import (
	"context"
	"sync"

	"github.com/boxincode/sitekit/internal/core/domain"
	"github.com/boxincode/sitekit/internal/core/ports/driven"
)

// Ensure SnapshotStore implements the interface.
var _ driven.SnapshotStore = (*SnapshotStore)(nil)

// snapshotKey addresses one snapshot day.
type snapshotKey struct {
	accountID int64
	connector string
	period    string
	fetchedOn string
}

// SnapshotStore is an in-memory implementation of driven.SnapshotStore.
type SnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[snapshotKey]domain.Snapshot
}

// NewSnapshotStore creates a new in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		snapshots: make(map[snapshotKey]domain.Snapshot),
	}
}

// Save upserts the snapshot keyed by (account, connector, period, day).
func (s *SnapshotStore) Save(_ context.Context, snapshot domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snapshotKey{
		accountID: snapshot.AccountID,
		connector: snapshot.Connector,
		period:    snapshot.Period,
		fetchedOn: snapshot.FetchedOn,
	}] = snapshot
	return nil
}

// Latest returns the most recent snapshot for (account, connector, period).
func (s *SnapshotStore) Latest(_ context.Context, accountID int64, connector, period string) (*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *domain.Snapshot
	for key, snapshot := range s.snapshots {
		if key.accountID != accountID || key.connector != connector || key.period != period {
			continue
		}
		if latest == nil || snapshot.FetchedOn > latest.FetchedOn {
			copied := snapshot
			latest = &copied
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	return latest, nil
}

// CountForDay returns how many snapshot rows exist for the key and day.
func (s *SnapshotStore) CountForDay(_ context.Context, accountID int64, connector, period, fetchedOn string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.snapshots[snapshotKey{accountID, connector, period, fetchedOn}]; ok {
		return 1, nil
	}
	return 0, nil
}

// DeleteByAccount removes all snapshots for an account.
func (s *SnapshotStore) DeleteByAccount(_ context.Context, accountID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.snapshots {
		if key.accountID == accountID {
			delete(s.snapshots, key)
		}
	}
	return nil
}
