package memory

import (
	"context"
	"sync"
	"time"

	"github.com/boxincode/sitekit/internal/core/domain"
	"github.com/boxincode/sitekit/internal/core/ports/driven"
)

// Ensure TokenStore implements the interface.
var _ driven.TokenStore = (*TokenStore)(nil)

// TokenStore is an in-memory implementation of driven.TokenStore.
// Records are stored as-is; encryption at rest is a concern of the
// SQLite store only.
type TokenStore struct {
	mu      sync.RWMutex
	records map[int64]domain.TokenRecord
}

// NewTokenStore creates a new in-memory token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{
		records: make(map[int64]domain.TokenRecord),
	}
}

// Get retrieves the token record for an account.
func (s *TokenStore) Get(_ context.Context, accountID int64) (*domain.TokenRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[accountID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &record, nil
}

// Save stores the record for its account, overwriting in place.
func (s *TokenStore) Save(_ context.Context, record domain.TokenRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = time.Now().UTC()
	}
	s.records[record.AccountID] = record
	return nil
}

// Delete removes the stored token for an account.
func (s *TokenStore) Delete(_ context.Context, accountID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, accountID)
	return nil
}
