package memory

import (
	"context"
	"sync"
	"time"

	"github.com/boxincode/sitekit/internal/core/domain"
	"github.com/boxincode/sitekit/internal/core/ports/driven"
)

// Ensure SettingStore implements the interface.
var _ driven.SettingStore = (*SettingStore)(nil)

// settingKey addresses one setting. Account 0 is the module level.
type settingKey struct {
	accountID int64
	key       string
}

// SettingStore is an in-memory implementation of driven.SettingStore.
type SettingStore struct {
	mu       sync.RWMutex
	settings map[settingKey]domain.Setting
}

// NewSettingStore creates a new in-memory setting store.
func NewSettingStore() *SettingStore {
	return &SettingStore{
		settings: make(map[settingKey]domain.Setting),
	}
}

// Get retrieves a setting.
func (s *SettingStore) Get(_ context.Context, accountID *int64, key string) (*domain.Setting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	setting, ok := s.settings[settingKey{accountKey(accountID), key}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &setting, nil
}

// Set creates or updates a setting.
func (s *SettingStore) Set(_ context.Context, setting domain.Setting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if setting.UpdatedAt.IsZero() {
		setting.UpdatedAt = time.Now().UTC()
	}
	s.settings[settingKey{accountKey(setting.AccountID), setting.Key}] = setting
	return nil
}

// Delete removes a setting.
func (s *SettingStore) Delete(_ context.Context, accountID *int64, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.settings, settingKey{accountKey(accountID), key})
	return nil
}

// DeleteByAccount removes all settings for an account.
func (s *SettingStore) DeleteByAccount(_ context.Context, accountID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.settings {
		if k.accountID == accountID {
			delete(s.settings, k)
		}
	}
	return nil
}

func accountKey(accountID *int64) int64 {
	if accountID == nil {
		return 0
	}
	return *accountID
}
