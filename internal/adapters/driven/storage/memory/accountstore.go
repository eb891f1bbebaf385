package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/boxincode/sitekit/internal/core/domain"
	"github.com/boxincode/sitekit/internal/core/ports/driven"
)

// Ensure AccountStore implements the interface.
var _ driven.AccountStore = (*AccountStore)(nil)

// AccountStore is an in-memory implementation of driven.AccountStore.
// Deleting an account cascades through the sibling stores handed to
// NewAccountStore, mirroring the SQLite store's foreign keys.
type AccountStore struct {
	mu       sync.RWMutex
	nextID   int64
	accounts map[int64]domain.Account

	memberships *MembershipStore
	tokens      *TokenStore
	settings    *SettingStore
	snapshots   *SnapshotStore
}

// NewAccountStore creates a new in-memory account store. The sibling
// stores may be nil when cascade behaviour is not under test.
func NewAccountStore(memberships *MembershipStore, tokens *TokenStore, settings *SettingStore, snapshots *SnapshotStore) *AccountStore {
	return &AccountStore{
		nextID:      1,
		accounts:    make(map[int64]domain.Account),
		memberships: memberships,
		tokens:      tokens,
		settings:    settings,
		snapshots:   snapshots,
	}
}

// Upsert creates or updates the account identified by its natural key.
// The second return value reports whether a new row was created.
func (s *AccountStore) Upsert(_ context.Context, account domain.Account) (*domain.Account, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	for id, existing := range s.accounts {
		if existing.UserID == account.UserID &&
			workspaceKey(existing.WorkspaceID) == workspaceKey(account.WorkspaceID) &&
			existing.Provider == account.Provider &&
			existing.Email == account.Email {
			existing.DisplayName = account.DisplayName
			existing.UpdatedAt = now
			s.accounts[id] = existing
			return &existing, false, nil
		}
	}

	account.ID = s.nextID
	s.nextID++
	account.CreatedAt = now
	account.UpdatedAt = now
	s.accounts[account.ID] = account
	return &account, true, nil
}

// Get retrieves an account by ID.
func (s *AccountStore) Get(_ context.Context, id int64) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &account, nil
}

// List returns all accounts for a provider, ordered by label.
func (s *AccountStore) List(_ context.Context, provider string) ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.Account
	for _, account := range s.accounts {
		if account.Provider == provider {
			result = append(result, account)
		}
	}
	sortAccounts(result)
	return result, nil
}

// ListAccessible returns the accounts a user owns or is a member of.
func (s *AccountStore) ListAccessible(ctx context.Context, userID int64, provider string) ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.Account
	for _, account := range s.accounts {
		if account.Provider != provider {
			continue
		}
		if account.UserID == userID {
			result = append(result, account)
			continue
		}
		if s.memberships != nil {
			if _, err := s.memberships.Get(ctx, account.ID, userID); err == nil {
				result = append(result, account)
			}
		}
	}
	sortAccounts(result)
	return result, nil
}

// Delete removes an account and its dependent rows.
func (s *AccountStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	delete(s.accounts, id)
	s.mu.Unlock()

	if s.memberships != nil {
		s.memberships.deleteByAccount(id)
	}
	if s.tokens != nil {
		_ = s.tokens.Delete(ctx, id)
	}
	if s.settings != nil {
		_ = s.settings.DeleteByAccount(ctx, id)
	}
	if s.snapshots != nil {
		_ = s.snapshots.DeleteByAccount(ctx, id)
	}
	return nil
}

func sortAccounts(accounts []domain.Account) {
	sort.Slice(accounts, func(i, j int) bool {
		return strings.ToLower(accounts[i].Label()) < strings.ToLower(accounts[j].Label())
	})
}

func workspaceKey(workspaceID *int64) int64 {
	if workspaceID == nil {
		return 0
	}
	return *workspaceID
}

// Ensure MembershipStore implements the interface.
var _ driven.MembershipStore = (*MembershipStore)(nil)

// MembershipStore is an in-memory implementation of driven.MembershipStore.
type MembershipStore struct {
	mu          sync.RWMutex
	memberships map[int64]map[int64]domain.Membership
}

// NewMembershipStore creates a new in-memory membership store.
func NewMembershipStore() *MembershipStore {
	return &MembershipStore{
		memberships: make(map[int64]map[int64]domain.Membership),
	}
}

// Save stores or updates a membership.
func (s *MembershipStore) Save(_ context.Context, m domain.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if existing, ok := s.memberships[m.AccountID][m.UserID]; ok {
		m.CreatedAt = existing.CreatedAt
	} else {
		m.CreatedAt = now
	}
	m.UpdatedAt = now

	if s.memberships[m.AccountID] == nil {
		s.memberships[m.AccountID] = make(map[int64]domain.Membership)
	}
	s.memberships[m.AccountID][m.UserID] = m
	return nil
}

// Get retrieves the membership for (account, user).
func (s *MembershipStore) Get(_ context.Context, accountID, userID int64) (*domain.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.memberships[accountID][userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &m, nil
}

// ListByAccount returns all memberships for an account, owner first.
func (s *MembershipStore) ListByAccount(_ context.Context, accountID int64) ([]domain.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.Membership
	for _, m := range s.memberships[accountID] {
		result = append(result, m)
	}
	sort.Slice(result, func(i, j int) bool {
		if ri, rj := roleRank(result[i].Role), roleRank(result[j].Role); ri != rj {
			return ri < rj
		}
		return result[i].UserID < result[j].UserID
	})
	return result, nil
}

// Delete removes the membership for (account, user).
func (s *MembershipStore) Delete(_ context.Context, accountID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.memberships[accountID], userID)
	return nil
}

func (s *MembershipStore) deleteByAccount(accountID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.memberships, accountID)
}

func roleRank(r domain.Role) int {
	switch r {
	case domain.RoleOwner:
		return 0
	case domain.RoleAdmin:
		return 1
	default:
		return 2
	}
}
