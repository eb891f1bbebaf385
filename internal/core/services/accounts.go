package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/boxincode/sitekit/internal/core/domain"
	"github.com/boxincode/sitekit/internal/core/ports/driven"
	"github.com/boxincode/sitekit/internal/core/ports/driving"
)

// Ensure AccountService implements the interface.
var _ driving.AccountService = (*AccountService)(nil)

// AccountService manages accounts, membership sharing and account-scoped
// settings. Every membership mutation enforces the single-owner rule.
type AccountService struct {
	accounts    driven.AccountStore
	memberships driven.MembershipStore
	settings    driven.SettingStore
}

// NewAccountService creates a new account service.
func NewAccountService(
	accounts driven.AccountStore,
	memberships driven.MembershipStore,
	settings driven.SettingStore,
) *AccountService {
	return &AccountService{
		accounts:    accounts,
		memberships: memberships,
		settings:    settings,
	}
}

// Get fetches an account by id.
func (s *AccountService) Get(ctx context.Context, id int64) (*domain.Account, error) {
	return s.accounts.Get(ctx, id)
}

// ListAccessible lists the accounts the user owns or is a member of.
// Other users' accounts never appear, even inside a shared workspace.
func (s *AccountService) ListAccessible(ctx context.Context, userID int64) ([]*domain.Account, error) {
	accounts, err := s.accounts.ListAccessible(ctx, userID, domain.ProviderGoogle)
	if err != nil {
		return nil, fmt.Errorf("list accessible accounts: %w", err)
	}

	result := make([]*domain.Account, len(accounts))
	for i := range accounts {
		result[i] = &accounts[i]
	}
	return result, nil
}

// CurrentAccount resolves the user's selected account. An unset or stale
// selection falls back to the first accessible account; no accessible
// accounts yields domain.ErrNotFound.
func (s *AccountService) CurrentAccount(ctx context.Context, userID int64) (*domain.Account, error) {
	if id := s.selectedAccountID(ctx, userID); id != 0 {
		account, err := s.accounts.Get(ctx, id)
		if err == nil {
			if ok, accessErr := s.hasAccess(ctx, account, userID); accessErr == nil && ok {
				return account, nil
			}
		} else if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("get selected account: %w", err)
		}
	}

	accessible, err := s.ListAccessible(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(accessible) == 0 {
		return nil, domain.ErrNotFound
	}
	return accessible[0], nil
}

// SetCurrentAccount records the user's active account after an access
// check.
func (s *AccountService) SetCurrentAccount(ctx context.Context, userID, accountID int64) error {
	account, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		return fmt.Errorf("get account: %w", err)
	}

	ok, err := s.hasAccess(ctx, account, userID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrAccessDenied
	}

	return s.settings.Set(ctx, domain.Setting{
		Key:       currentAccountKey(userID),
		Value:     domain.StringSetting(strconv.FormatInt(accountID, 10)),
		UpdatedAt: time.Now(),
	})
}

// AddMember grants a user a role on an account. The owner role is
// assigned only at connect time and cannot be granted here.
func (s *AccountService) AddMember(ctx context.Context, accountID, userID int64, role domain.Role) error {
	if !role.IsValid() {
		return fmt.Errorf("role %q: %w", role, domain.ErrInvalidInput)
	}
	if role == domain.RoleOwner {
		return domain.ErrOwnerRole
	}

	now := time.Now()
	return s.memberships.Save(ctx, domain.Membership{
		AccountID: accountID,
		UserID:    userID,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// UpdateMemberRole changes a member's role. The owner's role cannot be
// changed and owner cannot be assigned.
func (s *AccountService) UpdateMemberRole(ctx context.Context, accountID, userID int64, role domain.Role) error {
	if !role.IsValid() {
		return fmt.Errorf("role %q: %w", role, domain.ErrInvalidInput)
	}
	if role == domain.RoleOwner {
		return domain.ErrOwnerRole
	}

	membership, err := s.memberships.Get(ctx, accountID, userID)
	if err != nil {
		return fmt.Errorf("get membership: %w", err)
	}
	if membership.Role == domain.RoleOwner {
		return domain.ErrOwnerRole
	}

	membership.Role = role
	membership.UpdatedAt = time.Now()
	return s.memberships.Save(ctx, *membership)
}

// RemoveMember revokes a membership. The owner cannot be removed.
func (s *AccountService) RemoveMember(ctx context.Context, accountID, userID int64) error {
	membership, err := s.memberships.Get(ctx, accountID, userID)
	if err != nil {
		return fmt.Errorf("get membership: %w", err)
	}
	if membership.Role == domain.RoleOwner {
		return domain.ErrOwnerRole
	}
	return s.memberships.Delete(ctx, accountID, userID)
}

// ListMembers lists an account's memberships.
func (s *AccountService) ListMembers(ctx context.Context, accountID int64) ([]*domain.Membership, error) {
	memberships, err := s.memberships.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}

	result := make([]*domain.Membership, len(memberships))
	for i := range memberships {
		result[i] = &memberships[i]
	}
	return result, nil
}

// GetSetting reads an account-scoped setting as a string, "" when unset.
func (s *AccountService) GetSetting(ctx context.Context, accountID int64, key string) (string, error) {
	setting, err := s.settings.Get(ctx, &accountID, key)
	if errors.Is(err, domain.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get setting %s: %w", key, err)
	}
	return setting.StringValue(), nil
}

// SetSetting writes an account-scoped setting.
func (s *AccountService) SetSetting(ctx context.Context, accountID int64, key, value string) error {
	return s.settings.Set(ctx, domain.Setting{
		AccountID: &accountID,
		Key:       key,
		Value:     domain.StringSetting(value),
		UpdatedAt: time.Now(),
	})
}

// hasAccess reports whether the user owns the account or holds a
// membership on it.
func (s *AccountService) hasAccess(ctx context.Context, account *domain.Account, userID int64) (bool, error) {
	if account.UserID == userID {
		return true, nil
	}
	_, err := s.memberships.Get(ctx, account.ID, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get membership: %w", err)
	}
	return true, nil
}

// selectedAccountID reads the user's stored selection, 0 when unset.
func (s *AccountService) selectedAccountID(ctx context.Context, userID int64) int64 {
	setting, err := s.settings.Get(ctx, nil, currentAccountKey(userID))
	if err != nil {
		return 0
	}
	id, err := strconv.ParseInt(setting.StringValue(), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// currentAccountKey is the module-level setting key holding a user's
// active account selection.
func currentAccountKey(userID int64) string {
	return fmt.Sprintf("%s:%d", domain.SettingCurrentAccount, userID)
}
