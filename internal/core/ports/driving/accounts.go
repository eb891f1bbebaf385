package driving

import (
	"context"

	"github.com/boxincode/sitekit/internal/core/domain"
)

// AccountService manages accounts, memberships and account-scoped settings.
type AccountService interface {
	// Get fetches an account by id.
	Get(ctx context.Context, id int64) (*domain.Account, error)

	// ListAccessible lists accounts the user owns or is a member of.
	ListAccessible(ctx context.Context, userID int64) ([]*domain.Account, error)

	// CurrentAccount resolves the user's selected account, falling back
	// to the first accessible one when nothing is selected.
	CurrentAccount(ctx context.Context, userID int64) (*domain.Account, error)

	// SetCurrentAccount records the user's selected account after an
	// access check.
	SetCurrentAccount(ctx context.Context, userID, accountID int64) error

	// AddMember grants a user a role on an account. Granting owner is
	// rejected with domain.ErrOwnerRole.
	AddMember(ctx context.Context, accountID, userID int64, role domain.Role) error

	// UpdateMemberRole changes a member's role. The owner's role cannot
	// be changed.
	UpdateMemberRole(ctx context.Context, accountID, userID int64, role domain.Role) error

	// RemoveMember revokes a membership. The owner cannot be removed.
	RemoveMember(ctx context.Context, accountID, userID int64) error

	// ListMembers lists an account's memberships.
	ListMembers(ctx context.Context, accountID int64) ([]*domain.Membership, error)

	// GetSetting reads an account-scoped setting value as a string.
	GetSetting(ctx context.Context, accountID int64, key string) (string, error)

	// SetSetting writes an account-scoped setting.
	SetSetting(ctx context.Context, accountID int64, key, value string) error
}
