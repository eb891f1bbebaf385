package driven

import (
	"context"

	"github.com/boxincode/sitekit/internal/core/domain"
)

// AccountStore persists connected accounts.
type AccountStore interface {
	// Upsert creates the account identified by (user, workspace, provider,
	// email), or updates its names if it already exists. The stored
	// account (with its id) is returned, along with whether a new row was
	// created. Callers cleaning up after themselves must not touch rows
	// they did not create.
	Upsert(ctx context.Context, account domain.Account) (*domain.Account, bool, error)

	// Get retrieves an account by id.
	Get(ctx context.Context, id int64) (*domain.Account, error)

	// List returns all accounts for a provider, ordered by label.
	List(ctx context.Context, provider string) ([]domain.Account, error)

	// ListAccessible returns the accounts a user owns or is a member of.
	// Accounts belonging to other users are never included, even when
	// they share the same workspace.
	ListAccessible(ctx context.Context, userID int64, provider string) ([]domain.Account, error)

	// Delete removes an account. The store cascades to its token,
	// settings, snapshots and memberships.
	Delete(ctx context.Context, id int64) error
}

// MembershipStore persists account sharing roles.
type MembershipStore interface {
	// Save creates or updates a membership row.
	Save(ctx context.Context, m domain.Membership) error

	// Get retrieves the membership for (account, user).
	// Returns domain.ErrNotFound when none exists.
	Get(ctx context.Context, accountID, userID int64) (*domain.Membership, error)

	// ListByAccount returns all memberships for an account.
	ListByAccount(ctx context.Context, accountID int64) ([]domain.Membership, error)

	// Delete removes the membership for (account, user).
	Delete(ctx context.Context, accountID, userID int64) error
}

// TokenStore persists OAuth credentials, encrypted at rest. Encryption and
// decryption happen explicitly at this boundary: records returned by Get
// carry plaintext tokens, records passed to Save are encrypted on write.
type TokenStore interface {
	// Get retrieves the token record for an account.
	// Returns domain.ErrNotFound when the account has no stored token.
	Get(ctx context.Context, accountID int64) (*domain.TokenRecord, error)

	// Save stores the record for its account, overwriting any existing
	// record in place.
	Save(ctx context.Context, record domain.TokenRecord) error

	// Delete removes the stored token for an account.
	Delete(ctx context.Context, accountID int64) error
}

// SettingStore persists account-scoped key/value settings.
// A nil account id addresses module-level settings.
type SettingStore interface {
	// Get retrieves a setting. Returns domain.ErrNotFound when unset.
	Get(ctx context.Context, accountID *int64, key string) (*domain.Setting, error)

	// Set creates or updates a setting.
	Set(ctx context.Context, setting domain.Setting) error

	// Delete removes a setting.
	Delete(ctx context.Context, accountID *int64, key string) error

	// DeleteByAccount removes all settings for an account.
	DeleteByAccount(ctx context.Context, accountID int64) error
}

// SnapshotStore persists daily metric snapshots.
type SnapshotStore interface {
	// Save upserts the snapshot keyed by (account, connector, period,
	// fetched_on). Saving twice on the same day overwrites.
	Save(ctx context.Context, snapshot domain.Snapshot) error

	// Latest returns the most recent snapshot for (account, connector,
	// period). Returns domain.ErrNotFound when none exists.
	Latest(ctx context.Context, accountID int64, connector, period string) (*domain.Snapshot, error)

	// CountForDay returns how many snapshot rows exist for the given key
	// and day. Used by tests and diagnostics to verify upsert idempotence.
	CountForDay(ctx context.Context, accountID int64, connector, period, fetchedOn string) (int, error)

	// DeleteByAccount removes all snapshots for an account.
	DeleteByAccount(ctx context.Context, accountID int64) error
}

// SchedulerStore persists recurring task state.
type SchedulerStore interface {
	// GetTask retrieves a task by id. Returns (nil, nil) when unknown.
	GetTask(ctx context.Context, id string) (*domain.ScheduledTask, error)

	// SaveTask creates or updates a task.
	SaveTask(ctx context.Context, task *domain.ScheduledTask) error

	// ListTasks returns all known tasks.
	ListTasks(ctx context.Context) ([]domain.ScheduledTask, error)
}
