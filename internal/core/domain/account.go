package domain

import (
	"fmt"
	"time"
)

// ProviderGoogle is the only identity provider Site Kit connects to.
const ProviderGoogle = "google"

// Account identifies one connected Google identity for one local user.
type Account struct {
	// ID is the unique identifier assigned by the store.
	ID int64 `json:"id"`
	// UserID is the local user who created (and owns) the account.
	UserID int64 `json:"user_id"`
	// WorkspaceID optionally scopes the account to a workspace.
	// Nil when the host application has no workspace concept.
	WorkspaceID *int64 `json:"workspace_id,omitempty"`
	// Provider identifies the identity provider (always "google").
	Provider string `json:"provider"`
	// Email is the connected Google account's email address.
	Email string `json:"email"`
	// DisplayName is the profile name reported by the provider.
	DisplayName string `json:"display_name,omitempty"`
	// Name is an optional custom label chosen by the user.
	Name string `json:"name,omitempty"`

	// CreatedAt is when the account was first connected.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is when the account was last updated.
	UpdatedAt time.Time `json:"updated_at"`
}

// Label returns the best human-readable name for the account.
func (a *Account) Label() string {
	switch {
	case a.Name != "":
		return a.Name
	case a.DisplayName != "":
		return a.DisplayName
	case a.Email != "":
		return a.Email
	default:
		return fmt.Sprintf("Account #%d", a.ID)
	}
}

// Role is a user's level of access to a shared account.
type Role string

const (
	// RoleOwner is the account creator. There is exactly one owner per
	// account and ownership cannot be reassigned or revoked.
	RoleOwner Role = "owner"
	// RoleAdmin may manage settings and members.
	RoleAdmin Role = "admin"
	// RoleViewer may only read metrics.
	RoleViewer Role = "viewer"
)

// IsValid reports whether the role is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleViewer:
		return true
	}
	return false
}

// Membership links a local user to an account with a role.
type Membership struct {
	// AccountID is the shared account.
	AccountID int64 `json:"account_id"`
	// UserID is the local user granted access.
	UserID int64 `json:"user_id"`
	// Role is the user's access level on the account.
	Role Role `json:"role"`

	// CreatedAt is when the membership was granted.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is when the membership was last changed.
	UpdatedAt time.Time `json:"updated_at"`
}
