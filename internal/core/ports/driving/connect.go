package driving

import (
	"context"

	"github.com/boxincode/sitekit/internal/core/domain"
)

// ConnectFlow runs the OAuth connect and disconnect lifecycle.
type ConnectFlow interface {
	// Start returns the provider authorization URL and the state value
	// the callback must echo back.
	Start(ctx context.Context) (authURL, state string, err error)

	// Complete exchanges the authorization code, fetches the profile and
	// upserts the account with its token. The supplied state must match
	// the expected one or domain.ErrStateMismatch is returned. A non-nil
	// workspaceID scopes the account to that workspace.
	Complete(ctx context.Context, userID int64, workspaceID *int64, code, state, expectedState string) (*domain.Account, error)

	// Disconnect deletes the account's token, settings and snapshots,
	// then the account itself with its memberships.
	Disconnect(ctx context.Context, accountID int64) error
}
