package driven

import (
	"context"

	"github.com/boxincode/sitekit/internal/core/domain"
)

// TokenProvider supplies a valid access token for an account on demand,
// refreshing behind the scenes when needed. Connectors depend on this
// rather than on the token store directly.
type TokenProvider interface {
	// GetValidAccessToken returns a usable access token for the account.
	// Errors classify as auth failures via domain.IsAuthError.
	GetValidAccessToken(ctx context.Context, account *domain.Account) (string, error)
}
