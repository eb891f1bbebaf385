package google

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/boxincode/sitekit/internal/core/domain"
	"github.com/boxincode/sitekit/internal/core/ports/driven"
)

// StaticTokenSource wraps an already-validated access token for the
// Google API clients.
func StaticTokenSource(accessToken string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	})
}

// TokenSourceAdapter adapts a TokenProvider to oauth2.TokenSource, so a
// Google API service built once keeps working across token refreshes.
type TokenSourceAdapter struct {
	provider driven.TokenProvider
	account  *domain.Account
	ctx      context.Context
}

// NewTokenSource creates an oauth2.TokenSource bound to an account. The
// returned TokenSource can be used with option.WithTokenSource() when
// creating Google API services.
func NewTokenSource(ctx context.Context, provider driven.TokenProvider, account *domain.Account) oauth2.TokenSource {
	return &TokenSourceAdapter{
		provider: provider,
		account:  account,
		ctx:      ctx,
	}
}

// Token implements oauth2.TokenSource.
// Called by Google API clients when they need an access token.
func (t *TokenSourceAdapter) Token() (*oauth2.Token, error) {
	accessToken, err := t.provider.GetValidAccessToken(t.ctx, t.account)
	if err != nil {
		return nil, err
	}

	return &oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}, nil
}
