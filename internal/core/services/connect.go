package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/boxincode/sitekit/internal/core/domain"
	"github.com/boxincode/sitekit/internal/core/ports/driven"
	"github.com/boxincode/sitekit/internal/core/ports/driving"
	"github.com/boxincode/sitekit/internal/logger"
)

// Ensure ConnectService implements the interface.
var _ driving.ConnectFlow = (*ConnectService)(nil)

// ConnectService runs the OAuth connect and disconnect lifecycle.
// A failed callback leaves no account and no token behind.
type ConnectService struct {
	oauth       driven.OAuthClient
	accounts    driven.AccountStore
	memberships driven.MembershipStore
	tokens      *TokenService
	accountSvc  *AccountService
	metrics     *MetricsService
}

// NewConnectService creates a new connect service.
func NewConnectService(
	oauth driven.OAuthClient,
	accounts driven.AccountStore,
	memberships driven.MembershipStore,
	tokens *TokenService,
	accountSvc *AccountService,
	metrics *MetricsService,
) *ConnectService {
	return &ConnectService{
		oauth:       oauth,
		accounts:    accounts,
		memberships: memberships,
		tokens:      tokens,
		accountSvc:  accountSvc,
		metrics:     metrics,
	}
}

// Start generates the CSRF state and builds the provider consent URL.
// The caller holds on to the state and passes it back to Complete.
func (s *ConnectService) Start(_ context.Context) (string, string, error) {
	state, err := generateState()
	if err != nil {
		return "", "", fmt.Errorf("generate state: %w", err)
	}
	return s.oauth.AuthorizationURL(state), state, nil
}

// Complete finishes the OAuth dance: verifies the state, exchanges the
// code, fetches the profile and creates the account with its token and
// owner membership. The new account becomes the user's current one.
func (s *ConnectService) Complete(ctx context.Context, userID int64, workspaceID *int64, code, state, expectedState string) (*domain.Account, error) {
	if subtle.ConstantTimeCompare([]byte(state), []byte(expectedState)) != 1 {
		return nil, domain.ErrStateMismatch
	}

	payload, err := s.oauth.ExchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	profile, err := s.oauth.FetchProfile(ctx, payload.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}

	now := time.Now()
	account, created, err := s.accounts.Upsert(ctx, domain.Account{
		UserID:      userID,
		WorkspaceID: workspaceID,
		Provider:    domain.ProviderGoogle,
		Email:       profile.Email,
		DisplayName: profile.Name,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert account: %w", err)
	}

	// A failure past this point must not leave a half-connected account
	// behind, but only a row this flow created may be rolled back: on a
	// reconnect the account, its snapshots and memberships predate us.
	if err := s.finishConnect(ctx, userID, account, payload); err != nil {
		if created {
			if delErr := s.accounts.Delete(ctx, account.ID); delErr != nil {
				logger.Warn("Roll back account %d: %v", account.ID, delErr)
			}
		}
		return nil, err
	}

	logger.Info("Connected account %d (%s) for user %d", account.ID, account.Email, userID)
	return account, nil
}

func (s *ConnectService) finishConnect(ctx context.Context, userID int64, account *domain.Account, payload *domain.TokenPayload) error {
	now := time.Now()
	if err := s.memberships.Save(ctx, domain.Membership{
		AccountID: account.ID,
		UserID:    userID,
		Role:      domain.RoleOwner,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		return fmt.Errorf("save owner membership: %w", err)
	}

	if err := s.tokens.SaveToken(ctx, account.ID, *payload); err != nil {
		return fmt.Errorf("save token: %w", err)
	}

	if err := s.accountSvc.SetCurrentAccount(ctx, userID, account.ID); err != nil {
		return fmt.Errorf("set current account: %w", err)
	}
	return nil
}

// Disconnect deletes the account's token, settings and snapshots, then
// the account row itself. The store cascades memberships.
func (s *ConnectService) Disconnect(ctx context.Context, accountID int64) error {
	if err := s.metrics.ClearAccountData(ctx, accountID); err != nil {
		return fmt.Errorf("clear account data: %w", err)
	}
	if err := s.accounts.Delete(ctx, accountID); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	logger.Info("Disconnected account %d", accountID)
	return nil
}
