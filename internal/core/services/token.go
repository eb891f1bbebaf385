package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/boxincode/sitekit/internal/core/domain"
	"github.com/boxincode/sitekit/internal/core/ports/driven"
	"github.com/boxincode/sitekit/internal/logger"
)

// TokenService owns the OAuth token lifecycle for connected accounts:
// storing tokens after the connect dance and silently refreshing them
// when they expire.
type TokenService struct {
	tokens driven.TokenStore
	oauth  driven.OAuthClient
}

// NewTokenService creates a new token service.
func NewTokenService(tokens driven.TokenStore, oauth driven.OAuthClient) *TokenService {
	return &TokenService{
		tokens: tokens,
		oauth:  oauth,
	}
}

// SaveToken stores a token payload for an account, overwriting any
// previous record in place.
func (s *TokenService) SaveToken(ctx context.Context, accountID int64, payload domain.TokenPayload) error {
	if payload.AccessToken == "" {
		return fmt.Errorf("save token: %w", domain.ErrInvalidInput)
	}

	record := domain.TokenRecord{
		AccountID:    accountID,
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
		ExpiresAt:    payload.ExpiresAt,
		Scopes:       payload.Scopes,
		UpdatedAt:    time.Now(),
	}
	return s.tokens.Save(ctx, record)
}

// GetValidAccessToken returns a usable access token for the account,
// refreshing the stored token once when it has expired.
//
// No stored record yields domain.ErrNoToken. An expired token without a
// refresh token yields domain.ErrAuthExpired without touching the
// network. A failed refresh yields domain.ErrTokenRefreshFailed.
// Concurrent callers may both trigger a refresh; the later write wins.
func (s *TokenService) GetValidAccessToken(ctx context.Context, account *domain.Account) (string, error) {
	record, err := s.tokens.Get(ctx, account.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return "", domain.ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("get token: %w", err)
	}

	if !record.IsExpired() {
		return record.AccessToken, nil
	}

	if record.RefreshToken == "" {
		return "", domain.ErrAuthExpired
	}

	return s.refresh(ctx, account, record)
}

// refresh performs exactly one refresh call and persists the result.
// When the provider omits the refresh token or the scopes in its
// response, the stored values are carried over.
func (s *TokenService) refresh(ctx context.Context, account *domain.Account, record *domain.TokenRecord) (string, error) {
	payload, err := s.oauth.RefreshToken(ctx, record.RefreshToken)
	if err != nil {
		logger.Warn("Token refresh failed for account %d: %v", account.ID, err)
		return "", fmt.Errorf("%w: %v", domain.ErrTokenRefreshFailed, err)
	}

	if payload.RefreshToken == "" {
		payload.RefreshToken = record.RefreshToken
	}
	if len(payload.Scopes) == 0 {
		payload.Scopes = record.Scopes
	}

	if err := s.SaveToken(ctx, account.ID, *payload); err != nil {
		return "", fmt.Errorf("save refreshed token: %w", err)
	}

	logger.Debug("Refreshed access token for account %d", account.ID)
	return payload.AccessToken, nil
}

// HasValidToken reports whether the account can currently produce a
// usable access token.
func (s *TokenService) HasValidToken(ctx context.Context, account *domain.Account) bool {
	_, err := s.GetValidAccessToken(ctx, account)
	return err == nil
}

// Record returns the stored token record for an account without
// triggering a refresh.
func (s *TokenService) Record(ctx context.Context, accountID int64) (*domain.TokenRecord, error) {
	return s.tokens.Get(ctx, accountID)
}

// DeleteToken removes the stored token for an account.
func (s *TokenService) DeleteToken(ctx context.Context, accountID int64) error {
	return s.tokens.Delete(ctx, accountID)
}
