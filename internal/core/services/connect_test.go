package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boxincode/sitekit/internal/core/domain"
	"github.com/boxincode/sitekit/internal/core/ports/driven"
)

func newConnectFixture(t *testing.T) (*ConnectService, *testStores, *fakeOAuth) {
	t.Helper()
	stores := newTestStores()
	oauth := &fakeOAuth{}

	registry, err := NewConnectorRegistry()
	require.NoError(t, err)

	tokens := NewTokenService(stores.tokens, oauth)
	accounts := NewAccountService(stores.accounts, stores.memberships, stores.settings)
	metrics := NewMetricsService(registry, tokens, oauth, stores.snapshots, stores.settings, newFakeCache(), newFakeConfig())

	service := NewConnectService(oauth, stores.accounts, stores.memberships, tokens, accounts, metrics)
	return service, stores, oauth
}

func TestStartBuildsConsentURL(t *testing.T) {
	service, _, _ := newConnectFixture(t)

	url, state, err := service.Start(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, state)
	assert.True(t, strings.HasSuffix(url, state))
}

func TestStartStatesAreUnique(t *testing.T) {
	service, _, _ := newConnectFixture(t)

	_, first, err := service.Start(context.Background())
	require.NoError(t, err)
	_, second, err := service.Start(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestCompleteStateMismatch(t *testing.T) {
	service, stores, oauth := newConnectFixture(t)

	_, err := service.Complete(context.Background(), 1, nil, "code", "evil-state", "expected-state")
	require.ErrorIs(t, err, domain.ErrStateMismatch)
	assert.Zero(t, oauth.exchangeCalls, "a state mismatch must not exchange the code")

	accounts, err := stores.accounts.List(context.Background(), domain.ProviderGoogle)
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestCompleteConnectsAccount(t *testing.T) {
	service, stores, oauth := newConnectFixture(t)
	oauth.exchangePayload = &domain.TokenPayload{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		ExpiresAt:    timePtr(time.Now().Add(time.Hour)),
		Scopes:       []string{"scope-a"},
	}
	oauth.profile = &driven.Profile{Email: "user@example.com", Name: "Example User"}

	account, err := service.Complete(context.Background(), 1, nil, "code", "state", "state")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", account.Email)
	assert.Equal(t, "Example User", account.DisplayName)

	membership, err := stores.memberships.Get(context.Background(), account.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleOwner, membership.Role)

	record, err := stores.tokens.Get(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, "access-token", record.AccessToken)
	assert.Equal(t, "refresh-token", record.RefreshToken)

	accounts := NewAccountService(stores.accounts, stores.memberships, stores.settings)
	current, err := accounts.CurrentAccount(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, account.ID, current.ID)
}

func TestCompleteReconnectUpdatesExistingAccount(t *testing.T) {
	service, stores, oauth := newConnectFixture(t)
	oauth.exchangePayload = &domain.TokenPayload{AccessToken: "first-token"}
	oauth.profile = &driven.Profile{Email: "user@example.com", Name: "Old Name"}

	first, err := service.Complete(context.Background(), 1, nil, "code", "state", "state")
	require.NoError(t, err)

	oauth.exchangePayload = &domain.TokenPayload{AccessToken: "second-token"}
	oauth.profile = &driven.Profile{Email: "user@example.com", Name: "New Name"}

	second, err := service.Complete(context.Background(), 1, nil, "code", "state", "state")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "New Name", second.DisplayName)

	record, err := stores.tokens.Get(context.Background(), second.ID)
	require.NoError(t, err)
	assert.Equal(t, "second-token", record.AccessToken)
}

func TestCompleteRollsBackOnTokenFailure(t *testing.T) {
	service, stores, oauth := newConnectFixture(t)

	// An empty access token fails the token save after the account exists.
	oauth.exchangePayload = &domain.TokenPayload{}
	oauth.profile = &driven.Profile{Email: "user@example.com"}

	_, err := service.Complete(context.Background(), 1, nil, "code", "state", "state")
	require.Error(t, err)

	accounts, err := stores.accounts.List(context.Background(), domain.ProviderGoogle)
	require.NoError(t, err)
	assert.Empty(t, accounts, "a failed connect must not leave an account behind")
}

func TestCompleteFailedReconnectKeepsExistingAccount(t *testing.T) {
	service, stores, oauth := newConnectFixture(t)
	oauth.exchangePayload = &domain.TokenPayload{AccessToken: "first-token"}
	oauth.profile = &driven.Profile{Email: "user@example.com"}

	account, err := service.Complete(context.Background(), 1, nil, "code", "state", "state")
	require.NoError(t, err)

	require.NoError(t, stores.snapshots.Save(context.Background(), domain.Snapshot{
		AccountID: account.ID,
		Connector: "ga4",
		Period:    "7d",
		Data:      []byte(`[]`),
		FetchedOn: "2026-08-30",
	}))

	// An empty access token fails the reconnect after the upsert.
	oauth.exchangePayload = &domain.TokenPayload{}

	_, err = service.Complete(context.Background(), 1, nil, "code", "state", "state")
	require.Error(t, err)

	// The pre-existing account and its data must survive the failure.
	kept, err := stores.accounts.Get(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, account.ID, kept.ID)

	_, err = stores.snapshots.Latest(context.Background(), account.ID, "ga4", "7d")
	require.NoError(t, err)

	record, err := stores.tokens.Get(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, "first-token", record.AccessToken)

	membership, err := stores.memberships.Get(context.Background(), account.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleOwner, membership.Role)
}

func TestCompleteScopesAccountToWorkspace(t *testing.T) {
	service, stores, oauth := newConnectFixture(t)
	oauth.exchangePayload = &domain.TokenPayload{AccessToken: "access-token"}
	oauth.profile = &driven.Profile{Email: "user@example.com"}

	workspaceID := int64(7)
	account, err := service.Complete(context.Background(), 1, &workspaceID, "code", "state", "state")
	require.NoError(t, err)
	require.NotNil(t, account.WorkspaceID)
	assert.Equal(t, workspaceID, *account.WorkspaceID)

	// The same identity in another workspace is a separate account.
	other := int64(8)
	second, err := service.Complete(context.Background(), 1, &other, "code", "state", "state")
	require.NoError(t, err)
	assert.NotEqual(t, account.ID, second.ID)

	accounts, err := stores.accounts.List(context.Background(), domain.ProviderGoogle)
	require.NoError(t, err)
	assert.Len(t, accounts, 2)
}

func TestCompleteExchangeFailure(t *testing.T) {
	service, stores, oauth := newConnectFixture(t)
	oauth.exchangeErr = assert.AnError

	_, err := service.Complete(context.Background(), 1, nil, "code", "state", "state")
	require.Error(t, err)

	accounts, err := stores.accounts.List(context.Background(), domain.ProviderGoogle)
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestDisconnectRemovesAccountData(t *testing.T) {
	service, stores, oauth := newConnectFixture(t)
	oauth.exchangePayload = &domain.TokenPayload{AccessToken: "access-token"}
	oauth.profile = &driven.Profile{Email: "user@example.com"}

	account, err := service.Complete(context.Background(), 1, nil, "code", "state", "state")
	require.NoError(t, err)

	require.NoError(t, stores.settings.Set(context.Background(), domain.Setting{
		AccountID: &account.ID,
		Key:       domain.SettingGA4Property,
		Value:     domain.StringSetting("properties/123"),
	}))
	require.NoError(t, stores.snapshots.Save(context.Background(), domain.Snapshot{
		AccountID: account.ID,
		Connector: "ga4",
		Period:    "7d",
		Data:      []byte(`[]`),
		FetchedOn: "2026-08-30",
	}))

	require.NoError(t, service.Disconnect(context.Background(), account.ID))

	_, err = stores.accounts.Get(context.Background(), account.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
	_, err = stores.tokens.Get(context.Background(), account.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
	_, err = stores.settings.Get(context.Background(), &account.ID, domain.SettingGA4Property)
	require.ErrorIs(t, err, domain.ErrNotFound)
	_, err = stores.snapshots.Latest(context.Background(), account.ID, "ga4", "7d")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
