package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boxincode/sitekit/internal/core/domain"
	"github.com/boxincode/sitekit/internal/core/ports/driven"
)

type syncFixture struct {
	orchestrator *SyncOrchestrator
	stores       *testStores
	oauth        *fakeOAuth
	config       *fakeConfig
	executor     *fakeExecutor
}

func newSyncFixture(t *testing.T) *syncFixture {
	t.Helper()
	stores := newTestStores()
	oauth := &fakeOAuth{}
	config := newFakeConfig()
	exec := newFakeExecutor()

	registry, err := NewConnectorRegistry()
	require.NoError(t, err)

	tokens := NewTokenService(stores.tokens, oauth)
	metrics := NewMetricsService(registry, tokens, oauth, stores.snapshots, stores.settings, newFakeCache(), config)
	orchestrator := NewSyncOrchestrator(stores.accounts, stores.tokens, metrics, exec, config)
	return &syncFixture{orchestrator: orchestrator, stores: stores, oauth: oauth, config: config, executor: exec}
}

func (f *syncFixture) connectedAccount(t *testing.T, email string) *domain.Account {
	t.Helper()
	account := testAccount(t, f.stores, 1, email)
	err := f.stores.tokens.Save(context.Background(), domain.TokenRecord{
		AccountID:   account.ID,
		AccessToken: "live-token",
		ExpiresAt:   timePtr(time.Now().Add(time.Hour)),
	})
	require.NoError(t, err)
	return account
}

func (f *syncFixture) configureGA4(t *testing.T, accountID int64) {
	t.Helper()
	require.NoError(t, f.stores.settings.Set(context.Background(), domain.Setting{
		AccountID: &accountID,
		Key:       domain.SettingGA4Property,
		Value:     domain.StringSetting("properties/123"),
	}))
	f.oauth.ga4Report = &driven.Report{Rows: []driven.ReportRow{
		{Dimensions: []string{"20260830"}, Metrics: []float64{10, 12, 30}},
	}}
}

func (f *syncFixture) configureGSC(t *testing.T, accountID int64) {
	t.Helper()
	require.NoError(t, f.stores.settings.Set(context.Background(), domain.Setting{
		AccountID: &accountID,
		Key:       domain.SettingGSCSite,
		Value:     domain.StringSetting("https://example.com/"),
	}))
	f.oauth.gscReport = &driven.Report{Rows: []driven.ReportRow{
		{Dimensions: []string{"2026-08-30"}, Metrics: []float64{7, 210}},
	}}
}

func TestSyncAllDisabled(t *testing.T) {
	f := newSyncFixture(t)
	require.NoError(t, f.config.Set("sync.enabled", false))

	_, err := f.orchestrator.SyncAll(context.Background())
	require.ErrorIs(t, err, domain.ErrSyncDisabled)
}

func TestSyncEnabledByDefault(t *testing.T) {
	f := newSyncFixture(t)

	status, err := f.orchestrator.SyncAll(context.Background())
	require.NoError(t, err)
	assert.Zero(t, status.Total)
}

func TestSyncAllSkipsAccountsWithoutTokens(t *testing.T) {
	f := newSyncFixture(t)
	connected := f.connectedAccount(t, "connected@example.com")
	testAccount(t, f.stores, 1, "tokenless@example.com")

	status, err := f.orchestrator.SyncAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, status.Total)
	require.Len(t, f.executor.units, 1)
	assert.Equal(t, []int64{connected.ID}, f.executor.units[0])
}

func TestSyncAccountPersistsSnapshots(t *testing.T) {
	f := newSyncFixture(t)
	account := f.connectedAccount(t, "connected@example.com")
	f.configureGA4(t, account.ID)
	f.configureGSC(t, account.ID)

	status, err := f.orchestrator.SyncAccount(context.Background(), account.ID)
	require.NoError(t, err)
	assert.True(t, status.Done)
	assert.Zero(t, status.Failed)

	for _, period := range []string{"7d", "28d"} {
		for _, connector := range []string{"ga4", "gsc"} {
			snapshot, err := f.stores.snapshots.Latest(context.Background(), account.ID, connector, period)
			require.NoError(t, err, "%s %s snapshot missing", connector, period)
			assert.NotEmpty(t, snapshot.Data)
		}
	}
}

func TestSyncAccountSkipsUnconfiguredConnector(t *testing.T) {
	f := newSyncFixture(t)
	account := f.connectedAccount(t, "connected@example.com")
	f.configureGA4(t, account.ID)

	status, err := f.orchestrator.SyncAccount(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Zero(t, status.Failed)

	_, err = f.stores.snapshots.Latest(context.Background(), account.ID, "ga4", "7d")
	require.NoError(t, err)
	_, err = f.stores.snapshots.Latest(context.Background(), account.ID, "gsc", "7d")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSyncAccountFetchFailureDoesNotFailUnit(t *testing.T) {
	f := newSyncFixture(t)
	account := f.connectedAccount(t, "connected@example.com")
	f.configureGA4(t, account.ID)
	f.oauth.ga4Err = assert.AnError

	status, err := f.orchestrator.SyncAccount(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Zero(t, status.Failed, "fetch failures are logged, not fatal")
}

func TestSyncAccountUnknownAccount(t *testing.T) {
	f := newSyncFixture(t)

	_, err := f.orchestrator.SyncAccount(context.Background(), 99)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSyncPeriodsFromConfig(t *testing.T) {
	f := newSyncFixture(t)
	require.NoError(t, f.config.Set("sync.periods", []string{"7d"}))
	require.NoError(t, f.config.Set("periods.allowed", []string{"7d"}))
	account := f.connectedAccount(t, "connected@example.com")
	f.configureGA4(t, account.ID)

	_, err := f.orchestrator.SyncAccount(context.Background(), account.ID)
	require.NoError(t, err)

	_, err = f.stores.snapshots.Latest(context.Background(), account.ID, "ga4", "7d")
	require.NoError(t, err)
	_, err = f.stores.snapshots.Latest(context.Background(), account.ID, "ga4", "28d")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSyncStatus(t *testing.T) {
	f := newSyncFixture(t)
	account := f.connectedAccount(t, "connected@example.com")

	status, err := f.orchestrator.SyncAccount(context.Background(), account.ID)
	require.NoError(t, err)

	fetched, err := f.orchestrator.Status(context.Background(), status.ID)
	require.NoError(t, err)
	assert.Equal(t, status.ID, fetched.ID)

	_, err = f.orchestrator.Status(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
