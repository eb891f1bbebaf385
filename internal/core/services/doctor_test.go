package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boxincode/sitekit/internal/core/domain"
	"github.com/boxincode/sitekit/internal/core/ports/driven"
	"github.com/boxincode/sitekit/internal/core/ports/driving"
)

func newDoctorFixture(t *testing.T, connectors ...*fakeConnector) (*DoctorService, *testStores, *fakeConfig) {
	t.Helper()
	stores := newTestStores()
	config := newFakeConfig()

	registered := make([]driven.Connector, len(connectors))
	for i, c := range connectors {
		registered[i] = c
	}
	registry, err := NewConnectorRegistry(registered...)
	require.NoError(t, err)

	tokens := NewTokenService(stores.tokens, &fakeOAuth{})
	return NewDoctorService(config, tokens, stores.settings, registry), stores, config
}

func resultByName(results []driving.CheckResult, name string) *driving.CheckResult {
	for i := range results {
		if results[i].Name == name {
			return &results[i]
		}
	}
	return nil
}

func TestDoctorReportsMissingConfig(t *testing.T) {
	service, _, _ := newDoctorFixture(t, &fakeConnector{key: "ga4", enabled: true, status: domain.StatusReady})

	results := service.Check(context.Background(), nil)

	for _, key := range []string{"google.client_id", "google.client_secret", "google.redirect_uri"} {
		result := resultByName(results, key)
		require.NotNil(t, result, "missing check for %s", key)
		assert.Equal(t, driving.CheckFail, result.Status)
	}
}

func TestDoctorPassesWithConfig(t *testing.T) {
	service, _, config := newDoctorFixture(t, &fakeConnector{key: "ga4", enabled: true, status: domain.StatusReady})
	require.NoError(t, config.Set("google.client_id", "id"))
	require.NoError(t, config.Set("google.client_secret", "secret"))
	require.NoError(t, config.Set("google.redirect_uri", "http://localhost:8123/callback"))

	results := service.Check(context.Background(), nil)

	for _, key := range []string{"google.client_id", "google.client_secret", "google.redirect_uri"} {
		result := resultByName(results, key)
		require.NotNil(t, result)
		assert.Equal(t, driving.CheckOK, result.Status)
	}
}

func TestDoctorFailsWithoutConnectors(t *testing.T) {
	service, _, _ := newDoctorFixture(t)

	results := service.Check(context.Background(), nil)
	result := resultByName(results, "connectors")
	require.NotNil(t, result)
	assert.Equal(t, driving.CheckFail, result.Status)
}

func TestDoctorTokenChecks(t *testing.T) {
	ga4 := &fakeConnector{key: "ga4", enabled: true, status: domain.StatusReady}
	service, stores, _ := newDoctorFixture(t, ga4)
	account := testAccount(t, stores, 1, "a@example.com")

	// No stored token.
	results := service.Check(context.Background(), account)
	result := resultByName(results, "token")
	require.NotNil(t, result)
	assert.Equal(t, driving.CheckFail, result.Status)

	// Expired token with a refresh token warns but does not fail.
	err := stores.tokens.Save(context.Background(), domain.TokenRecord{
		AccountID:    account.ID,
		AccessToken:  "stale",
		RefreshToken: "refresh",
		ExpiresAt:    timePtr(time.Now().Add(-time.Hour)),
	})
	require.NoError(t, err)
	results = service.Check(context.Background(), account)
	assert.Equal(t, driving.CheckWarn, resultByName(results, "token").Status)

	// Expired token without a refresh token needs a reconnect.
	err = stores.tokens.Save(context.Background(), domain.TokenRecord{
		AccountID:   account.ID,
		AccessToken: "stale",
		ExpiresAt:   timePtr(time.Now().Add(-time.Hour)),
	})
	require.NoError(t, err)
	results = service.Check(context.Background(), account)
	assert.Equal(t, driving.CheckFail, resultByName(results, "token").Status)

	// Valid token.
	err = stores.tokens.Save(context.Background(), domain.TokenRecord{
		AccountID:   account.ID,
		AccessToken: "live",
		ExpiresAt:   timePtr(time.Now().Add(time.Hour)),
	})
	require.NoError(t, err)
	results = service.Check(context.Background(), account)
	assert.Equal(t, driving.CheckOK, resultByName(results, "token").Status)
}

func TestDoctorConnectorStatuses(t *testing.T) {
	ga4 := &fakeConnector{key: "ga4", enabled: true, status: domain.StatusReady}
	gsc := &fakeConnector{key: "gsc", enabled: true, status: domain.StatusNeedsSetup}
	service, stores, _ := newDoctorFixture(t, ga4, gsc)
	account := testAccount(t, stores, 1, "a@example.com")

	results := service.Check(context.Background(), account)
	assert.Equal(t, driving.CheckOK, resultByName(results, "connector:ga4").Status)
	assert.Equal(t, driving.CheckWarn, resultByName(results, "connector:gsc").Status)

	gsc.status = domain.StatusDisconnected
	results = service.Check(context.Background(), account)
	assert.Equal(t, driving.CheckFail, resultByName(results, "connector:gsc").Status)
}

func TestDoctorHealthIssues(t *testing.T) {
	ga4 := &fakeConnector{key: "ga4", enabled: true, status: domain.StatusReady, issues: []domain.HealthIssue{
		{Level: domain.HealthWarning, Title: "No property selected"},
	}}
	gsc := &fakeConnector{key: "gsc", enabled: true, status: domain.StatusReady}
	service, stores, _ := newDoctorFixture(t, ga4, gsc)
	account := testAccount(t, stores, 1, "a@example.com")

	issues := service.HealthIssues(context.Background(), account)
	require.Len(t, issues, 1)
	assert.Equal(t, "No property selected", issues[0].Title)
}
