package google

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boxincode/sitekit/internal/core/domain"
	"github.com/boxincode/sitekit/internal/core/ports/driven"
)

func newGA4(t *testing.T, oauth *stubOAuth, tokens *stubTokens, property string) *GA4Connector {
	t.Helper()
	settings := settingsWith(t, 1, domain.SettingGA4Property, property)
	return NewGA4Connector(oauth, tokens, settings, newStubConfig())
}

func TestGA4Identity(t *testing.T) {
	c := newGA4(t, &stubOAuth{}, &stubTokens{token: "token"}, "properties/123")
	assert.Equal(t, "ga4", c.Key())
	assert.Equal(t, "Google Analytics", c.Label())
	assert.NotEmpty(t, c.Description())
	assert.NotEmpty(t, c.Icon())
}

func TestGA4EnabledDefaultsOn(t *testing.T) {
	config := newStubConfig()
	c := NewGA4Connector(&stubOAuth{}, &stubTokens{}, settingsWith(t, 1, "", ""), config)
	assert.True(t, c.Enabled())

	require.NoError(t, config.Set("connectors.ga4.enabled", false))
	assert.False(t, c.Enabled())
}

func TestGA4SetupStatus(t *testing.T) {
	account := connectorAccount()

	tests := []struct {
		name     string
		tokens   *stubTokens
		property string
		account  *domain.Account
		want     domain.SetupStatus
	}{
		{"nil account", &stubTokens{token: "token"}, "properties/123", nil, domain.StatusDisconnected},
		{"no token", &stubTokens{err: domain.ErrNoToken}, "properties/123", account, domain.StatusDisconnected},
		{"auth expired", &stubTokens{err: domain.ErrAuthExpired}, "properties/123", account, domain.StatusDisconnected},
		{"token check failed", &stubTokens{err: assert.AnError}, "properties/123", account, domain.StatusError},
		{"no property", &stubTokens{token: "token"}, "", account, domain.StatusNeedsSetup},
		{"ready", &stubTokens{token: "token"}, "properties/123", account, domain.StatusReady},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newGA4(t, &stubOAuth{}, tt.tokens, tt.property)
			assert.Equal(t, tt.want, c.SetupStatus(context.Background(), tt.account))
		})
	}
}

func TestGA4HealthCheck(t *testing.T) {
	c := newGA4(t, &stubOAuth{}, &stubTokens{token: "token"}, "properties/123")

	issues := c.HealthCheck(context.Background(), nil)
	require.Len(t, issues, 1)
	assert.Equal(t, domain.HealthError, issues[0].Level)

	c = newGA4(t, &stubOAuth{}, &stubTokens{err: domain.ErrAuthExpired}, "properties/123")
	issues = c.HealthCheck(context.Background(), connectorAccount())
	require.Len(t, issues, 1)
	assert.Equal(t, "Google authentication expired", issues[0].Title)

	c = newGA4(t, &stubOAuth{}, &stubTokens{token: "token"}, "")
	issues = c.HealthCheck(context.Background(), connectorAccount())
	require.Len(t, issues, 1)
	assert.Equal(t, domain.HealthWarning, issues[0].Level)

	c = newGA4(t, &stubOAuth{}, &stubTokens{token: "token"}, "properties/123")
	assert.Empty(t, c.HealthCheck(context.Background(), connectorAccount()))
}

func TestGA4FetchSnapshotNoProperty(t *testing.T) {
	oauth := &stubOAuth{}
	c := newGA4(t, oauth, &stubTokens{token: "token"}, "")

	payload := c.FetchSnapshot(context.Background(), connectorAccount(), "7d")
	assert.True(t, payload.IsError())
	assert.Equal(t, "No GA4 property selected", payload["error"])
	assert.Zero(t, oauth.ga4Calls, "a missing property must not run a report")
}

func TestGA4FetchSnapshotAuthExpired(t *testing.T) {
	oauth := &stubOAuth{}
	c := newGA4(t, oauth, &stubTokens{err: domain.ErrAuthExpired}, "properties/123")

	payload := c.FetchSnapshot(context.Background(), connectorAccount(), "7d")
	assert.Equal(t, "Google authentication expired. Please reconnect.", payload["error"])
	assert.Zero(t, oauth.ga4Calls)
}

func TestGA4FetchSnapshot(t *testing.T) {
	oauth := &stubOAuth{ga4Reports: []*driven.Report{
		{Rows: []driven.ReportRow{
			{Dimensions: []string{"20260829"}, Metrics: []float64{10, 12, 30}},
			{Dimensions: []string{"20260830"}, Metrics: []float64{20, 24, 60}},
		}},
		{Rows: []driven.ReportRow{
			{Dimensions: []string{"/home"}, Metrics: []float64{55}},
		}},
		{Rows: []driven.ReportRow{
			{Dimensions: []string{"Organic Search"}, Metrics: []float64{21}},
		}},
	}}
	c := newGA4(t, oauth, &stubTokens{token: "token"}, "properties/123")

	payload := c.FetchSnapshot(context.Background(), connectorAccount(), "7d")
	require.False(t, payload.IsError())
	assert.Equal(t, "7d", payload["period"])
	assert.Equal(t, "properties/123", payload["property_id"])
	assert.Equal(t, map[string]any{"users": 30, "sessions": 36, "pageviews": 90}, payload["totals"])

	daily, ok := payload["daily"].([]domain.DailyRow)
	require.True(t, ok)
	require.Len(t, daily, 2)
	assert.Equal(t, "2026-08-29", daily[0]["date"])

	pages, ok := payload["top_pages"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, pages, 1)
	assert.Equal(t, "/home", pages[0]["path"])
	assert.Equal(t, 55, pages[0]["pageviews"])

	channels, ok := payload["channels"].([]map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Organic Search", channels[0]["channel"])
	assert.Equal(t, 3, oauth.ga4Calls)
}

func TestGA4FetchSnapshotReportFailure(t *testing.T) {
	oauth := &stubOAuth{ga4Err: assert.AnError}
	c := newGA4(t, oauth, &stubTokens{token: "token"}, "properties/123")

	payload := c.FetchSnapshot(context.Background(), connectorAccount(), "7d")
	assert.True(t, payload.IsError())
	assert.Contains(t, payload, "meta")
}

func TestGA4FetchTimeSeriesUnknownMetric(t *testing.T) {
	oauth := &stubOAuth{}
	c := newGA4(t, oauth, &stubTokens{token: "token"}, "properties/123")

	series := c.FetchTimeSeries(context.Background(), connectorAccount(), "7d", "clicks")
	assert.True(t, series.IsEmpty())
	assert.Zero(t, oauth.ga4Calls)
}

func TestGA4FetchTimeSeries(t *testing.T) {
	oauth := &stubOAuth{ga4Reports: []*driven.Report{
		{Rows: []driven.ReportRow{
			{Dimensions: []string{"20260829"}, Metrics: []float64{10}},
			{Dimensions: []string{"20260830"}, Metrics: []float64{20}},
		}},
	}}
	c := newGA4(t, oauth, &stubTokens{token: "token"}, "properties/123")

	series := c.FetchTimeSeries(context.Background(), connectorAccount(), "7d", "users")
	assert.Equal(t, []string{"2026-08-29", "2026-08-30"}, series.Labels)
	assert.Equal(t, []float64{10, 20}, series.Values)
}

func TestGA4FetchTimeSeriesNoToken(t *testing.T) {
	oauth := &stubOAuth{}
	c := newGA4(t, oauth, &stubTokens{err: domain.ErrNoToken}, "properties/123")

	series := c.FetchTimeSeries(context.Background(), connectorAccount(), "7d", "users")
	assert.True(t, series.IsEmpty())
	assert.Zero(t, oauth.ga4Calls)
}
