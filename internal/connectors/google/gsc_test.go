package google

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boxincode/sitekit/internal/core/domain"
	"github.com/boxincode/sitekit/internal/core/ports/driven"
)

func newGSC(t *testing.T, oauth *stubOAuth, tokens *stubTokens, site string) *GSCConnector {
	t.Helper()
	settings := settingsWith(t, 1, domain.SettingGSCSite, site)
	return NewGSCConnector(oauth, tokens, settings, newStubConfig())
}

func TestGSCIdentity(t *testing.T) {
	c := newGSC(t, &stubOAuth{}, &stubTokens{token: "token"}, "https://example.com/")
	assert.Equal(t, "gsc", c.Key())
	assert.Equal(t, "Search Console", c.Label())
	assert.NotEmpty(t, c.Description())
	assert.NotEmpty(t, c.Icon())
}

func TestGSCEnabledDefaultsOn(t *testing.T) {
	config := newStubConfig()
	c := NewGSCConnector(&stubOAuth{}, &stubTokens{}, settingsWith(t, 1, "", ""), config)
	assert.True(t, c.Enabled())

	require.NoError(t, config.Set("connectors.gsc.enabled", false))
	assert.False(t, c.Enabled())
}

func TestGSCSetupStatus(t *testing.T) {
	account := connectorAccount()

	tests := []struct {
		name   string
		tokens *stubTokens
		site   string
		want   domain.SetupStatus
	}{
		{"no token", &stubTokens{err: domain.ErrNoToken}, "https://example.com/", domain.StatusDisconnected},
		{"refresh failed", &stubTokens{err: domain.ErrTokenRefreshFailed}, "https://example.com/", domain.StatusDisconnected},
		{"no site", &stubTokens{token: "token"}, "", domain.StatusNeedsSetup},
		{"ready", &stubTokens{token: "token"}, "https://example.com/", domain.StatusReady},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newGSC(t, &stubOAuth{}, tt.tokens, tt.site)
			assert.Equal(t, tt.want, c.SetupStatus(context.Background(), account))
		})
	}
}

func TestGSCFetchSnapshotNoSite(t *testing.T) {
	oauth := &stubOAuth{}
	c := newGSC(t, oauth, &stubTokens{token: "token"}, "")

	payload := c.FetchSnapshot(context.Background(), connectorAccount(), "7d")
	assert.Equal(t, "No Search Console site selected", payload["error"])
	assert.Zero(t, oauth.gscCalls)
}

func TestGSCFetchSnapshot(t *testing.T) {
	oauth := &stubOAuth{gscReports: []*driven.Report{
		{Rows: []driven.ReportRow{
			{Metrics: []float64{100, 2000, 0.05, 12.3}},
		}},
		{Rows: []driven.ReportRow{
			{Dimensions: []string{"site kit"}, Metrics: []float64{40, 800, 0.05, 3.2}},
		}},
		{Rows: []driven.ReportRow{
			{Dimensions: []string{"https://example.com/docs"}, Metrics: []float64{25, 500, 0.05, 5.1}},
		}},
	}}
	c := newGSC(t, oauth, &stubTokens{token: "token"}, "https://example.com/")

	payload := c.FetchSnapshot(context.Background(), connectorAccount(), "7d")
	require.False(t, payload.IsError())
	assert.Equal(t, "https://example.com/", payload["site_url"])
	assert.Equal(t, map[string]any{
		"clicks": 100.0, "impressions": 2000.0, "ctr": 0.05, "position": 12.3,
	}, payload["totals"])

	queries, ok := payload["top_queries"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, queries, 1)
	assert.Equal(t, "site kit", queries[0]["query"])
	assert.Equal(t, 40.0, queries[0]["clicks"])

	pages, ok := payload["top_pages"].([]map[string]any)
	require.True(t, ok)
	assert.Equal(t, "https://example.com/docs", pages[0]["page"])
	assert.Equal(t, 3, oauth.gscCalls)
}

func TestGSCFetchSnapshotEmptyTotals(t *testing.T) {
	oauth := &stubOAuth{gscReports: []*driven.Report{{}, {}, {}}}
	c := newGSC(t, oauth, &stubTokens{token: "token"}, "https://example.com/")

	payload := c.FetchSnapshot(context.Background(), connectorAccount(), "7d")
	require.False(t, payload.IsError())
	assert.Equal(t, map[string]any{
		"clicks": 0.0, "impressions": 0.0, "ctr": 0.0, "position": 0.0,
	}, payload["totals"])
}

func TestGSCFetchSnapshotQueryFailure(t *testing.T) {
	oauth := &stubOAuth{gscErr: assert.AnError}
	c := newGSC(t, oauth, &stubTokens{token: "token"}, "https://example.com/")

	payload := c.FetchSnapshot(context.Background(), connectorAccount(), "7d")
	assert.True(t, payload.IsError())
	assert.Contains(t, payload, "meta")
}

func TestGSCFetchTimeSeries(t *testing.T) {
	oauth := &stubOAuth{gscReports: []*driven.Report{
		{Rows: []driven.ReportRow{
			{Dimensions: []string{"2026-08-29"}, Metrics: []float64{5, 150, 0.03, 8.0}},
			{Dimensions: []string{"2026-08-30"}, Metrics: []float64{9, 210, 0.04, 7.5}},
		}},
	}}
	c := newGSC(t, oauth, &stubTokens{token: "token"}, "https://example.com/")

	clicks := c.FetchTimeSeries(context.Background(), connectorAccount(), "7d", "clicks")
	assert.Equal(t, []string{"2026-08-29", "2026-08-30"}, clicks.Labels)
	assert.Equal(t, []float64{5, 9}, clicks.Values)

	impressions := c.FetchTimeSeries(context.Background(), connectorAccount(), "7d", "impressions")
	assert.Equal(t, []float64{150, 210}, impressions.Values)
}

func TestGSCFetchTimeSeriesUnknownMetric(t *testing.T) {
	oauth := &stubOAuth{}
	c := newGSC(t, oauth, &stubTokens{token: "token"}, "https://example.com/")

	series := c.FetchTimeSeries(context.Background(), connectorAccount(), "7d", "sessions")
	assert.True(t, series.IsEmpty())
	assert.Zero(t, oauth.gscCalls)
}

func TestPeriodRange(t *testing.T) {
	start, end := periodRange("7d")
	assert.Len(t, start, 10)
	assert.Len(t, end, 10)
	assert.Less(t, start, end)
}
