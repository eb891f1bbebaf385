package google

import (
	"context"
	"time"

	"github.com/boxincode/sitekit/internal/core/domain"
	"github.com/boxincode/sitekit/internal/core/ports/driven"
	"github.com/boxincode/sitekit/internal/logger"
)

// Search Console metric positions in a query row, in response order.
const (
	gscClicks = iota
	gscImpressions
	gscCtr
	gscPosition
)

// Ensure GSCConnector implements the interface.
var _ driven.Connector = (*GSCConnector)(nil)

// GSCConnector fetches search metrics from the Google Search Console
// API. It requires a connected account with a selected site.
type GSCConnector struct {
	oauth    driven.OAuthClient
	tokens   driven.TokenProvider
	settings driven.SettingStore
	config   driven.ConfigStore
}

// NewGSCConnector creates the Search Console connector.
func NewGSCConnector(
	oauth driven.OAuthClient,
	tokens driven.TokenProvider,
	settings driven.SettingStore,
	config driven.ConfigStore,
) *GSCConnector {
	return &GSCConnector{
		oauth:    oauth,
		tokens:   tokens,
		settings: settings,
		config:   config,
	}
}

// Key returns the connector key.
func (c *GSCConnector) Key() string { return "gsc" }

// Label returns the connector display name.
func (c *GSCConnector) Label() string { return "Search Console" }

// Description returns the connector summary.
func (c *GSCConnector) Description() string {
	return "Search performance from Google Search Console"
}

// Icon returns the connector icon hint.
func (c *GSCConnector) Icon() string { return "magnifying-glass" }

// Enabled reports whether the connector is switched on in config.
func (c *GSCConnector) Enabled() bool {
	return connectorEnabled(c.config, "gsc")
}

// SetupStatus reports the connector's readiness for an account.
func (c *GSCConnector) SetupStatus(ctx context.Context, account *domain.Account) domain.SetupStatus {
	if account == nil {
		return domain.StatusDisconnected
	}
	if _, err := c.tokens.GetValidAccessToken(ctx, account); err != nil {
		if domain.IsAuthError(err) {
			return domain.StatusDisconnected
		}
		return domain.StatusError
	}

	site, err := settingValue(ctx, c.settings, account.ID, domain.SettingGSCSite)
	if err != nil {
		return domain.StatusError
	}
	if site == "" {
		return domain.StatusNeedsSetup
	}
	return domain.StatusReady
}

// HealthCheck lists configuration issues for an account.
func (c *GSCConnector) HealthCheck(ctx context.Context, account *domain.Account) []domain.HealthIssue {
	var issues []domain.HealthIssue

	if account == nil {
		return []domain.HealthIssue{{
			Level:       domain.HealthError,
			Title:       "No Google account connected",
			Description: "Connect a Google account to enable Search Console metrics.",
		}}
	}

	if _, err := c.tokens.GetValidAccessToken(ctx, account); err != nil {
		issues = append(issues, domain.HealthIssue{
			Level:       domain.HealthError,
			Title:       "Google authentication expired",
			Description: "Reconnect the Google account to restore access.",
		})
		return issues
	}

	site, err := settingValue(ctx, c.settings, account.ID, domain.SettingGSCSite)
	if err == nil && site == "" {
		issues = append(issues, domain.HealthIssue{
			Level:       domain.HealthWarning,
			Title:       "No Search Console site selected",
			Description: "Select a verified site to start collecting search metrics.",
		})
	}
	return issues
}

// FetchSnapshot fetches the full Search Console payload for a period:
// totals, top queries and top pages. Failures come back inside the
// payload, never as errors.
func (c *GSCConnector) FetchSnapshot(ctx context.Context, account *domain.Account, period string) domain.SnapshotPayload {
	site, token, payload := c.prepare(ctx, account)
	if payload != nil {
		return payload
	}

	start, end := periodRange(period)

	totals, err := c.oauth.RunSearchConsoleQuery(ctx, token, site, driven.QuerySpec{
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		logger.Warn("Search Console totals failed for account %d: %v", account.ID, err)
		return domain.ErrorPayloadWithCause("Failed to fetch Search Console data", err)
	}

	queries, err := c.oauth.RunSearchConsoleQuery(ctx, token, site, driven.QuerySpec{
		StartDate:  start,
		EndDate:    end,
		Dimensions: []string{"query"},
		RowLimit:   10,
	})
	if err != nil {
		logger.Warn("Search Console queries failed for account %d: %v", account.ID, err)
		return domain.ErrorPayloadWithCause("Failed to fetch Search Console data", err)
	}

	pages, err := c.oauth.RunSearchConsoleQuery(ctx, token, site, driven.QuerySpec{
		StartDate:  start,
		EndDate:    end,
		Dimensions: []string{"page"},
		RowLimit:   10,
	})
	if err != nil {
		logger.Warn("Search Console pages failed for account %d: %v", account.ID, err)
		return domain.ErrorPayloadWithCause("Failed to fetch Search Console data", err)
	}

	return c.buildSnapshot(period, site, totals, queries, pages)
}

func (c *GSCConnector) buildSnapshot(period, site string, totals, queries, pages *driven.Report) domain.SnapshotPayload {
	totalRow := map[string]any{
		"clicks":      0.0,
		"impressions": 0.0,
		"ctr":         0.0,
		"position":    0.0,
	}
	if len(totals.Rows) > 0 && len(totals.Rows[0].Metrics) > gscPosition {
		m := totals.Rows[0].Metrics
		totalRow["clicks"] = m[gscClicks]
		totalRow["impressions"] = m[gscImpressions]
		totalRow["ctr"] = m[gscCtr]
		totalRow["position"] = m[gscPosition]
	}

	return domain.SnapshotPayload{
		"period":      period,
		"site_url":    site,
		"totals":      totalRow,
		"top_queries": keyedRows(queries, "query"),
		"top_pages":   keyedRows(pages, "page"),
	}
}

// keyedRows flattens query rows into maps keyed by the dimension name.
func keyedRows(report *driven.Report, dimension string) []map[string]any {
	rows := make([]map[string]any, 0, len(report.Rows))
	for _, row := range report.Rows {
		if len(row.Dimensions) < 1 || len(row.Metrics) <= gscPosition {
			continue
		}
		rows = append(rows, map[string]any{
			dimension:     row.Dimensions[0],
			"clicks":      row.Metrics[gscClicks],
			"impressions": row.Metrics[gscImpressions],
			"ctr":         row.Metrics[gscCtr],
			"position":    row.Metrics[gscPosition],
		})
	}
	return rows
}

// FetchTimeSeries fetches clicks or impressions as a daily series.
// Other metrics yield an empty series.
func (c *GSCConnector) FetchTimeSeries(ctx context.Context, account *domain.Account, period, metric string) domain.TimeSeries {
	var index int
	switch metric {
	case "clicks":
		index = gscClicks
	case "impressions":
		index = gscImpressions
	default:
		return domain.TimeSeries{}
	}

	site, token, payload := c.prepare(ctx, account)
	if payload != nil {
		return domain.TimeSeries{}
	}

	start, end := periodRange(period)
	report, err := c.oauth.RunSearchConsoleQuery(ctx, token, site, driven.QuerySpec{
		StartDate:  start,
		EndDate:    end,
		Dimensions: []string{"date"},
	})
	if err != nil {
		logger.Warn("Search Console time series failed for account %d: %v", account.ID, err)
		return domain.TimeSeries{}
	}

	var series domain.TimeSeries
	for _, row := range report.Rows {
		if len(row.Dimensions) < 1 || len(row.Metrics) <= index {
			continue
		}
		series.Labels = append(series.Labels, domain.NormalizeReportDate(row.Dimensions[0]))
		series.Values = append(series.Values, row.Metrics[index])
	}
	return series
}

// prepare resolves the site and token, or the error payload that should
// stand in for a fetch.
func (c *GSCConnector) prepare(ctx context.Context, account *domain.Account) (site, token string, errPayload domain.SnapshotPayload) {
	if account == nil {
		return "", "", domain.ErrorPayload("No account connected")
	}

	site, err := settingValue(ctx, c.settings, account.ID, domain.SettingGSCSite)
	if err != nil {
		return "", "", domain.ErrorPayloadWithCause("Failed to load Search Console settings", err)
	}
	if site == "" {
		return "", "", domain.ErrorPayload("No Search Console site selected")
	}

	token, err = c.tokens.GetValidAccessToken(ctx, account)
	if err != nil {
		if domain.IsAuthError(err) {
			return "", "", domain.ErrorPayload("Google authentication expired. Please reconnect.")
		}
		return "", "", domain.ErrorPayloadWithCause("Failed to authenticate with Google", err)
	}
	return site, token, nil
}

// periodRange converts a period into the absolute calendar dates the
// Search Console API requires.
func periodRange(period string) (start, end string) {
	days := domain.PeriodDays(period)
	now := time.Now()
	return now.AddDate(0, 0, -days).Format(domain.DateLayout), now.Format(domain.DateLayout)
}
