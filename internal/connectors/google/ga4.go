package google

import (
	"context"
	"errors"

	"github.com/boxincode/sitekit/internal/core/domain"
	"github.com/boxincode/sitekit/internal/core/ports/driven"
	"github.com/boxincode/sitekit/internal/logger"
)

// GA4 metric names keyed by the dashboard's metric vocabulary.
var ga4Metrics = map[string]string{
	"users":     "totalUsers",
	"sessions":  "sessions",
	"pageviews": "screenPageViews",
}

// Ensure GA4Connector implements the interface.
var _ driven.Connector = (*GA4Connector)(nil)

// GA4Connector fetches traffic metrics from the Google Analytics 4 Data
// API. It requires a connected account with a selected GA4 property.
type GA4Connector struct {
	oauth    driven.OAuthClient
	tokens   driven.TokenProvider
	settings driven.SettingStore
	config   driven.ConfigStore
}

// NewGA4Connector creates the GA4 connector.
func NewGA4Connector(
	oauth driven.OAuthClient,
	tokens driven.TokenProvider,
	settings driven.SettingStore,
	config driven.ConfigStore,
) *GA4Connector {
	return &GA4Connector{
		oauth:    oauth,
		tokens:   tokens,
		settings: settings,
		config:   config,
	}
}

// Key returns the connector key.
func (c *GA4Connector) Key() string { return "ga4" }

// Label returns the connector display name.
func (c *GA4Connector) Label() string { return "Google Analytics" }

// Description returns the connector summary.
func (c *GA4Connector) Description() string {
	return "Traffic metrics from a Google Analytics 4 property"
}

// Icon returns the connector icon hint.
func (c *GA4Connector) Icon() string { return "chart-bar" }

// Enabled reports whether the connector is switched on in config.
func (c *GA4Connector) Enabled() bool {
	return connectorEnabled(c.config, "ga4")
}

// SetupStatus reports the connector's readiness for an account.
func (c *GA4Connector) SetupStatus(ctx context.Context, account *domain.Account) domain.SetupStatus {
	if account == nil {
		return domain.StatusDisconnected
	}
	if _, err := c.tokens.GetValidAccessToken(ctx, account); err != nil {
		if domain.IsAuthError(err) {
			return domain.StatusDisconnected
		}
		return domain.StatusError
	}

	property, err := settingValue(ctx, c.settings, account.ID, domain.SettingGA4Property)
	if err != nil {
		return domain.StatusError
	}
	if property == "" {
		return domain.StatusNeedsSetup
	}
	return domain.StatusReady
}

// HealthCheck lists configuration issues for an account.
func (c *GA4Connector) HealthCheck(ctx context.Context, account *domain.Account) []domain.HealthIssue {
	var issues []domain.HealthIssue

	if account == nil {
		return []domain.HealthIssue{{
			Level:       domain.HealthError,
			Title:       "No Google account connected",
			Description: "Connect a Google account to enable Analytics metrics.",
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

	property, err := settingValue(ctx, c.settings, account.ID, domain.SettingGA4Property)
	if err == nil && property == "" {
		issues = append(issues, domain.HealthIssue{
			Level:       domain.HealthWarning,
			Title:       "No GA4 property selected",
			Description: "Select a Google Analytics 4 property to start collecting metrics.",
		})
	}
	return issues
}

// FetchSnapshot fetches the full GA4 payload for a period: totals, the
// daily rows, top pages and top channels. Failures come back inside the
// payload, never as errors.
func (c *GA4Connector) FetchSnapshot(ctx context.Context, account *domain.Account, period string) domain.SnapshotPayload {
	property, token, payload := c.prepare(ctx, account)
	if payload != nil {
		return payload
	}

	daily, err := c.oauth.RunGA4Report(ctx, token, property, driven.ReportSpec{
		StartDate:        domain.PeriodStartDate(period),
		EndDate:          "today",
		Dimensions:       []string{"date"},
		Metrics:          []string{"totalUsers", "sessions", "screenPageViews"},
		OrderByDimension: "date",
	})
	if err != nil {
		logger.Warn("GA4 daily report failed for account %d: %v", account.ID, err)
		return domain.ErrorPayloadWithCause("Failed to fetch Google Analytics data", err)
	}

	topPages, err := c.oauth.RunGA4Report(ctx, token, property, driven.ReportSpec{
		StartDate:     domain.PeriodStartDate(period),
		EndDate:       "today",
		Dimensions:    []string{"pagePath"},
		Metrics:       []string{"screenPageViews"},
		OrderByMetric: "screenPageViews",
		Limit:         10,
	})
	if err != nil {
		logger.Warn("GA4 top pages report failed for account %d: %v", account.ID, err)
		return domain.ErrorPayloadWithCause("Failed to fetch Google Analytics data", err)
	}

	channels, err := c.oauth.RunGA4Report(ctx, token, property, driven.ReportSpec{
		StartDate:     domain.PeriodStartDate(period),
		EndDate:       "today",
		Dimensions:    []string{"sessionDefaultChannelGroup"},
		Metrics:       []string{"sessions"},
		OrderByMetric: "sessions",
		Limit:         10,
	})
	if err != nil {
		logger.Warn("GA4 channels report failed for account %d: %v", account.ID, err)
		return domain.ErrorPayloadWithCause("Failed to fetch Google Analytics data", err)
	}

	return c.buildSnapshot(period, property, daily, topPages, channels)
}

func (c *GA4Connector) buildSnapshot(period, property string, daily, topPages, channels *driven.Report) domain.SnapshotPayload {
	var totalUsers, totalSessions, totalPageviews int
	dailyRows := make([]domain.DailyRow, 0, len(daily.Rows))
	for _, row := range daily.Rows {
		if len(row.Dimensions) < 1 || len(row.Metrics) < 3 {
			continue
		}
		users := int(row.Metrics[0])
		sessions := int(row.Metrics[1])
		pageviews := int(row.Metrics[2])
		totalUsers += users
		totalSessions += sessions
		totalPageviews += pageviews
		dailyRows = append(dailyRows, domain.DailyRow{
			"date":      domain.NormalizeReportDate(row.Dimensions[0]),
			"users":     users,
			"sessions":  sessions,
			"pageviews": pageviews,
		})
	}

	pages := make([]map[string]any, 0, len(topPages.Rows))
	for _, row := range topPages.Rows {
		if len(row.Dimensions) < 1 || len(row.Metrics) < 1 {
			continue
		}
		pages = append(pages, map[string]any{
			"path":      row.Dimensions[0],
			"pageviews": int(row.Metrics[0]),
		})
	}

	channelRows := make([]map[string]any, 0, len(channels.Rows))
	for _, row := range channels.Rows {
		if len(row.Dimensions) < 1 || len(row.Metrics) < 1 {
			continue
		}
		channelRows = append(channelRows, map[string]any{
			"channel":  row.Dimensions[0],
			"sessions": int(row.Metrics[0]),
		})
	}

	return domain.SnapshotPayload{
		"period":      period,
		"property_id": property,
		"totals": map[string]any{
			"users":     totalUsers,
			"sessions":  totalSessions,
			"pageviews": totalPageviews,
		},
		"daily":     dailyRows,
		"top_pages": pages,
		"channels":  channelRows,
	}
}

// FetchTimeSeries fetches one metric as a daily series. Metrics outside
// the GA4 vocabulary yield an empty series.
func (c *GA4Connector) FetchTimeSeries(ctx context.Context, account *domain.Account, period, metric string) domain.TimeSeries {
	ga4Metric, ok := ga4Metrics[metric]
	if !ok {
		return domain.TimeSeries{}
	}

	property, token, payload := c.prepare(ctx, account)
	if payload != nil {
		return domain.TimeSeries{}
	}

	report, err := c.oauth.RunGA4Report(ctx, token, property, driven.ReportSpec{
		StartDate:        domain.PeriodStartDate(period),
		EndDate:          "today",
		Dimensions:       []string{"date"},
		Metrics:          []string{ga4Metric},
		OrderByDimension: "date",
	})
	if err != nil {
		logger.Warn("GA4 time series failed for account %d: %v", account.ID, err)
		return domain.TimeSeries{}
	}

	var series domain.TimeSeries
	for _, row := range report.Rows {
		if len(row.Dimensions) < 1 || len(row.Metrics) < 1 {
			continue
		}
		series.Labels = append(series.Labels, domain.NormalizeReportDate(row.Dimensions[0]))
		series.Values = append(series.Values, row.Metrics[0])
	}
	return series
}

// prepare resolves the property and token, or the error payload that
// should stand in for a fetch. No report is run when the property is
// missing or the token cannot be produced.
func (c *GA4Connector) prepare(ctx context.Context, account *domain.Account) (property, token string, errPayload domain.SnapshotPayload) {
	if account == nil {
		return "", "", domain.ErrorPayload("No account connected")
	}

	property, err := settingValue(ctx, c.settings, account.ID, domain.SettingGA4Property)
	if err != nil {
		return "", "", domain.ErrorPayloadWithCause("Failed to load GA4 settings", err)
	}
	if property == "" {
		return "", "", domain.ErrorPayload("No GA4 property selected")
	}

	token, err = c.tokens.GetValidAccessToken(ctx, account)
	if err != nil {
		if domain.IsAuthError(err) {
			return "", "", domain.ErrorPayload("Google authentication expired. Please reconnect.")
		}
		return "", "", domain.ErrorPayloadWithCause("Failed to authenticate with Google", err)
	}
	return property, token, nil
}

// settingValue reads an account setting as a string, "" when unset.
func settingValue(ctx context.Context, settings driven.SettingStore, accountID int64, key string) (string, error) {
	setting, err := settings.Get(ctx, &accountID, key)
	if errors.Is(err, domain.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return setting.StringValue(), nil
}

// connectorEnabled reads a connector's enabled flag, defaulting to on.
func connectorEnabled(config driven.ConfigStore, key string) bool {
	configKey := "connectors." + key + ".enabled"
	if _, ok := config.Get(configKey); !ok {
		return true
	}
	return config.GetBool(configKey)
}
