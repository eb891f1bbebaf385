package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/boxincode/sitekit/internal/core/domain"
	"github.com/boxincode/sitekit/internal/core/ports/driven"
	"github.com/boxincode/sitekit/internal/core/ports/driving"
	"github.com/boxincode/sitekit/internal/logger"
)

// Ensure MetricsService implements the interface.
var _ driving.MetricsReader = (*MetricsService)(nil)

// Metrics whose merged daily-row values are integer counts.
var intMetrics = map[string]bool{
	"users":     true,
	"sessions":  true,
	"pageviews": true,
}

// Metrics whose merged daily-row values stay floating point.
var floatMetrics = map[string]bool{
	"clicks":      true,
	"impressions": true,
}

// ModuleCard summarises one connector's state for an account, as shown
// by the doctor and the accounts listing.
type ModuleCard struct {
	// Key is the connector key.
	Key string
	// Label is the connector display name.
	Label string
	// Description briefly explains the connector.
	Description string
	// Icon is the connector's UI icon hint.
	Icon string
	// Status is the connector's readiness for the account.
	Status domain.SetupStatus
}

// MetricsService is the read path for dashboard metrics and the builder
// of the daily-row sets the sync pipeline persists. Live reads go
// through a TTL cache; snapshot reads come from the store.
type MetricsService struct {
	registry  *ConnectorRegistry
	tokens    *TokenService
	oauth     driven.OAuthClient
	snapshots driven.SnapshotStore
	settings  driven.SettingStore
	cache     driven.Cache
	config    driven.ConfigStore
}

// NewMetricsService creates a new metrics service.
func NewMetricsService(
	registry *ConnectorRegistry,
	tokens *TokenService,
	oauth driven.OAuthClient,
	snapshots driven.SnapshotStore,
	settings driven.SettingStore,
	cache driven.Cache,
	config driven.ConfigStore,
) *MetricsService {
	return &MetricsService{
		registry:  registry,
		tokens:    tokens,
		oauth:     oauth,
		snapshots: snapshots,
		settings:  settings,
		cache:     cache,
		config:    config,
	}
}

// AllowedPeriods returns the configured reporting windows.
func (s *MetricsService) AllowedPeriods() []string {
	if periods := s.config.GetStringSlice("periods.allowed"); len(periods) > 0 {
		return periods
	}
	return []string{"7d", "28d", "90d"}
}

func (s *MetricsService) cacheTTL() time.Duration {
	if secs := s.config.GetInt("cache.ttl_seconds"); secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return time.Hour
}

// GetMetrics returns the full snapshot payload for a connector, reading
// through the cache. Failures come back inside the payload.
func (s *MetricsService) GetMetrics(ctx context.Context, account *domain.Account, connectorKey, period string) domain.SnapshotPayload {
	if account == nil {
		return domain.ErrorPayload("No account connected")
	}
	period = domain.ClampPeriod(period, s.AllowedPeriods())

	key := fmt.Sprintf("sitekit:%d:%s:%s", account.ID, connectorKey, period)
	if raw, ok := s.cache.Get(key); ok {
		var payload domain.SnapshotPayload
		if err := json.Unmarshal(raw, &payload); err == nil {
			return payload
		}
	}

	connector, err := s.registry.Get(connectorKey)
	if err != nil {
		return domain.ErrorPayload(fmt.Sprintf("Unknown connector %q", connectorKey))
	}

	payload := connector.FetchSnapshot(ctx, account, period)

	// Error payloads are not cached, so transient failures retry on the
	// next read instead of sticking for a full TTL.
	if !payload.IsError() {
		if raw, err := json.Marshal(payload); err == nil {
			s.cache.Set(key, raw, s.cacheTTL())
		}
	}
	return payload
}

// GetTimeSeries returns one metric as a daily series from the connector
// that owns the metric, reading through the cache.
func (s *MetricsService) GetTimeSeries(ctx context.Context, account *domain.Account, period, metric string) domain.TimeSeries {
	if account == nil {
		return domain.TimeSeries{}
	}
	period = domain.ClampPeriod(period, s.AllowedPeriods())

	key := fmt.Sprintf("sitekit:timeseries:%d:%s:%s", account.ID, period, metric)
	if raw, ok := s.cache.Get(key); ok {
		var series domain.TimeSeries
		if err := json.Unmarshal(raw, &series); err == nil {
			return series
		}
	}

	connector, err := s.registry.Get(metricConnector(metric))
	if err != nil {
		return domain.TimeSeries{}
	}

	series := connector.FetchTimeSeries(ctx, account, period, metric)
	if !series.IsEmpty() {
		if raw, err := json.Marshal(series); err == nil {
			s.cache.Set(key, raw, s.cacheTTL())
		}
	}
	return series
}

// GetSnapshotTimeSeries reads one metric's series out of the latest
// stored snapshot instead of calling the provider.
func (s *MetricsService) GetSnapshotTimeSeries(ctx context.Context, account *domain.Account, period, metric string) domain.TimeSeries {
	if account == nil {
		return domain.TimeSeries{}
	}
	period = domain.ClampPeriod(period, s.AllowedPeriods())

	snapshot, err := s.snapshots.Latest(ctx, account.ID, metricConnector(metric), period)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("Load snapshot for account %d: %v", account.ID, err)
		}
		return domain.TimeSeries{}
	}

	var rows []domain.DailyRow
	if err := json.Unmarshal(snapshot.Data, &rows); err != nil {
		logger.Warn("Decode snapshot for account %d: %v", account.ID, err)
		return domain.TimeSeries{}
	}

	var series domain.TimeSeries
	for _, row := range rows {
		date, _ := row["date"].(string)
		if date == "" {
			continue
		}
		value, ok := row[metric]
		if !ok {
			continue
		}
		series.Labels = append(series.Labels, date)
		series.Values = append(series.Values, toFloat(value))
	}
	return series
}

// SaveSnapshot persists a daily-row set as today's snapshot for the
// (account, connector, period) key. Saving twice on one day overwrites.
func (s *MetricsService) SaveSnapshot(ctx context.Context, accountID int64, connectorKey, period string, rows []domain.DailyRow) error {
	data, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	now := time.Now()
	return s.snapshots.Save(ctx, domain.Snapshot{
		AccountID: accountID,
		Connector: connectorKey,
		Period:    period,
		Data:      data,
		FetchedAt: now,
		FetchedOn: now.Format(domain.DateLayout),
	})
}

// BuildGA4DailyRows fetches the per-day users/sessions/pageviews rows
// for a period. Returns no rows (and no error) when the account has no
// GA4 property selected.
func (s *MetricsService) BuildGA4DailyRows(ctx context.Context, account *domain.Account, period string) ([]domain.DailyRow, error) {
	propertyID, err := s.settingValue(ctx, account.ID, domain.SettingGA4Property)
	if err != nil {
		return nil, err
	}
	if propertyID == "" {
		logger.Debug("Account %d has no GA4 property selected, skipping", account.ID)
		return nil, nil
	}

	token, err := s.tokens.GetValidAccessToken(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("ga4 rows: %w", err)
	}

	report, err := s.oauth.RunGA4Report(ctx, token, propertyID, driven.ReportSpec{
		StartDate:        domain.PeriodStartDate(period),
		EndDate:          "today",
		Dimensions:       []string{"date"},
		Metrics:          []string{"totalUsers", "sessions", "screenPageViews"},
		OrderByDimension: "date",
	})
	if err != nil {
		return nil, fmt.Errorf("ga4 rows: %w", err)
	}

	rows := make([]domain.DailyRow, 0, len(report.Rows))
	for _, r := range report.Rows {
		if len(r.Dimensions) < 1 || len(r.Metrics) < 3 {
			continue
		}
		rows = append(rows, domain.DailyRow{
			"date":      r.Dimensions[0],
			"users":     r.Metrics[0],
			"sessions":  r.Metrics[1],
			"pageviews": r.Metrics[2],
		})
	}
	// The merge normalizes dates and types the metric values.
	return MergeDailyRows(rows), nil
}

// BuildGSCDailyRows fetches the per-day clicks/impressions rows for a
// period. Returns no rows (and no error) when the account has no Search
// Console site selected.
func (s *MetricsService) BuildGSCDailyRows(ctx context.Context, account *domain.Account, period string) ([]domain.DailyRow, error) {
	siteURL, err := s.settingValue(ctx, account.ID, domain.SettingGSCSite)
	if err != nil {
		return nil, err
	}
	if siteURL == "" {
		logger.Debug("Account %d has no Search Console site selected, skipping", account.ID)
		return nil, nil
	}

	token, err := s.tokens.GetValidAccessToken(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("gsc rows: %w", err)
	}

	days := domain.PeriodDays(period)
	now := time.Now()
	report, err := s.oauth.RunSearchConsoleQuery(ctx, token, siteURL, driven.QuerySpec{
		StartDate:  now.AddDate(0, 0, -days).Format(domain.DateLayout),
		EndDate:    now.Format(domain.DateLayout),
		Dimensions: []string{"date"},
	})
	if err != nil {
		return nil, fmt.Errorf("gsc rows: %w", err)
	}

	rows := make([]domain.DailyRow, 0, len(report.Rows))
	for _, r := range report.Rows {
		if len(r.Dimensions) < 1 || len(r.Metrics) < 2 {
			continue
		}
		rows = append(rows, domain.DailyRow{
			"date":        r.Dimensions[0],
			"clicks":      r.Metrics[0],
			"impressions": r.Metrics[1],
		})
	}
	return MergeDailyRows(rows), nil
}

// MergeDailyRows zips row sets by index onto one date axis. The date of
// each merged row comes from the first set carrying a parseable date at
// that index; rows without one are dropped. Count metrics are cast to
// int, rate metrics stay float.
func MergeDailyRows(sets ...[]domain.DailyRow) []domain.DailyRow {
	maxLen := 0
	for _, set := range sets {
		if len(set) > maxLen {
			maxLen = len(set)
		}
	}

	merged := make([]domain.DailyRow, 0, maxLen)
	for i := 0; i < maxLen; i++ {
		row := domain.DailyRow{}
		var date string

		for _, set := range sets {
			if i >= len(set) {
				continue
			}
			for k, v := range set[i] {
				if k == "date" {
					if date == "" {
						date, _ = normalizeDate(v)
					}
					continue
				}
				switch {
				case intMetrics[k]:
					row[k] = int(toFloat(v))
				case floatMetrics[k]:
					row[k] = toFloat(v)
				default:
					row[k] = v
				}
			}
		}

		if date == "" {
			continue
		}
		row["date"] = date
		merged = append(merged, row)
	}
	return merged
}

// ListGA4Properties lists the GA4 properties visible to the account's
// token.
func (s *MetricsService) ListGA4Properties(ctx context.Context, account *domain.Account) ([]driven.ListingItem, error) {
	token, err := s.tokens.GetValidAccessToken(ctx, account)
	if err != nil {
		return nil, err
	}
	return s.oauth.ListGA4Properties(ctx, token)
}

// ListGSCSites lists the Search Console sites visible to the account's
// token.
func (s *MetricsService) ListGSCSites(ctx context.Context, account *domain.Account) ([]driven.ListingItem, error) {
	token, err := s.tokens.GetValidAccessToken(ctx, account)
	if err != nil {
		return nil, err
	}
	return s.oauth.ListSearchConsoleSites(ctx, token)
}

// IsConnected reports whether the account can currently reach the
// provider APIs.
func (s *MetricsService) IsConnected(ctx context.Context, account *domain.Account) bool {
	return s.tokens.HasValidToken(ctx, account)
}

// ModuleCards builds the per-connector status summary for an account.
func (s *MetricsService) ModuleCards(ctx context.Context, account *domain.Account) []ModuleCard {
	connectors := s.registry.List()
	cards := make([]ModuleCard, 0, len(connectors))
	for _, c := range connectors {
		cards = append(cards, ModuleCard{
			Key:         c.Key(),
			Label:       c.Label(),
			Description: c.Description(),
			Icon:        c.Icon(),
			Status:      c.SetupStatus(ctx, account),
		})
	}
	return cards
}

// ClearAccountData removes an account's token, settings and snapshots.
// Cached reads are left to expire by TTL.
func (s *MetricsService) ClearAccountData(ctx context.Context, accountID int64) error {
	if err := s.tokens.DeleteToken(ctx, accountID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("delete token: %w", err)
	}
	if err := s.settings.DeleteByAccount(ctx, accountID); err != nil {
		return fmt.Errorf("delete settings: %w", err)
	}
	if err := s.snapshots.DeleteByAccount(ctx, accountID); err != nil {
		return fmt.Errorf("delete snapshots: %w", err)
	}
	return nil
}

// settingValue reads an account setting as a string, "" when unset.
func (s *MetricsService) settingValue(ctx context.Context, accountID int64, key string) (string, error) {
	setting, err := s.settings.Get(ctx, &accountID, key)
	if errors.Is(err, domain.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get setting %s: %w", key, err)
	}
	return setting.StringValue(), nil
}

// metricConnector routes a metric name to the connector that owns it.
func metricConnector(metric string) string {
	switch metric {
	case "clicks", "impressions":
		return "gsc"
	default:
		return "ga4"
	}
}

// normalizeDate parses a daily-row date value, accepting the canonical
// calendar layout first and the provider's compact YYYYMMDD second.
func normalizeDate(v any) (string, bool) {
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	if _, err := time.Parse(domain.DateLayout, s); err == nil {
		return s, true
	}
	if t, err := time.Parse("20060102", s); err == nil {
		return t.Format(domain.DateLayout), true
	}
	return "", false
}

// toFloat coerces row values that may arrive as native numbers or as
// JSON-decoded float64s.
func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		f, _ := strconv.ParseFloat(n, 64)
		return f
	default:
		return 0
	}
}
