package google

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	analyticsadmin "google.golang.org/api/analyticsadmin/v1beta"
	analyticsdata "google.golang.org/api/analyticsdata/v1beta"
	searchconsole "google.golang.org/api/searchconsole/v1"

	"github.com/boxincode/sitekit/internal/core/ports/driven"
)

// ListGA4Properties lists the GA4 properties visible to the token,
// flattened across account summaries into id/label pairs.
func (c *Client) ListGA4Properties(ctx context.Context, accessToken string) ([]driven.ListingItem, error) {
	if err := c.wait(ctx, ServiceAnalyticsAdmin); err != nil {
		return nil, err
	}

	svc, err := NewAnalyticsAdminService(ctx, StaticTokenSource(accessToken))
	if err != nil {
		return nil, fmt.Errorf("create admin service: %w", err)
	}

	var items []driven.ListingItem
	err = svc.AccountSummaries.List().PageSize(200).Pages(ctx,
		func(resp *analyticsadmin.GoogleAnalyticsAdminV1betaListAccountSummariesResponse) error {
			for _, account := range resp.AccountSummaries {
				for _, property := range account.PropertySummaries {
					items = append(items, driven.ListingItem{
						ID:    strings.TrimPrefix(property.Property, "properties/"),
						Label: fmt.Sprintf("%s (%s)", property.DisplayName, account.DisplayName),
					})
				}
			}
			return nil
		})
	if err != nil {
		c.recordIfRateLimited(ServiceAnalyticsAdmin, err)
		return nil, fmt.Errorf("list account summaries: %w", WrapError(err))
	}
	return items, nil
}

// ListSearchConsoleSites lists the Search Console sites visible to the
// token.
func (c *Client) ListSearchConsoleSites(ctx context.Context, accessToken string) ([]driven.ListingItem, error) {
	if err := c.wait(ctx, ServiceSearchConsole); err != nil {
		return nil, err
	}

	svc, err := NewSearchConsoleService(ctx, StaticTokenSource(accessToken))
	if err != nil {
		return nil, fmt.Errorf("create search console service: %w", err)
	}

	resp, err := svc.Sites.List().Context(ctx).Do()
	if err != nil {
		c.recordIfRateLimited(ServiceSearchConsole, err)
		return nil, fmt.Errorf("list sites: %w", WrapError(err))
	}

	items := make([]driven.ListingItem, 0, len(resp.SiteEntry))
	for _, site := range resp.SiteEntry {
		items = append(items, driven.ListingItem{
			ID:    site.SiteUrl,
			Label: site.SiteUrl,
		})
	}
	return items, nil
}

// RunGA4Report runs a GA4 Data API report and normalises the rows into
// (dimension values, metric values) pairs in response order.
func (c *Client) RunGA4Report(ctx context.Context, accessToken, propertyID string, spec driven.ReportSpec) (*driven.Report, error) {
	if err := c.wait(ctx, ServiceAnalyticsData); err != nil {
		return nil, err
	}

	svc, err := NewAnalyticsDataService(ctx, StaticTokenSource(accessToken))
	if err != nil {
		return nil, fmt.Errorf("create data service: %w", err)
	}

	req := &analyticsdata.RunReportRequest{
		DateRanges: []*analyticsdata.DateRange{
			{StartDate: spec.StartDate, EndDate: spec.EndDate},
		},
	}
	for _, d := range spec.Dimensions {
		req.Dimensions = append(req.Dimensions, &analyticsdata.Dimension{Name: d})
	}
	for _, m := range spec.Metrics {
		req.Metrics = append(req.Metrics, &analyticsdata.Metric{Name: m})
	}
	if spec.OrderByMetric != "" {
		req.OrderBys = append(req.OrderBys, &analyticsdata.OrderBy{
			Metric: &analyticsdata.MetricOrderBy{MetricName: spec.OrderByMetric},
			Desc:   true,
		})
	}
	if spec.OrderByDimension != "" {
		req.OrderBys = append(req.OrderBys, &analyticsdata.OrderBy{
			Dimension: &analyticsdata.DimensionOrderBy{DimensionName: spec.OrderByDimension},
		})
	}
	if spec.Limit > 0 {
		req.Limit = spec.Limit
	}

	resp, err := svc.Properties.RunReport(propertyName(propertyID), req).Context(ctx).Do()
	if err != nil {
		c.recordIfRateLimited(ServiceAnalyticsData, err)
		return nil, fmt.Errorf("run report: %w", WrapError(err))
	}

	report := &driven.Report{Rows: make([]driven.ReportRow, 0, len(resp.Rows))}
	for _, row := range resp.Rows {
		r := driven.ReportRow{
			Dimensions: make([]string, 0, len(row.DimensionValues)),
			Metrics:    make([]float64, 0, len(row.MetricValues)),
		}
		for _, dv := range row.DimensionValues {
			r.Dimensions = append(r.Dimensions, dv.Value)
		}
		for _, mv := range row.MetricValues {
			value, _ := strconv.ParseFloat(mv.Value, 64)
			r.Metrics = append(r.Metrics, value)
		}
		report.Rows = append(report.Rows, r)
	}
	return report, nil
}

// RunSearchConsoleQuery runs a search-analytics query. Row metrics are
// ordered clicks, impressions, ctr, position.
func (c *Client) RunSearchConsoleQuery(ctx context.Context, accessToken, siteURL string, spec driven.QuerySpec) (*driven.Report, error) {
	if err := c.wait(ctx, ServiceSearchConsole); err != nil {
		return nil, err
	}

	svc, err := NewSearchConsoleService(ctx, StaticTokenSource(accessToken))
	if err != nil {
		return nil, fmt.Errorf("create search console service: %w", err)
	}

	req := &searchconsole.SearchAnalyticsQueryRequest{
		StartDate:  spec.StartDate,
		EndDate:    spec.EndDate,
		Dimensions: spec.Dimensions,
	}
	if spec.RowLimit > 0 {
		req.RowLimit = spec.RowLimit
	}

	resp, err := svc.Searchanalytics.Query(siteURL, req).Context(ctx).Do()
	if err != nil {
		c.recordIfRateLimited(ServiceSearchConsole, err)
		return nil, fmt.Errorf("search analytics query: %w", WrapError(err))
	}

	report := &driven.Report{Rows: make([]driven.ReportRow, 0, len(resp.Rows))}
	for _, row := range resp.Rows {
		report.Rows = append(report.Rows, driven.ReportRow{
			Dimensions: row.Keys,
			Metrics:    []float64{row.Clicks, row.Impressions, row.Ctr, row.Position},
		})
	}
	return report, nil
}

// recordIfRateLimited feeds 429 responses back into the service's
// limiter so subsequent calls back off.
func (c *Client) recordIfRateLimited(service ServiceType, err error) {
	if !IsRateLimited(err) {
		return
	}
	if limiter, ok := c.limiters[service]; ok {
		limiter.RecordRateLimitError(0)
	}
}

// propertyName qualifies a bare GA4 property id as a resource name.
// Already-qualified ids pass through.
func propertyName(propertyID string) string {
	if strings.HasPrefix(propertyID, "properties/") {
		return propertyID
	}
	return "properties/" + propertyID
}
