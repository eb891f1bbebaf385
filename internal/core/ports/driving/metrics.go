package driving

import (
	"context"

	"github.com/boxincode/sitekit/internal/core/domain"
	"github.com/boxincode/sitekit/internal/core/ports/driven"
)

// MetricsReader is the dashboard-facing read surface. All reads go through
// a TTL cache; periods outside the allowed set are clamped.
type MetricsReader interface {
	// GetMetrics returns the full snapshot payload for a connector.
	GetMetrics(ctx context.Context, account *domain.Account, connectorKey, period string) domain.SnapshotPayload

	// GetTimeSeries returns one metric as a daily series, routed to the
	// connector owning the metric (clicks/impressions → gsc, else ga4).
	GetTimeSeries(ctx context.Context, account *domain.Account, period, metric string) domain.TimeSeries

	// GetSnapshotTimeSeries reads a series from the latest stored
	// snapshot instead of the live connector.
	GetSnapshotTimeSeries(ctx context.Context, account *domain.Account, period, metric string) domain.TimeSeries

	// ListGA4Properties lists GA4 properties for the account's token.
	ListGA4Properties(ctx context.Context, account *domain.Account) ([]driven.ListingItem, error)

	// ListGSCSites lists Search Console sites for the account's token.
	ListGSCSites(ctx context.Context, account *domain.Account) ([]driven.ListingItem, error)
}
