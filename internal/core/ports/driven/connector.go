package driven

import (
	"context"

	"github.com/boxincode/sitekit/internal/core/domain"
)

// Connector is a pluggable per-data-source fetcher. All implementations
// convert fetch failures into error payloads or safe empty results:
// FetchSnapshot and FetchTimeSeries never propagate provider failures as
// errors, so one connector's outage cannot abort a sync run.
type Connector interface {
	// Key is the unique connector key (e.g. "ga4").
	Key() string

	// Label is the human-readable connector name.
	Label() string

	// Description briefly explains what the connector provides.
	Description() string

	// Icon is a UI icon hint for the host application.
	Icon() string

	// Enabled reports whether the connector is enabled in config.
	Enabled() bool

	// SetupStatus reports the connector's readiness for an account.
	// Check failures are reported as domain.StatusError, never returned.
	SetupStatus(ctx context.Context, account *domain.Account) domain.SetupStatus

	// HealthCheck lists configuration issues for an account.
	HealthCheck(ctx context.Context, account *domain.Account) []domain.HealthIssue

	// FetchSnapshot fetches the full metrics payload for a period.
	FetchSnapshot(ctx context.Context, account *domain.Account, period string) domain.SnapshotPayload

	// FetchTimeSeries fetches one metric as a daily series. Unknown
	// metrics and missing preconditions yield an empty series.
	FetchTimeSeries(ctx context.Context, account *domain.Account, period, metric string) domain.TimeSeries
}
