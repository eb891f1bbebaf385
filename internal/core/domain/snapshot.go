package domain

import (
	"encoding/json"
	"time"
)

// DateLayout is the calendar-date format used for snapshot days and
// daily-row labels.
const DateLayout = "2006-01-02"

// Snapshot is one materialised fetch result for an (account, connector,
// period) on one calendar day. At most one snapshot exists per day: later
// syncs for the same day overwrite.
type Snapshot struct {
	// AccountID is the owning account.
	AccountID int64 `json:"account_id"`
	// Connector is the connector key (e.g. "ga4", "gsc").
	Connector string `json:"connector"`
	// Period is the reporting window code (e.g. "7d").
	Period string `json:"period"`
	// Data is the fetched row-set as raw JSON.
	Data json.RawMessage `json:"data"`
	// FetchedAt is when the data was fetched.
	FetchedAt time.Time `json:"fetched_at"`
	// FetchedOn is the calendar day (YYYY-MM-DD) the fetch belongs to.
	FetchedOn string `json:"fetched_on"`
}

// DailyRow is one merged metrics row for a single calendar date.
// Count-like metrics (users, sessions, pageviews) carry integer values;
// rate-like metrics (clicks, impressions) carry floats.
type DailyRow map[string]any

// NormalizeReportDate converts the provider's compact YYYYMMDD date into
// the canonical YYYY-MM-DD layout. Other values pass through unchanged.
func NormalizeReportDate(s string) string {
	if t, err := time.Parse("20060102", s); err == nil {
		return t.Format(DateLayout)
	}
	return s
}

// TimeSeries is a pair of parallel label/value slices sharing one date axis.
type TimeSeries struct {
	// Labels are ISO calendar dates (YYYY-MM-DD).
	Labels []string `json:"labels"`
	// Values are the metric values aligned with Labels by index.
	Values []float64 `json:"values"`
}

// IsEmpty returns true when the series has no data points.
func (t *TimeSeries) IsEmpty() bool {
	return len(t.Labels) == 0
}
