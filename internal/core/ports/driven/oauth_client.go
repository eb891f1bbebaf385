package driven

import (
	"context"

	"github.com/boxincode/sitekit/internal/core/domain"
)

// ListingItem is one entry from a provider account/property listing,
// flattened into an id/label pair.
type ListingItem struct {
	// ID is the provider identifier (GA4 property id, GSC site URL).
	ID string `json:"id"`
	// Label is the human-readable name.
	Label string `json:"label"`
}

// Profile is the connected user's basic profile.
type Profile struct {
	// Email is the account email address.
	Email string `json:"email"`
	// Name is the profile display name.
	Name string `json:"name"`
}

// OAuthClient is a stateless gateway to Google's OAuth endpoint and data
// APIs. Implementations hold no per-account state; callers pass tokens in.
type OAuthClient interface {
	// AuthorizationURL builds the consent URL with offline access, a
	// forced consent prompt and the opaque CSRF state embedded.
	AuthorizationURL(state string) string

	// ExchangeCode exchanges an authorization code for tokens.
	// Fails hard when the response carries no usable access token.
	ExchangeCode(ctx context.Context, code string) (*domain.TokenPayload, error)

	// RefreshToken exchanges a refresh token for a fresh access token.
	// The returned payload keeps the given refresh token when the
	// provider did not issue a new one.
	RefreshToken(ctx context.Context, refreshToken string) (*domain.TokenPayload, error)

	// FetchProfile retrieves the user's email and name.
	FetchProfile(ctx context.Context, accessToken string) (*Profile, error)

	// ListGA4Properties lists the GA4 properties visible to the token.
	ListGA4Properties(ctx context.Context, accessToken string) ([]ListingItem, error)

	// ListSearchConsoleSites lists the Search Console sites visible to
	// the token.
	ListSearchConsoleSites(ctx context.Context, accessToken string) ([]ListingItem, error)

	// RunGA4Report runs a GA4 Data API report and returns the rows as
	// (dimension values, metric values) pairs in response order.
	RunGA4Report(ctx context.Context, accessToken, propertyID string, spec ReportSpec) (*Report, error)

	// RunSearchConsoleQuery runs a Search Console search-analytics query.
	RunSearchConsoleQuery(ctx context.Context, accessToken, siteURL string, spec QuerySpec) (*Report, error)
}

// ReportSpec describes one GA4 runReport request.
type ReportSpec struct {
	// StartDate is a relative date ("7daysAgo") or YYYY-MM-DD.
	StartDate string
	// EndDate is a relative date ("today") or YYYY-MM-DD.
	EndDate string
	// Dimensions are GA4 dimension names, in order.
	Dimensions []string
	// Metrics are GA4 metric names, in order.
	Metrics []string
	// OrderByMetric optionally sorts rows by this metric, descending.
	OrderByMetric string
	// OrderByDimension optionally sorts rows by this dimension, ascending.
	OrderByDimension string
	// Limit caps the number of returned rows; 0 means provider default.
	Limit int64
}

// QuerySpec describes one Search Console search-analytics query.
type QuerySpec struct {
	// StartDate and EndDate are YYYY-MM-DD calendar dates.
	StartDate string
	EndDate   string
	// Dimensions are query dimensions ("date", "query", "page").
	Dimensions []string
	// RowLimit caps the number of returned rows; 0 means provider default.
	RowLimit int64
}

// ReportRow is one result row: dimension values then metric values,
// both in request order.
type ReportRow struct {
	// Dimensions are the row's dimension values as returned.
	Dimensions []string
	// Metrics are the row's metric values.
	Metrics []float64
}

// Report is a normalised provider report result.
type Report struct {
	// Rows are the result rows in response order.
	Rows []ReportRow
}
