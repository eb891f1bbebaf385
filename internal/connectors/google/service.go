package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	analyticsadmin "google.golang.org/api/analyticsadmin/v1beta"
	analyticsdata "google.golang.org/api/analyticsdata/v1beta"
	"google.golang.org/api/option"
	searchconsole "google.golang.org/api/searchconsole/v1"
)

const userInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// UserInfo contains the user's basic profile information from Google.
type UserInfo struct {
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// NewAnalyticsDataService creates a GA4 Data API service using the provided TokenSource.
func NewAnalyticsDataService(ctx context.Context, ts oauth2.TokenSource) (*analyticsdata.Service, error) {
	return analyticsdata.NewService(ctx, option.WithTokenSource(ts))
}

// NewAnalyticsAdminService creates a GA4 Admin API service using the provided TokenSource.
func NewAnalyticsAdminService(ctx context.Context, ts oauth2.TokenSource) (*analyticsadmin.Service, error) {
	return analyticsadmin.NewService(ctx, option.WithTokenSource(ts))
}

// NewSearchConsoleService creates a Search Console API service using the provided TokenSource.
func NewSearchConsoleService(ctx context.Context, ts oauth2.TokenSource) (*searchconsole.Service, error) {
	return searchconsole.NewService(ctx, option.WithTokenSource(ts))
}

// fetchUserInfo fetches the user's profile using an access token.
// The email serves as the account identifier.
func (c *Client) fetchUserInfo(ctx context.Context, accessToken string) (*UserInfo, error) {
	endpoint := userInfoURL
	if c.overrideUserInfoURL != "" {
		endpoint = c.overrideUserInfoURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	var userInfo UserInfo
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return nil, fmt.Errorf("decode user info: %w", err)
	}

	return &userInfo, nil
}
