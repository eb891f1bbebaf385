package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/boxincode/sitekit/internal/core/domain"
	"github.com/boxincode/sitekit/internal/core/ports/driven"
)

// Google OAuth endpoints.
const (
	authURL  = "https://accounts.google.com/o/oauth2/v2/auth"
	tokenURL = "https://oauth2.googleapis.com/token"
)

// tokenTimeout bounds every token-endpoint round trip.
const tokenTimeout = 20 * time.Second

// DefaultScopes are the scopes requested when none are configured.
var DefaultScopes = []string{
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
	"https://www.googleapis.com/auth/analytics.readonly",
	"https://www.googleapis.com/auth/webmasters.readonly",
}

// Config holds the OAuth client credentials.
type Config struct {
	// ClientID is the OAuth client id.
	ClientID string
	// ClientSecret is the OAuth client secret.
	ClientSecret string
	// RedirectURI is the registered callback URL.
	RedirectURI string
	// Scopes are the OAuth scopes to request; DefaultScopes when empty.
	Scopes []string
}

// ConfigFromStore reads the OAuth client configuration.
func ConfigFromStore(store driven.ConfigStore) Config {
	return Config{
		ClientID:     store.GetString("google.client_id"),
		ClientSecret: store.GetString("google.client_secret"),
		RedirectURI:  store.GetString("google.redirect_uri"),
		Scopes:       store.GetStringSlice("google.scopes"),
	}
}

// StatusError is a non-2xx response from the token endpoint.
type StatusError struct {
	// Code is the HTTP status code.
	Code int
	// Reason is the provider's error code, when it sent one.
	Reason string
	// Description is the provider's error description, when sent.
	Description string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("google: token endpoint returned %d: %s - %s", e.Code, e.Reason, e.Description)
	}
	return fmt.Sprintf("google: token endpoint returned %d", e.Code)
}

// Ensure Client implements the interface.
var _ driven.OAuthClient = (*Client)(nil)

// Client is the stateless gateway to Google's OAuth endpoint and data
// APIs. It holds no per-account state; callers pass access tokens in.
type Client struct {
	cfg      Config
	http     *http.Client
	limiters map[ServiceType]*RateLimiter

	// Endpoint overrides, set by tests.
	overrideTokenURL    string
	overrideUserInfoURL string
}

// NewClient creates a client from configuration.
func NewClient(cfg Config) *Client {
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = DefaultScopes
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: tokenTimeout},
		limiters: map[ServiceType]*RateLimiter{
			ServiceAnalyticsData:  NewRateLimiter(ServiceAnalyticsData),
			ServiceAnalyticsAdmin: NewRateLimiter(ServiceAnalyticsAdmin),
			ServiceSearchConsole:  NewRateLimiter(ServiceSearchConsole),
		},
	}
}

// wait applies the service's rate limit before a data-plane call.
func (c *Client) wait(ctx context.Context, service ServiceType) error {
	limiter, ok := c.limiters[service]
	if !ok {
		return nil
	}
	return limiter.Wait(ctx)
}

// oauthConfig builds the x/oauth2 config for URL construction.
func (c *Client) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
		RedirectURL:  c.cfg.RedirectURI,
		Scopes:       c.cfg.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  authURL,
			TokenURL: tokenURL,
		},
	}
}

// AuthorizationURL builds the consent URL. Offline access and a forced
// consent prompt make Google issue a refresh token on every connect.
func (c *Client) AuthorizationURL(state string) string {
	return c.oauthConfig().AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	)
}

// ExchangeCode exchanges an authorization code for tokens.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*domain.TokenPayload, error) {
	data := url.Values{}
	data.Set("grant_type", "authorization_code")
	data.Set("client_id", c.cfg.ClientID)
	data.Set("client_secret", c.cfg.ClientSecret)
	data.Set("code", code)
	data.Set("redirect_uri", c.cfg.RedirectURI)

	return c.postToken(ctx, data)
}

// RefreshToken exchanges a refresh token for a fresh access token. The
// returned payload keeps the given refresh token when Google did not
// rotate it.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*domain.TokenPayload, error) {
	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("client_id", c.cfg.ClientID)
	data.Set("client_secret", c.cfg.ClientSecret)
	data.Set("refresh_token", refreshToken)

	payload, err := c.postToken(ctx, data)
	if err != nil {
		return nil, err
	}
	if payload.RefreshToken == "" {
		payload.RefreshToken = refreshToken
	}
	return payload, nil
}

// postToken performs one token-endpoint request and normalises the
// response. A response without an access token is a hard error.
func (c *Client) postToken(ctx context.Context, data url.Values) (*domain.TokenPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenEndpoint(), strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{Code: resp.StatusCode}
		var errResp struct {
			Error       string `json:"error"`
			Description string `json:"error_description"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil {
			statusErr.Reason = errResp.Error
			statusErr.Description = errResp.Description
		}
		return nil, statusErr
	}

	var tokenResp struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int    `json:"expires_in"`
		Scope        string `json:"scope"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("token response carried no access token")
	}

	payload := &domain.TokenPayload{
		AccessToken:  tokenResp.AccessToken,
		RefreshToken: tokenResp.RefreshToken,
		Scopes:       strings.Fields(tokenResp.Scope),
	}
	if tokenResp.ExpiresIn > 0 {
		expiry := time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)
		payload.ExpiresAt = &expiry
	}
	return payload, nil
}

// tokenEndpoint allows tests to point the client at a fake endpoint.
func (c *Client) tokenEndpoint() string {
	if c.overrideTokenURL != "" {
		return c.overrideTokenURL
	}
	return tokenURL
}

// FetchProfile retrieves the user's email and display name.
func (c *Client) FetchProfile(ctx context.Context, accessToken string) (*driven.Profile, error) {
	info, err := c.fetchUserInfo(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	return &driven.Profile{
		Email: info.Email,
		Name:  info.Name,
	}, nil
}
