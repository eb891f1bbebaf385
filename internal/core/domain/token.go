package domain

import "time"

// TokenRecord holds the stored OAuth credentials for one account.
// The access and refresh tokens are encrypted at rest by the store;
// a TokenRecord in memory always carries the plaintext values.
type TokenRecord struct {
	// AccountID is the owning account. At most one record exists per
	// account: refreshing overwrites the record in place.
	AccountID int64 `json:"account_id"`
	// AccessToken is the bearer token for API access.
	AccessToken string `json:"access_token"`
	// RefreshToken is used to obtain new access tokens. Empty when the
	// provider did not grant offline access.
	RefreshToken string `json:"refresh_token,omitempty"`
	// ExpiresAt is when the access token expires. Nil means the provider
	// reported no expiry and the token is treated as never expiring.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	// Scopes are the OAuth scopes granted with the token, in grant order.
	Scopes []string `json:"scopes,omitempty"`

	// UpdatedAt is when the record was last written.
	UpdatedAt time.Time `json:"updated_at"`
}

// IsExpired returns true if the access token has expired.
// A record without an expiry timestamp never expires.
func (t *TokenRecord) IsExpired() bool {
	if t.ExpiresAt == nil {
		return false
	}
	return time.Now().After(*t.ExpiresAt)
}

// TokenPayload is a normalised token-endpoint response.
type TokenPayload struct {
	// AccessToken is the bearer token. Always present: responses without
	// one are rejected by the OAuth client.
	AccessToken string `json:"access_token"`
	// RefreshToken is present only when the provider issued one.
	RefreshToken string `json:"refresh_token,omitempty"`
	// ExpiresAt is computed from the response's expires_in seconds.
	// Nil when the response carried no expiry.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	// Scopes are the granted scopes parsed from the space-separated
	// scope field. Empty when the response omitted it.
	Scopes []string `json:"scopes,omitempty"`
}
