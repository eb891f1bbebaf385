package domain

import (
	"encoding/json"
	"time"
)

// Well-known setting keys.
const (
	// SettingGA4Property stores the selected GA4 property id for an account.
	SettingGA4Property = "ga4_property_id"
	// SettingGSCSite stores the selected Search Console site URL for an account.
	SettingGSCSite = "gsc_site_url"
	// SettingCurrentAccount is a module-level setting recording the active
	// account id for a user (key is suffixed with the user id).
	SettingCurrentAccount = "current_account"
)

// Setting is a key/value setting scoped to an account, or module-level
// when AccountID is nil.
type Setting struct {
	// AccountID is the owning account, or nil for a module-level setting.
	AccountID *int64 `json:"account_id,omitempty"`
	// Key is the setting name. Unique per (account, key).
	Key string `json:"key"`
	// Value is the raw JSON value.
	Value json.RawMessage `json:"value"`

	// UpdatedAt is when the setting was last written.
	UpdatedAt time.Time `json:"updated_at"`
}

// StringValue decodes the setting value as {"value": "..."} or as a bare
// JSON string, returning "" when neither shape matches.
func (s *Setting) StringValue() string {
	if len(s.Value) == 0 {
		return ""
	}

	var wrapped struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(s.Value, &wrapped); err == nil && wrapped.Value != "" {
		return wrapped.Value
	}

	var bare string
	if err := json.Unmarshal(s.Value, &bare); err == nil {
		return bare
	}
	return ""
}

// StringSetting encodes a plain string as a {"value": ...} setting body.
func StringSetting(value string) json.RawMessage {
	raw, _ := json.Marshal(map[string]string{"value": value})
	return raw
}
