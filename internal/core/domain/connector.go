package domain

import "fmt"

// SetupStatus describes a connector's readiness for an account.
type SetupStatus string

const (
	// StatusReady means the connector is connected and fully configured.
	StatusReady SetupStatus = "ready"
	// StatusNeedsSetup means the token is valid but a required selection
	// (property, site) has not been made yet.
	StatusNeedsSetup SetupStatus = "needs_setup"
	// StatusDisconnected means no valid access token is available.
	StatusDisconnected SetupStatus = "disconnected"
	// StatusError means the readiness check itself failed.
	StatusError SetupStatus = "error"
)

// IsValid reports whether the status is one of the known statuses.
func (s SetupStatus) IsValid() bool {
	switch s {
	case StatusReady, StatusNeedsSetup, StatusDisconnected, StatusError:
		return true
	}
	return false
}

// Health issue levels.
const (
	HealthError   = "error"
	HealthWarning = "warning"
)

// HealthIssue is one finding from a connector health check.
type HealthIssue struct {
	// Level is the severity ("error" or "warning").
	Level string `json:"level"`
	// Title is a short summary of the issue.
	Title string `json:"title"`
	// Description explains the issue and how to resolve it.
	Description string `json:"description"`
	// ActionURL optionally points at the place to fix the issue.
	ActionURL string `json:"action_url,omitempty"`
}

// SnapshotPayload is a connector fetch result. Fetch failures are carried
// inside the payload under "error" rather than raised as errors, so one
// connector's failure can never abort a multi-account sync run.
type SnapshotPayload map[string]any

// ErrorPayload builds a payload describing a fetch failure.
func ErrorPayload(message string) SnapshotPayload {
	return SnapshotPayload{"error": message}
}

// ErrorPayloadWithCause builds a failure payload that also records the
// underlying error type for diagnostics.
func ErrorPayloadWithCause(message string, cause error) SnapshotPayload {
	return SnapshotPayload{
		"error": message,
		"meta":  map[string]any{"exception": fmt.Sprintf("%T", cause)},
	}
}

// IsError reports whether the payload describes a fetch failure.
func (p SnapshotPayload) IsError() bool {
	_, ok := p["error"]
	return ok
}
