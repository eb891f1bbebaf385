package driving

import (
	"context"

	"github.com/boxincode/sitekit/internal/core/domain"
)

// CheckStatus is the outcome of one diagnostic check.
type CheckStatus string

const (
	// CheckOK means the check passed.
	CheckOK CheckStatus = "ok"
	// CheckWarn means the check passed with caveats.
	CheckWarn CheckStatus = "warn"
	// CheckFail means the check failed.
	CheckFail CheckStatus = "fail"
)

// CheckResult is one line of doctor output.
type CheckResult struct {
	// Name identifies the check.
	Name string
	// Status is the outcome.
	Status CheckStatus
	// Detail is a human-readable explanation.
	Detail string
}

// Doctor runs environment and per-account health diagnostics.
type Doctor interface {
	// Check runs the full diagnostic suite. A nil account limits the run
	// to environment checks.
	Check(ctx context.Context, account *domain.Account) []CheckResult

	// HealthIssues collects connector-reported issues for an account.
	HealthIssues(ctx context.Context, account *domain.Account) []domain.HealthIssue
}
