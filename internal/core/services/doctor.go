package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/boxincode/sitekit/internal/core/domain"
	"github.com/boxincode/sitekit/internal/core/ports/driven"
	"github.com/boxincode/sitekit/internal/core/ports/driving"
)

// Ensure DoctorService implements the interface.
var _ driving.Doctor = (*DoctorService)(nil)

// DoctorService runs environment and per-account diagnostics. Checks
// report their findings; they never fail the run itself.
type DoctorService struct {
	config   driven.ConfigStore
	tokens   *TokenService
	settings driven.SettingStore
	registry *ConnectorRegistry
}

// NewDoctorService creates a new doctor service.
func NewDoctorService(
	config driven.ConfigStore,
	tokens *TokenService,
	settings driven.SettingStore,
	registry *ConnectorRegistry,
) *DoctorService {
	return &DoctorService{
		config:   config,
		tokens:   tokens,
		settings: settings,
		registry: registry,
	}
}

// Check runs the diagnostic suite. A nil account limits the run to
// environment checks.
func (s *DoctorService) Check(ctx context.Context, account *domain.Account) []driving.CheckResult {
	results := s.checkEnvironment()
	if account != nil {
		results = append(results, s.checkAccount(ctx, account)...)
	}
	return results
}

// checkEnvironment validates the OAuth client configuration.
func (s *DoctorService) checkEnvironment() []driving.CheckResult {
	var results []driving.CheckResult

	results = append(results, s.checkConfigKey("google.client_id", "Google client ID"))
	results = append(results, s.checkConfigKey("google.client_secret", "Google client secret"))
	results = append(results, s.checkConfigKey("google.redirect_uri", "OAuth redirect URI"))

	if keys := s.registry.Keys(); len(keys) == 0 {
		results = append(results, driving.CheckResult{
			Name:   "connectors",
			Status: driving.CheckFail,
			Detail: "no connectors registered",
		})
	} else {
		results = append(results, driving.CheckResult{
			Name:   "connectors",
			Status: driving.CheckOK,
			Detail: fmt.Sprintf("%d registered", len(keys)),
		})
	}

	return results
}

func (s *DoctorService) checkConfigKey(key, label string) driving.CheckResult {
	if s.config.GetString(key) == "" {
		return driving.CheckResult{
			Name:   key,
			Status: driving.CheckFail,
			Detail: label + " is not configured",
		}
	}
	return driving.CheckResult{
		Name:   key,
		Status: driving.CheckOK,
		Detail: label + " is set",
	}
}

// checkAccount validates the account's token and connector setup.
func (s *DoctorService) checkAccount(ctx context.Context, account *domain.Account) []driving.CheckResult {
	var results []driving.CheckResult

	results = append(results, s.checkToken(ctx, account))

	for _, connector := range s.registry.List() {
		status := connector.SetupStatus(ctx, account)
		result := driving.CheckResult{
			Name:   "connector:" + connector.Key(),
			Detail: string(status),
		}
		switch status {
		case domain.StatusReady:
			result.Status = driving.CheckOK
		case domain.StatusNeedsSetup:
			result.Status = driving.CheckWarn
		default:
			result.Status = driving.CheckFail
		}
		results = append(results, result)
	}

	return results
}

func (s *DoctorService) checkToken(ctx context.Context, account *domain.Account) driving.CheckResult {
	record, err := s.tokens.Record(ctx, account.ID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return driving.CheckResult{
			Name:   "token",
			Status: driving.CheckFail,
			Detail: "no stored token",
		}
	case err != nil:
		return driving.CheckResult{
			Name:   "token",
			Status: driving.CheckFail,
			Detail: fmt.Sprintf("read token: %v", err),
		}
	case record.IsExpired() && record.RefreshToken == "":
		return driving.CheckResult{
			Name:   "token",
			Status: driving.CheckFail,
			Detail: "token expired with no refresh token; reconnect the account",
		}
	case record.IsExpired():
		return driving.CheckResult{
			Name:   "token",
			Status: driving.CheckWarn,
			Detail: "token expired; it will refresh on next use",
		}
	default:
		return driving.CheckResult{
			Name:   "token",
			Status: driving.CheckOK,
			Detail: "token valid",
		}
	}
}

// HealthIssues collects connector-reported issues for an account.
func (s *DoctorService) HealthIssues(ctx context.Context, account *domain.Account) []domain.HealthIssue {
	var issues []domain.HealthIssue
	for _, connector := range s.registry.List() {
		issues = append(issues, connector.HealthCheck(ctx, account)...)
	}
	return issues
}
