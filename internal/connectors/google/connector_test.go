package google

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	storagemem "github.com/boxincode/sitekit/internal/adapters/driven/storage/memory"
	"github.com/boxincode/sitekit/internal/core/domain"
	"github.com/boxincode/sitekit/internal/core/ports/driven"
)

// stubOAuth scripts the data-plane calls the connectors make.
type stubOAuth struct {
	mu sync.Mutex

	ga4Reports []*driven.Report
	ga4Err     error
	ga4Calls   int

	gscReports []*driven.Report
	gscErr     error
	gscCalls   int
}

func (s *stubOAuth) AuthorizationURL(string) string { return "" }

func (s *stubOAuth) ExchangeCode(context.Context, string) (*domain.TokenPayload, error) {
	return nil, nil
}

func (s *stubOAuth) RefreshToken(context.Context, string) (*domain.TokenPayload, error) {
	return nil, nil
}

func (s *stubOAuth) FetchProfile(context.Context, string) (*driven.Profile, error) {
	return nil, nil
}

func (s *stubOAuth) ListGA4Properties(context.Context, string) ([]driven.ListingItem, error) {
	return nil, nil
}

func (s *stubOAuth) ListSearchConsoleSites(context.Context, string) ([]driven.ListingItem, error) {
	return nil, nil
}

func (s *stubOAuth) RunGA4Report(_ context.Context, _, _ string, _ driven.ReportSpec) (*driven.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ga4Err != nil {
		s.ga4Calls++
		return nil, s.ga4Err
	}
	report := s.ga4Reports[s.ga4Calls%len(s.ga4Reports)]
	s.ga4Calls++
	return report, nil
}

func (s *stubOAuth) RunSearchConsoleQuery(_ context.Context, _, _ string, _ driven.QuerySpec) (*driven.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gscErr != nil {
		s.gscCalls++
		return nil, s.gscErr
	}
	report := s.gscReports[s.gscCalls%len(s.gscReports)]
	s.gscCalls++
	return report, nil
}

// stubTokens is a fixed-answer driven.TokenProvider.
type stubTokens struct {
	token string
	err   error
}

func (s *stubTokens) GetValidAccessToken(context.Context, *domain.Account) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.token, nil
}

func newStubConfig() *storagemem.ConfigStore {
	return storagemem.NewConfigStore()
}

func connectorAccount() *domain.Account {
	return &domain.Account{ID: 1, UserID: 1, Provider: domain.ProviderGoogle, Email: "a@example.com"}
}

// settingsWith builds a setting store holding one account setting.
// An empty value leaves the store empty.
func settingsWith(t *testing.T, accountID int64, key, value string) *storagemem.SettingStore {
	t.Helper()
	settings := storagemem.NewSettingStore()
	if value != "" {
		require.NoError(t, settings.Set(context.Background(), domain.Setting{
			AccountID: &accountID,
			Key:       key,
			Value:     domain.StringSetting(value),
		}))
	}
	return settings
}
