package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	storagemem "github.com/boxincode/sitekit/internal/adapters/driven/storage/memory"
	"github.com/boxincode/sitekit/internal/core/domain"
	"github.com/boxincode/sitekit/internal/core/ports/driven"
)

// testStores bundles the in-memory stores the service tests run against.
type testStores struct {
	accounts    *storagemem.AccountStore
	memberships *storagemem.MembershipStore
	tokens      *storagemem.TokenStore
	settings    *storagemem.SettingStore
	snapshots   *storagemem.SnapshotStore
	scheduler   *storagemem.SchedulerStore
}

func newTestStores() *testStores {
	memberships := storagemem.NewMembershipStore()
	tokens := storagemem.NewTokenStore()
	settings := storagemem.NewSettingStore()
	snapshots := storagemem.NewSnapshotStore()
	return &testStores{
		accounts:    storagemem.NewAccountStore(memberships, tokens, settings, snapshots),
		memberships: memberships,
		tokens:      tokens,
		settings:    settings,
		snapshots:   snapshots,
		scheduler:   storagemem.NewSchedulerStore(),
	}
}

// fakeOAuth is a scriptable driven.OAuthClient that counts its calls.
type fakeOAuth struct {
	mu sync.Mutex

	exchangePayload *domain.TokenPayload
	exchangeErr     error
	exchangeCalls   int

	refreshPayload *domain.TokenPayload
	refreshErr     error
	refreshCalls   int

	profile    *driven.Profile
	profileErr error

	properties []driven.ListingItem
	sites      []driven.ListingItem

	ga4Report *driven.Report
	ga4Err    error
	ga4Calls  int

	gscReport *driven.Report
	gscErr    error
	gscCalls  int
}

func (f *fakeOAuth) AuthorizationURL(state string) string {
	return "https://accounts.example.com/o/oauth2/auth?state=" + state
}

func (f *fakeOAuth) ExchangeCode(_ context.Context, _ string) (*domain.TokenPayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exchangeCalls++
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	payload := *f.exchangePayload
	return &payload, nil
}

func (f *fakeOAuth) RefreshToken(_ context.Context, _ string) (*domain.TokenPayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshCalls++
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	payload := *f.refreshPayload
	return &payload, nil
}

func (f *fakeOAuth) FetchProfile(_ context.Context, _ string) (*driven.Profile, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	return f.profile, nil
}

func (f *fakeOAuth) ListGA4Properties(_ context.Context, _ string) ([]driven.ListingItem, error) {
	return f.properties, nil
}

func (f *fakeOAuth) ListSearchConsoleSites(_ context.Context, _ string) ([]driven.ListingItem, error) {
	return f.sites, nil
}

func (f *fakeOAuth) RunGA4Report(_ context.Context, _, _ string, _ driven.ReportSpec) (*driven.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ga4Calls++
	if f.ga4Err != nil {
		return nil, f.ga4Err
	}
	return f.ga4Report, nil
}

func (f *fakeOAuth) RunSearchConsoleQuery(_ context.Context, _, _ string, _ driven.QuerySpec) (*driven.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gscCalls++
	if f.gscErr != nil {
		return nil, f.gscErr
	}
	return f.gscReport, nil
}

// fakeConfig is the in-memory config store, close enough to the TOML
// store for service behaviour.
type fakeConfig = storagemem.ConfigStore

func newFakeConfig() *fakeConfig {
	return storagemem.NewConfigStore()
}

// fakeCache is a TTL-less driven.Cache that honours only explicit entries.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (c *fakeCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *fakeCache) Set(key string, value []byte, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
}

// fakeConnector is a scriptable driven.Connector that records the last
// period and metric it was asked for.
type fakeConnector struct {
	key     string
	enabled bool
	status  domain.SetupStatus
	issues  []domain.HealthIssue
	payload domain.SnapshotPayload
	series  domain.TimeSeries

	mu            sync.Mutex
	snapshotCalls int
	seriesCalls   int
	lastPeriod    string
	lastMetric    string
}

func (f *fakeConnector) Key() string         { return f.key }
func (f *fakeConnector) Label() string       { return "Fake " + f.key }
func (f *fakeConnector) Description() string { return "fake connector" }
func (f *fakeConnector) Icon() string        { return "fake" }
func (f *fakeConnector) Enabled() bool       { return f.enabled }

func (f *fakeConnector) SetupStatus(_ context.Context, _ *domain.Account) domain.SetupStatus {
	return f.status
}

func (f *fakeConnector) HealthCheck(_ context.Context, _ *domain.Account) []domain.HealthIssue {
	return f.issues
}

func (f *fakeConnector) FetchSnapshot(_ context.Context, _ *domain.Account, period string) domain.SnapshotPayload {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshotCalls++
	f.lastPeriod = period
	return f.payload
}

func (f *fakeConnector) FetchTimeSeries(_ context.Context, _ *domain.Account, period, metric string) domain.TimeSeries {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seriesCalls++
	f.lastPeriod = period
	f.lastMetric = metric
	return f.series
}

// fakeExecutor runs every unit inline and records the dispatched batches.
type fakeExecutor struct {
	mu      sync.Mutex
	batches map[string]*driven.BatchStatus
	units   [][]int64
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{batches: make(map[string]*driven.BatchStatus)}
}

func (e *fakeExecutor) Execute(ctx context.Context, name string, units []driven.SyncUnit) (*driven.BatchStatus, error) {
	status := &driven.BatchStatus{
		ID:    uuid.NewString(),
		Name:  name,
		Total: len(units),
		Done:  true,
	}

	ids := make([]int64, 0, len(units))
	for _, unit := range units {
		ids = append(ids, unit.AccountID)
		if err := unit.Run(ctx); err != nil {
			status.Failed++
		}
		status.Completed++
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.batches[status.ID] = status
	e.units = append(e.units, ids)
	return status, nil
}

func (e *fakeExecutor) Status(_ context.Context, batchID string) (*driven.BatchStatus, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	status, ok := e.batches[batchID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *status
	return &copied, nil
}

func timePtr(t time.Time) *time.Time { return &t }
