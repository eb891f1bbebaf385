package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/boxincode/sitekit/internal/core/domain"
	"github.com/boxincode/sitekit/internal/core/ports/driven"
	"github.com/boxincode/sitekit/internal/core/ports/driving"
	"github.com/boxincode/sitekit/internal/logger"
)

// Ensure SyncOrchestrator implements the interface.
var _ driving.SyncOrchestrator = (*SyncOrchestrator)(nil)

// SyncOrchestrator materialises daily metric snapshots for connected
// accounts. Each account is one unit of work handed to the injected
// executor; the sequential and batch executors persist identical rows.
type SyncOrchestrator struct {
	accounts driven.AccountStore
	tokens   driven.TokenStore
	metrics  *MetricsService
	executor driven.SyncExecutor
	config   driven.ConfigStore
}

// NewSyncOrchestrator creates a new sync orchestrator.
func NewSyncOrchestrator(
	accounts driven.AccountStore,
	tokens driven.TokenStore,
	metrics *MetricsService,
	executor driven.SyncExecutor,
	config driven.ConfigStore,
) *SyncOrchestrator {
	return &SyncOrchestrator{
		accounts: accounts,
		tokens:   tokens,
		metrics:  metrics,
		executor: executor,
		config:   config,
	}
}

// SyncAll syncs every account holding a stored token.
func (o *SyncOrchestrator) SyncAll(ctx context.Context) (*driven.BatchStatus, error) {
	if !o.syncEnabled() {
		return nil, domain.ErrSyncDisabled
	}

	accounts, err := o.accounts.List(ctx, domain.ProviderGoogle)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	units := make([]driven.SyncUnit, 0, len(accounts))
	for i := range accounts {
		account := accounts[i]

		// Accounts without a stored token have nothing to sync.
		if _, err := o.tokens.Get(ctx, account.ID); err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				logger.Warn("Check token for account %d: %v", account.ID, err)
			}
			continue
		}

		units = append(units, driven.SyncUnit{
			AccountID: account.ID,
			Run: func(ctx context.Context) error {
				return o.syncAccount(ctx, &account)
			},
		})
	}

	logger.Info("Dispatching snapshot sync for %d accounts", len(units))
	return o.executor.Execute(ctx, "sitekit-sync", units)
}

// SyncAccount syncs one account across all connectors and periods.
func (o *SyncOrchestrator) SyncAccount(ctx context.Context, accountID int64) (*driven.BatchStatus, error) {
	if !o.syncEnabled() {
		return nil, domain.ErrSyncDisabled
	}

	account, err := o.accounts.Get(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}

	unit := driven.SyncUnit{
		AccountID: account.ID,
		Run: func(ctx context.Context) error {
			return o.syncAccount(ctx, account)
		},
	}
	return o.executor.Execute(ctx, fmt.Sprintf("sitekit-sync-%d", accountID), []driven.SyncUnit{unit})
}

// Status reports progress for a dispatched batch.
func (o *SyncOrchestrator) Status(ctx context.Context, batchID string) (*driven.BatchStatus, error) {
	return o.executor.Status(ctx, batchID)
}

// syncAccount is the per-account unit of work. Fetch failures are caught
// per connector and logged; only persistence failures fail the unit.
// Saves are daily upserts, so re-running on the same day is harmless.
func (o *SyncOrchestrator) syncAccount(ctx context.Context, account *domain.Account) error {
	var errs []error

	for _, period := range o.syncPeriods() {
		rows, err := o.metrics.BuildGA4DailyRows(ctx, account, period)
		if err != nil {
			logger.Warn("GA4 sync failed for account %d period %s: %v", account.ID, period, err)
		} else if len(rows) > 0 {
			if err := o.metrics.SaveSnapshot(ctx, account.ID, "ga4", period, rows); err != nil {
				errs = append(errs, fmt.Errorf("save ga4 %s: %w", period, err))
			}
		}

		rows, err = o.metrics.BuildGSCDailyRows(ctx, account, period)
		if err != nil {
			logger.Warn("Search Console sync failed for account %d period %s: %v", account.ID, period, err)
		} else if len(rows) > 0 {
			if err := o.metrics.SaveSnapshot(ctx, account.ID, "gsc", period, rows); err != nil {
				errs = append(errs, fmt.Errorf("save gsc %s: %w", period, err))
			}
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// syncEnabled reads the master sync switch, defaulting to on.
func (o *SyncOrchestrator) syncEnabled() bool {
	if _, ok := o.config.Get("sync.enabled"); !ok {
		return true
	}
	return o.config.GetBool("sync.enabled")
}

// syncPeriods reads the periods to materialise, defaulting to the two
// dashboard windows.
func (o *SyncOrchestrator) syncPeriods() []string {
	if periods := o.config.GetStringSlice("sync.periods"); len(periods) > 0 {
		return periods
	}
	return []string{"7d", "28d"}
}
