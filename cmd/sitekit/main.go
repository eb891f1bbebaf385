// Command sitekit is the Site Kit command line interface.
package main

import (
	"fmt"
	"os"
	"time"

	cachemem "github.com/boxincode/sitekit/internal/adapters/driven/cache/memory"
	configfile "github.com/boxincode/sitekit/internal/adapters/driven/config/file"
	"github.com/boxincode/sitekit/internal/adapters/driven/crypto"
	"github.com/boxincode/sitekit/internal/adapters/driven/executor"
	"github.com/boxincode/sitekit/internal/adapters/driven/storage/sqlite"
	"github.com/boxincode/sitekit/internal/adapters/driving/cli"
	"github.com/boxincode/sitekit/internal/connectors/google"
	"github.com/boxincode/sitekit/internal/core/domain"
	"github.com/boxincode/sitekit/internal/core/ports/driven"
	"github.com/boxincode/sitekit/internal/core/services"
	"github.com/boxincode/sitekit/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// cacheSweepInterval is how often expired cache entries are evicted.
const cacheSweepInterval = 5 * time.Minute

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "sitekit: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	config, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer config.Close() //nolint:errcheck

	cipher, err := buildCipher(config)
	if err != nil {
		return err
	}

	store, err := sqlite.NewStore("", cipher)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close() //nolint:errcheck

	client := google.NewClient(google.ConfigFromStore(config))
	tokenService := services.NewTokenService(store.TokenStore(), client)

	registry, err := services.NewConnectorRegistry(
		google.NewGA4Connector(client, tokenService, store.SettingStore(), config),
		google.NewGSCConnector(client, tokenService, store.SettingStore(), config),
	)
	if err != nil {
		return fmt.Errorf("build connector registry: %w", err)
	}

	cache := cachemem.NewCache()
	cache.Start(cacheSweepInterval)
	defer cache.Stop()

	metricsService := services.NewMetricsService(
		registry, tokenService, client,
		store.SnapshotStore(), store.SettingStore(), cache, config,
	)
	accountService := services.NewAccountService(
		store.AccountStore(), store.MembershipStore(), store.SettingStore(),
	)
	connectService := services.NewConnectService(
		client, store.AccountStore(), store.MembershipStore(),
		tokenService, accountService, metricsService,
	)
	doctorService := services.NewDoctorService(config, tokenService, store.SettingStore(), registry)

	syncOrchestrator := services.NewSyncOrchestrator(
		store.AccountStore(), store.TokenStore(), metricsService, buildExecutor(config), config,
	)

	scheduler := services.NewScheduler(
		schedulerConfig(config), store.SchedulerStore(), syncOrchestrator,
	)

	cli.Configure(cli.Services{
		Accounts:       accountService,
		Connect:        connectService,
		Metrics:        metricsService,
		Sync:           syncOrchestrator,
		Doctor:         doctorService,
		SchedulerTasks: store.SchedulerStore(),
		Scheduler:      scheduler,
		Config:         config,
	})

	return cli.Execute(version)
}

// buildCipher derives the token cipher from configuration. Without a
// configured key tokens are stored unencrypted.
func buildCipher(config driven.ConfigStore) (driven.Cipher, error) {
	key := config.GetString("security.token_key")
	if key == "" {
		logger.Debug("security.token_key not set; tokens stored unencrypted")
		return nil, nil
	}
	cipher, err := crypto.NewAESCipher(key)
	if err != nil {
		return nil, fmt.Errorf("build token cipher: %w", err)
	}
	return cipher, nil
}

// buildExecutor picks the sync execution strategy from configuration.
func buildExecutor(config driven.ConfigStore) driven.SyncExecutor {
	if config.GetBool("sync.queue_enabled") {
		return executor.NewBatch(config.GetInt("sync.workers"))
	}
	return executor.NewSequential()
}

// schedulerConfig reads the scheduler settings, defaulting to an hourly
// sync with the scheduler enabled.
func schedulerConfig(config driven.ConfigStore) domain.SchedulerConfig {
	cfg := domain.DefaultSchedulerConfig()
	if _, ok := config.Get("scheduler.enabled"); ok {
		cfg.Enabled = config.GetBool("scheduler.enabled")
	}
	if minutes := config.GetInt("sync.interval_minutes"); minutes > 0 {
		cfg.SyncInterval = time.Duration(minutes) * time.Minute
	}
	return cfg
}
