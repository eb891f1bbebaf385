// Package cli implements the sitekit command line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/boxincode/sitekit/internal/core/ports/driven"
	"github.com/boxincode/sitekit/internal/core/ports/driving"
	"github.com/boxincode/sitekit/internal/logger"
)

// Services injected by main before Execute runs. Commands nil-check the
// services they need so partial wiring fails with a clear message.
var (
	accountService   driving.AccountService
	connectService   driving.ConnectFlow
	metricsService   driving.MetricsReader
	syncOrchestrator driving.SyncOrchestrator
	doctorService    driving.Doctor
	schedulerStore   driven.SchedulerStore
	configStore      driven.ConfigStore
)

var (
	version     = "dev"
	verboseFlag bool
	userFlag    int64
)

var rootCmd = &cobra.Command{
	Use:   "sitekit",
	Short: "Site metrics from Google Analytics and Search Console",
	Long: `sitekit connects Google accounts and keeps daily snapshots of
Google Analytics 4 and Search Console metrics for your sites.

Connect an account with 'sitekit connect', select a property and site
with 'sitekit settings', then fetch metrics with 'sitekit metrics' or
keep them fresh with 'sitekit sync'.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().Int64Var(&userFlag, "user", 1, "acting user id")
}

// Services bundles everything the commands need.
type Services struct {
	Accounts       driving.AccountService
	Connect        driving.ConnectFlow
	Metrics        driving.MetricsReader
	Sync           driving.SyncOrchestrator
	Doctor         driving.Doctor
	SchedulerTasks driven.SchedulerStore
	Scheduler      SchedulerRunner
	Config         driven.ConfigStore
}

// Configure injects the services the commands run against.
func Configure(s Services) {
	accountService = s.Accounts
	connectService = s.Connect
	metricsService = s.Metrics
	syncOrchestrator = s.Sync
	doctorService = s.Doctor
	schedulerStore = s.SchedulerTasks
	schedulerRunner = s.Scheduler
	configStore = s.Config
}

// Execute runs the root command.
func Execute(v string) error {
	version = v
	return rootCmd.Execute()
}
