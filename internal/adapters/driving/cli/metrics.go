package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	metricsPeriodFlag   string
	timeseriesSnapshots bool
)

var metricsCmd = &cobra.Command{
	Use:   "metrics [connector]",
	Short: "Show metrics for the current account",
	Long: `Fetches the metrics payload for a connector ("ga4" or "gsc") over the
selected period and prints it as JSON. Without an argument both
connectors are fetched. Reads are served from the cache when fresh.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMetrics,
}

var timeseriesCmd = &cobra.Command{
	Use:   "timeseries <metric>",
	Short: "Show one metric as a daily series",
	Long: `Prints a daily series for one metric (users, sessions, pageviews,
clicks or impressions). By default the series is fetched live; with
--from-snapshot it is read from the latest stored snapshot instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runTimeseries,
}

func init() {
	metricsCmd.Flags().StringVarP(&metricsPeriodFlag, "period", "p", "28d", "reporting period (7d, 28d, 90d)")
	timeseriesCmd.Flags().StringVarP(&metricsPeriodFlag, "period", "p", "28d", "reporting period (7d, 28d, 90d)")
	timeseriesCmd.Flags().BoolVar(&timeseriesSnapshots, "from-snapshot", false, "read from the latest stored snapshot")
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(timeseriesCmd)
}

func runMetrics(cmd *cobra.Command, args []string) error {
	if accountService == nil || metricsService == nil {
		return errors.New("metrics service not configured")
	}

	ctx := cmd.Context()

	account, err := accountService.CurrentAccount(ctx, userFlag)
	if err != nil {
		return fmt.Errorf("no current account: %w", err)
	}

	connectors := []string{"ga4", "gsc"}
	if len(args) > 0 {
		connectors = []string{args[0]}
	}

	out := make(map[string]any, len(connectors))
	for _, key := range connectors {
		out[key] = metricsService.GetMetrics(ctx, account, key, metricsPeriodFlag)
	}

	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	cmd.Println(string(encoded))
	return nil
}

func runTimeseries(cmd *cobra.Command, args []string) error {
	if accountService == nil || metricsService == nil {
		return errors.New("metrics service not configured")
	}

	ctx := cmd.Context()

	account, err := accountService.CurrentAccount(ctx, userFlag)
	if err != nil {
		return fmt.Errorf("no current account: %w", err)
	}

	metric := args[0]
	var series = metricsService.GetTimeSeries
	if timeseriesSnapshots {
		series = metricsService.GetSnapshotTimeSeries
	}
	result := series(ctx, account, metricsPeriodFlag, metric)

	if result.IsEmpty() {
		cmd.Printf("No data for %s over %s.\n", metric, metricsPeriodFlag)
		return nil
	}

	for i, label := range result.Labels {
		cmd.Printf("%s  %g\n", label, result.Values[i])
	}
	return nil
}
