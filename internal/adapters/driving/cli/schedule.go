package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Show scheduled task state",
	Long: `Lists the background tasks the scheduler runs and when each last ran.
The scheduler itself runs inside 'sitekit serve'.`,
	RunE: runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, _ []string) error {
	if schedulerStore == nil {
		return errors.New("scheduler store not configured")
	}

	tasks, err := schedulerStore.ListTasks(cmd.Context())
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}
	if len(tasks) == 0 {
		cmd.Println("No scheduled tasks recorded yet. Start 'sitekit serve' to schedule syncs.")
		return nil
	}

	for _, task := range tasks {
		state := "enabled"
		if !task.Enabled {
			state = "disabled"
		}
		cmd.Printf("%s (%s, every %s)\n", task.Name, state, task.Interval)
		if !task.LastRun.IsZero() {
			cmd.Printf("  last run:     %s\n", task.LastRun.Local().Format("2006-01-02 15:04:05"))
		}
		if !task.LastSuccess.IsZero() {
			cmd.Printf("  last success: %s\n", task.LastSuccess.Local().Format("2006-01-02 15:04:05"))
		}
		if task.LastError != "" {
			cmd.Printf("  last error:   %s\n", task.LastError)
		}
		if !task.NextRun.IsZero() {
			cmd.Printf("  next run:     %s\n", task.NextRun.Local().Format("2006-01-02 15:04:05"))
		}
	}
	return nil
}
