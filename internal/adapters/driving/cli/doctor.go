package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/boxincode/sitekit/internal/core/domain"
	"github.com/boxincode/sitekit/internal/core/ports/driving"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose configuration and account health",
	Long: `Checks the OAuth client configuration and, when an account is
connected, its token and connector setup.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	if doctorService == nil {
		return errors.New("doctor service not configured")
	}

	ctx := cmd.Context()

	// Environment checks run even without an account
	var account *domain.Account
	if accountService != nil {
		account, _ = accountService.CurrentAccount(ctx, userFlag) //nolint:errcheck // nil account is a valid state
	}

	results := doctorService.Check(ctx, account)
	failed := false
	for _, result := range results {
		cmd.Printf("%s %s", statusGlyph(result.Status), result.Name)
		if result.Detail != "" {
			cmd.Printf(": %s", result.Detail)
		}
		cmd.Println()
		if result.Status == driving.CheckFail {
			failed = true
		}
	}

	if account != nil {
		issues := doctorService.HealthIssues(ctx, account)
		if len(issues) > 0 {
			cmd.Println()
			for _, issue := range issues {
				cmd.Printf("%s %s: %s\n", levelGlyph(issue.Level), issue.Title, issue.Description)
			}
		}
	}

	if failed {
		return errors.New("some checks failed")
	}
	return nil
}

func statusGlyph(status driving.CheckStatus) string {
	switch status {
	case driving.CheckOK:
		return "✓"
	case driving.CheckWarn:
		return "⚠"
	default:
		return "✗"
	}
}

func levelGlyph(level string) string {
	if level == domain.HealthError {
		return "✗"
	}
	return "⚠"
}
