package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/boxincode/sitekit/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Configure the current account",
	Long: `View and configure the current account's data sources: the Google
Analytics 4 property and the Search Console site metrics come from.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsPropertyCmd = &cobra.Command{
	Use:   "property",
	Short: "Select the GA4 property",
	Long:  `Lists the GA4 properties visible to the connected account and stores the selected one.`,
	RunE:  runSettingsProperty,
}

var settingsSiteCmd = &cobra.Command{
	Use:   "site",
	Short: "Select the Search Console site",
	Long:  `Lists the verified Search Console sites for the connected account and stores the selected one.`,
	RunE:  runSettingsSite,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsPropertyCmd)
	settingsCmd.AddCommand(settingsSiteCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if accountService == nil {
		return errors.New("account service not configured")
	}

	ctx := cmd.Context()

	account, err := accountService.CurrentAccount(ctx, userFlag)
	if err != nil {
		return fmt.Errorf("no current account: %w", err)
	}

	property, _ := accountService.GetSetting(ctx, account.ID, domain.SettingGA4Property) //nolint:errcheck // display only
	site, _ := accountService.GetSetting(ctx, account.ID, domain.SettingGSCSite)         //nolint:errcheck // display only

	cmd.Printf("Account: %s (#%d)\n\n", account.Label(), account.ID)
	cmd.Println("[Google Analytics]")
	cmd.Printf("  Property: %s\n\n", orUnset(property))
	cmd.Println("[Search Console]")
	cmd.Printf("  Site: %s\n", orUnset(site))

	if property == "" || site == "" {
		cmd.Println()
		if property == "" {
			cmd.Println("Run 'sitekit settings property' to select a GA4 property.")
		}
		if site == "" {
			cmd.Println("Run 'sitekit settings site' to select a Search Console site.")
		}
	}
	return nil
}

func runSettingsProperty(cmd *cobra.Command, _ []string) error {
	if accountService == nil || metricsService == nil {
		return errors.New("settings services not configured")
	}

	ctx := cmd.Context()

	account, err := accountService.CurrentAccount(ctx, userFlag)
	if err != nil {
		return fmt.Errorf("no current account: %w", err)
	}

	items, err := metricsService.ListGA4Properties(ctx, account)
	if err != nil {
		return fmt.Errorf("list GA4 properties: %w", err)
	}
	if len(items) == 0 {
		cmd.Println("No GA4 properties visible to this account.")
		return nil
	}

	cmd.Println("Select GA4 Property")
	cmd.Println("-------------------")
	for i, item := range items {
		cmd.Printf("  %d. %s\n", i+1, item.Label)
	}
	cmd.Print("\nEnter choice: ")

	reader := bufio.NewReader(os.Stdin)
	idx := parseChoice(readLine(reader), len(items), 0)
	if idx == 0 {
		return errors.New("invalid selection")
	}

	selected := items[idx-1]
	if err := accountService.SetSetting(ctx, account.ID, domain.SettingGA4Property, selected.ID); err != nil {
		return fmt.Errorf("save property: %w", err)
	}

	cmd.Printf("GA4 property set to: %s\n", selected.Label)
	return nil
}

func runSettingsSite(cmd *cobra.Command, _ []string) error {
	if accountService == nil || metricsService == nil {
		return errors.New("settings services not configured")
	}

	ctx := cmd.Context()

	account, err := accountService.CurrentAccount(ctx, userFlag)
	if err != nil {
		return fmt.Errorf("no current account: %w", err)
	}

	items, err := metricsService.ListGSCSites(ctx, account)
	if err != nil {
		return fmt.Errorf("list Search Console sites: %w", err)
	}
	if len(items) == 0 {
		cmd.Println("No verified Search Console sites for this account.")
		return nil
	}

	cmd.Println("Select Search Console Site")
	cmd.Println("--------------------------")
	for i, item := range items {
		cmd.Printf("  %d. %s\n", i+1, item.Label)
	}
	cmd.Print("\nEnter choice: ")

	reader := bufio.NewReader(os.Stdin)
	idx := parseChoice(readLine(reader), len(items), 0)
	if idx == 0 {
		return errors.New("invalid selection")
	}

	selected := items[idx-1]
	if err := accountService.SetSetting(ctx, account.ID, domain.SettingGSCSite, selected.ID); err != nil {
		return fmt.Errorf("save site: %w", err)
	}

	cmd.Printf("Search Console site set to: %s\n", selected.Label)
	return nil
}

// Helper functions.

func orUnset(value string) string {
	if value == "" {
		return "(not set)"
	}
	return value
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}
