package cli

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/boxincode/sitekit/internal/adapters/driving/oauth"
)

// callbackTimeout bounds how long connect waits for the browser redirect.
const callbackTimeout = 5 * time.Minute

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect a Google account",
	Long: `Starts the Google OAuth flow in your browser and waits for the
redirect on the configured callback URL. On success the account is
stored with its token and becomes your current account.

Requires google.client_id, google.client_secret and google.redirect_uri
to be configured; run 'sitekit doctor' to verify.`,
	RunE: runConnect,
}

var disconnectCmd = &cobra.Command{
	Use:   "disconnect [account-id]",
	Short: "Disconnect a Google account",
	Long: `Removes an account together with its token, settings, snapshots and
memberships. Without an argument the current account is disconnected.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDisconnect,
}

var connectWorkspaceFlag int64

func init() {
	connectCmd.Flags().Int64Var(&connectWorkspaceFlag, "workspace", 0, "scope the account to a workspace id")
	rootCmd.AddCommand(connectCmd)
	rootCmd.AddCommand(disconnectCmd)
}

func runConnect(cmd *cobra.Command, _ []string) error {
	if connectService == nil {
		return errors.New("connect service not configured")
	}

	ctx := cmd.Context()

	authURL, state, err := connectService.Start(ctx)
	if err != nil {
		return fmt.Errorf("start connect flow: %w", err)
	}

	port, err := callbackPort()
	if err != nil {
		return err
	}

	server := oauth.NewCallbackServer(port, state)
	if err := server.Start(); err != nil {
		return fmt.Errorf("start callback server: %w", err)
	}
	defer server.Stop() //nolint:errcheck

	cmd.Println("Opening your browser to sign in with Google...")
	cmd.Printf("If it does not open, visit:\n\n  %s\n\n", authURL)
	if err := oauth.OpenBrowser(authURL); err != nil {
		cmd.Printf("Could not open browser: %v\n", err)
	}

	code, err := server.WaitForCode(callbackTimeout)
	if err != nil {
		return fmt.Errorf("authorization failed: %w", err)
	}

	var workspaceID *int64
	if connectWorkspaceFlag > 0 {
		workspaceID = &connectWorkspaceFlag
	}

	account, err := connectService.Complete(ctx, userFlag, workspaceID, code, state, state)
	if err != nil {
		return fmt.Errorf("complete connect flow: %w", err)
	}

	cmd.Printf("Connected %s (account #%d).\n", account.Email, account.ID)
	cmd.Println("Next: select a GA4 property and Search Console site with 'sitekit settings'.")
	return nil
}

func runDisconnect(cmd *cobra.Command, args []string) error {
	if connectService == nil || accountService == nil {
		return errors.New("connect service not configured")
	}

	ctx := cmd.Context()

	var accountID int64
	if len(args) > 0 {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid account id %q", args[0])
		}
		accountID = id
	} else {
		account, err := accountService.CurrentAccount(ctx, userFlag)
		if err != nil {
			return fmt.Errorf("no account to disconnect: %w", err)
		}
		accountID = account.ID
	}

	if err := connectService.Disconnect(ctx, accountID); err != nil {
		return fmt.Errorf("disconnect account: %w", err)
	}

	cmd.Printf("Account #%d disconnected.\n", accountID)
	return nil
}

// callbackPort extracts the loopback port from the configured redirect
// URI so the local server answers on the URL Google redirects to.
func callbackPort() (int, error) {
	if configStore == nil {
		return 0, errors.New("configuration not available")
	}

	redirect := configStore.GetString("google.redirect_uri")
	if redirect == "" {
		return 0, errors.New("google.redirect_uri is not configured")
	}

	u, err := url.Parse(redirect)
	if err != nil {
		return 0, fmt.Errorf("invalid google.redirect_uri: %w", err)
	}
	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return 0, fmt.Errorf("invalid port in google.redirect_uri: %w", err)
		}
		return port, nil
	}
	// No explicit port: 80 for http, anything else is unusable locally
	if u.Scheme == "http" {
		return 80, nil
	}
	return 0, fmt.Errorf("google.redirect_uri %q must point at a local http port", redirect)
}
