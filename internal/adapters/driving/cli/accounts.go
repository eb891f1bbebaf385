package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/boxincode/sitekit/internal/core/domain"
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Manage connected accounts",
	Long: `Lists connected Google accounts, switches the current account and
manages who else can see an account's metrics.`,
	RunE: runAccountsList,
}

var accountsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accessible accounts",
	RunE:  runAccountsList,
}

var accountsUseCmd = &cobra.Command{
	Use:   "use <account-id>",
	Short: "Switch the current account",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccountsUse,
}

var accountsMembersCmd = &cobra.Command{
	Use:   "members [account-id]",
	Short: "List an account's members",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAccountsMembers,
}

var accountsInviteCmd = &cobra.Command{
	Use:   "invite <account-id> <user-id> <role>",
	Short: "Grant a user access to an account",
	Long: `Grants a user the admin or viewer role on an account. The owner role
belongs to the account creator and cannot be granted.`,
	Args: cobra.ExactArgs(3),
	RunE: runAccountsInvite,
}

var accountsRoleCmd = &cobra.Command{
	Use:   "role <account-id> <user-id> <role>",
	Short: "Change a member's role",
	Args:  cobra.ExactArgs(3),
	RunE:  runAccountsRole,
}

var accountsRemoveCmd = &cobra.Command{
	Use:   "remove <account-id> <user-id>",
	Short: "Revoke a member's access",
	Args:  cobra.ExactArgs(2),
	RunE:  runAccountsRemove,
}

func init() {
	accountsCmd.AddCommand(accountsListCmd)
	accountsCmd.AddCommand(accountsUseCmd)
	accountsCmd.AddCommand(accountsMembersCmd)
	accountsCmd.AddCommand(accountsInviteCmd)
	accountsCmd.AddCommand(accountsRoleCmd)
	accountsCmd.AddCommand(accountsRemoveCmd)
	rootCmd.AddCommand(accountsCmd)
}

func runAccountsList(cmd *cobra.Command, _ []string) error {
	if accountService == nil {
		return errors.New("account service not configured")
	}

	ctx := cmd.Context()

	accounts, err := accountService.ListAccessible(ctx, userFlag)
	if err != nil {
		return fmt.Errorf("list accounts: %w", err)
	}
	if len(accounts) == 0 {
		cmd.Println("No accounts connected. Run 'sitekit connect' to add one.")
		return nil
	}

	current, _ := accountService.CurrentAccount(ctx, userFlag) //nolint:errcheck // marker only

	for _, account := range accounts {
		marker := " "
		if current != nil && current.ID == account.ID {
			marker = "*"
		}
		cmd.Printf("%s #%-4d %-30s %s\n", marker, account.ID, account.Label(), account.Email)
	}
	return nil
}

func runAccountsUse(cmd *cobra.Command, args []string) error {
	if accountService == nil {
		return errors.New("account service not configured")
	}

	accountID, err := parseID(args[0], "account")
	if err != nil {
		return err
	}

	if err := accountService.SetCurrentAccount(cmd.Context(), userFlag, accountID); err != nil {
		return fmt.Errorf("switch account: %w", err)
	}
	cmd.Printf("Current account is now #%d.\n", accountID)
	return nil
}

func runAccountsMembers(cmd *cobra.Command, args []string) error {
	if accountService == nil {
		return errors.New("account service not configured")
	}

	ctx := cmd.Context()

	accountID, err := resolveAccountID(cmd, args)
	if err != nil {
		return err
	}

	members, err := accountService.ListMembers(ctx, accountID)
	if err != nil {
		return fmt.Errorf("list members: %w", err)
	}
	if len(members) == 0 {
		cmd.Println("No members.")
		return nil
	}

	for _, m := range members {
		cmd.Printf("user #%-4d %s\n", m.UserID, m.Role)
	}
	return nil
}

func runAccountsInvite(cmd *cobra.Command, args []string) error {
	if accountService == nil {
		return errors.New("account service not configured")
	}

	accountID, userID, role, err := parseMemberArgs(args)
	if err != nil {
		return err
	}

	if err := accountService.AddMember(cmd.Context(), accountID, userID, role); err != nil {
		return fmt.Errorf("invite member: %w", err)
	}
	cmd.Printf("User #%d added to account #%d as %s.\n", userID, accountID, role)
	return nil
}

func runAccountsRole(cmd *cobra.Command, args []string) error {
	if accountService == nil {
		return errors.New("account service not configured")
	}

	accountID, userID, role, err := parseMemberArgs(args)
	if err != nil {
		return err
	}

	if err := accountService.UpdateMemberRole(cmd.Context(), accountID, userID, role); err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	cmd.Printf("User #%d is now %s on account #%d.\n", userID, role, accountID)
	return nil
}

func runAccountsRemove(cmd *cobra.Command, args []string) error {
	if accountService == nil {
		return errors.New("account service not configured")
	}

	accountID, err := parseID(args[0], "account")
	if err != nil {
		return err
	}
	userID, err := parseID(args[1], "user")
	if err != nil {
		return err
	}

	if err := accountService.RemoveMember(cmd.Context(), accountID, userID); err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	cmd.Printf("User #%d removed from account #%d.\n", userID, accountID)
	return nil
}

// resolveAccountID returns the id argument, or the current account.
func resolveAccountID(cmd *cobra.Command, args []string) (int64, error) {
	if len(args) > 0 {
		return parseID(args[0], "account")
	}
	account, err := accountService.CurrentAccount(cmd.Context(), userFlag)
	if err != nil {
		return 0, fmt.Errorf("no current account: %w", err)
	}
	return account.ID, nil
}

func parseMemberArgs(args []string) (accountID, userID int64, role domain.Role, err error) {
	accountID, err = parseID(args[0], "account")
	if err != nil {
		return 0, 0, "", err
	}
	userID, err = parseID(args[1], "user")
	if err != nil {
		return 0, 0, "", err
	}
	role = domain.Role(args[2])
	if !role.IsValid() {
		return 0, 0, "", fmt.Errorf("invalid role %q (want admin or viewer)", args[2])
	}
	return accountID, userID, role, nil
}

func parseID(raw, what string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, raw)
	}
	return id, nil
}
