package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

type AccountsCmd struct {
	open Opener
}

func NewAccountsCmd(open Opener) *cobra.Command {
	ac := &AccountsCmd{open: open}
	return &cobra.Command{
		Use:   "accounts",
		Short: "List the accounts found in the credentials file",
		RunE:  ac.run,
	}
}

func (ac *AccountsCmd) run(cmd *cobra.Command, _ []string) error {
	return withSession(cmd.Context(), ac.open, func(session *Session) error {
		if len(session.Accounts) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No accounts configured")
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Configured accounts:\n%s\n", strings.Join(session.Accounts, "\n"))
		return nil
	})
}
