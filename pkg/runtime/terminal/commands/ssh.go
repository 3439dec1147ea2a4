package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

type SSHConfigCmd struct {
	account string
	timeout time.Duration
	open    Opener
}

func NewSSHConfigCmd(open Opener) *cobra.Command {
	sc := &SSHConfigCmd{open: open}
	cmd := &cobra.Command{
		Use:   "ssh-config",
		Short: "Refresh and print an ssh_config fragment for running instances",
		RunE:  sc.run,
	}

	cmd.Flags().StringVar(&sc.account, "account", "", "Only include instances of this account")
	cmd.Flags().DurationVar(&sc.timeout, "timeout", 10*time.Minute, "Maximum duration of the refresh cycle")

	return cmd
}

func (sc *SSHConfigCmd) run(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), sc.timeout)
	defer cancel()

	return withSession(ctx, sc.open, func(session *Session) error {
		if err := session.Inventory.RunCycle(ctx); err != nil {
			return fmt.Errorf("refresh failed: %w", err)
		}

		config, err := session.Inventory.View().SSHConfig(sc.account)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), config)
		return err
	})
}
