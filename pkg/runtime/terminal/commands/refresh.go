package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/de-tools/fleet-atlas/pkg/runtime/terminal/export"
	"github.com/spf13/cobra"
)

type RefreshCmd struct {
	timeout  time.Duration
	open     Opener
	reporter *export.Reporter
}

func NewRefreshCmd(open Opener, reporter *export.Reporter) *cobra.Command {
	rc := &RefreshCmd{open: open, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Run one refresh cycle and print the inventory summary",
		RunE:  rc.run,
	}

	cmd.Flags().DurationVar(&rc.timeout, "timeout", 10*time.Minute, "Maximum duration of the refresh cycle")

	return cmd
}

func (rc *RefreshCmd) run(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), rc.timeout)
	defer cancel()

	return withSession(ctx, rc.open, func(session *Session) error {
		if err := session.Inventory.RunCycle(ctx); err != nil {
			return fmt.Errorf("refresh failed: %w", err)
		}
		return rc.reporter.Summary(session.Inventory.View())
	})
}
