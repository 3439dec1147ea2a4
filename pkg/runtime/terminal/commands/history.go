package commands

import (
	"fmt"

	"github.com/de-tools/fleet-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/fleet-atlas/pkg/services/history"
	"github.com/spf13/cobra"
)

type HistoryCmd struct {
	format   string
	open     Opener
	reporter *export.Reporter
}

func NewHistoryCmd(open Opener, reporter *export.Reporter) *cobra.Command {
	hc := &HistoryCmd{open: open, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the recorded refresh summaries",
		RunE:  hc.run,
	}

	cmd.Flags().StringVar(&hc.format, "format", "table", "Output format (table or csv)")

	return cmd
}

func (hc *HistoryCmd) run(cmd *cobra.Command, _ []string) error {
	if hc.format != "table" && hc.format != "csv" {
		return fmt.Errorf("unsupported format %q, expected table or csv", hc.format)
	}

	ctx := cmd.Context()
	return withSession(ctx, hc.open, func(session *Session) error {
		summaries, err := session.Inventory.History(ctx)
		if err != nil {
			return fmt.Errorf("failed to load history: %w", err)
		}

		if hc.format == "csv" {
			return history.WriteCSV(cmd.OutOrStdout(), summaries)
		}
		return hc.reporter.History(summaries)
	})
}
