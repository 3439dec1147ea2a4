package terminal

import (
	"context"
	"io"
	"os"

	"github.com/de-tools/fleet-atlas/pkg/runtime/terminal/commands"
	"github.com/de-tools/fleet-atlas/pkg/runtime/terminal/export"
	"github.com/spf13/cobra"
)

// OpenFunc builds a command session from a configuration file path.
type OpenFunc func(ctx context.Context, configPath string) (*commands.Session, error)

// CLI represents the command-line interface
type CLI struct {
	open       OpenFunc
	configPath string
	reporter   *export.Reporter
	rootCmd    *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Open   OpenFunc
	Output io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	cli := &CLI{
		open:     opts.Open,
		reporter: export.NewReporter(opts.Output),
	}

	cli.rootCmd = cli.newRootCmd()
	cli.rootCmd.SetOut(opts.Output)
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

func (cli *CLI) ExecuteContext(ctx context.Context, args ...string) error {
	if args != nil {
		cli.rootCmd.SetArgs(args)
	}
	return cli.rootCmd.ExecuteContext(ctx)
}

func (cli *CLI) session(ctx context.Context) (*commands.Session, error) {
	return cli.open(ctx, cli.configPath)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "fleet-atlas",
		Short:         "Multi-account AWS inventory and reservation matching",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&cli.configPath, "config", "c", "", "Path to the configuration file")

	cmd.AddCommand(commands.NewRefreshCmd(cli.session, cli.reporter))
	cmd.AddCommand(commands.NewHistoryCmd(cli.session, cli.reporter))
	cmd.AddCommand(commands.NewSSHConfigCmd(cli.session))
	cmd.AddCommand(commands.NewAccountsCmd(cli.session))

	return cmd
}
