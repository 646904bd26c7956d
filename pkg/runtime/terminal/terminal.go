package terminal

import (
	"io"
	"os"

	"github.com/de-tools/billing-atlas/pkg/runtime/terminal/commands"
	"github.com/de-tools/billing-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/billing-atlas/pkg/services/analytics"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	analytics *analytics.Controller
	reporter  *export.Reporter
	rootCmd   *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Analytics *analytics.Controller
	Output    io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	cli := &CLI{
		analytics: opts.Analytics,
		reporter:  export.NewReporter(opts.Output),
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "billing",
		Short: "Weekly billing and conversion funnel analysis tool",
	}

	cmd.AddCommand(commands.NewAnalyzeCmd(cli.analytics, cli.reporter))
	cmd.AddCommand(commands.NewFunnelCmd(cli.analytics, cli.reporter))
	cmd.AddCommand(commands.NewExportCmd(cli.analytics))

	return cmd
}
