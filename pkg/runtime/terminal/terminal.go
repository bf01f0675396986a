package terminal

import (
	"io"
	"os"
	"time"

	"github.com/de-tools/cloud-monitor/pkg/runtime/terminal/commands"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	factory commands.MonitorFactory
	output  io.Writer
	options *commands.GlobalOptions
	rootCmd *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Factory commands.MonitorFactory
	Output  io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	cli := &CLI{
		factory: opts.Factory,
		output:  opts.Output,
		options: &commands.GlobalOptions{},
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

func (cli *CLI) SetArgs(args []string) {
	cli.rootCmd.SetArgs(args)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "cloudmon",
		Short:         "Status, metrics and billing for the monitored cloud deployments",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(cli.output)

	flags := cmd.PersistentFlags()
	flags.StringVarP(&cli.options.ConfigFile, "config", "c", "", "Path to an optional YAML config file")
	flags.StringVar(&cli.options.AzureProfilePath, "azure-profile", "", "Path to an Azure config file (e.g. ~/.azure/config)")
	flags.StringVar(&cli.options.AzureProfile, "profile", "", "Section of the Azure config file to use")
	flags.StringVarP(&cli.options.Output, "output", "o", "table", "Output format: table or json")
	flags.DurationVar(&cli.options.Timeout, "timeout", 60*time.Second, "Overall command timeout")

	cmd.AddCommand(commands.NewStatusCmd(cli.factory, cli.options))
	cmd.AddCommand(commands.NewBillingCmd(cli.factory, cli.options))
	cmd.AddCommand(commands.NewMetricsCmd(cli.factory, cli.options))

	return cmd
}
