package commands

import (
	"context"
	"time"

	"github.com/de-tools/cloud-monitor/pkg/models/domain"
	"github.com/de-tools/cloud-monitor/pkg/runtime/terminal/export"
	"github.com/spf13/cobra"
)

type GlobalOptions struct {
	ConfigFile       string
	AzureProfilePath string
	AzureProfile     string
	Output           string
	Timeout          time.Duration
}

// Monitor is implemented by monitor.Aggregator.
type Monitor interface {
	Providers() []domain.ProviderDescriptor
	Status(ctx context.Context) ([]domain.ServiceStatus, error)
	Metrics(ctx context.Context, key string) (*domain.MetricsSnapshot, error)
	Billing(ctx context.Context) (domain.BillingSnapshot, error)
}

// MonitorFactory builds the monitor once the global flags are parsed.
type MonitorFactory func(ctx context.Context, opts GlobalOptions) (Monitor, error)

type runner func(ctx context.Context, m Monitor, reporter *export.Reporter) error

func runWithMonitor(factory MonitorFactory, opts *GlobalOptions, run runner) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		reporter, err := export.NewReporter(cmd.OutOrStdout(), opts.Output)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), opts.Timeout)
		defer cancel()

		m, err := factory(ctx, *opts)
		if err != nil {
			return err
		}
		return run(ctx, m, reporter)
	}
}
