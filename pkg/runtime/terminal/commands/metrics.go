package commands

import (
	"context"
	"fmt"

	"github.com/de-tools/cloud-monitor/pkg/runtime/terminal/export"
	"github.com/spf13/cobra"
)

type MetricsCmd struct {
	provider string
}

func NewMetricsCmd(factory MonitorFactory, opts *GlobalOptions) *cobra.Command {
	mc := &MetricsCmd{}
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Show recent metrics for one provider",
		Args:  cobra.NoArgs,
		RunE:  runWithMonitor(factory, opts, mc.run),
	}

	cmd.Flags().StringVar(&mc.provider, "provider", "", "Provider key (azure or aws)")
	_ = cmd.MarkFlagRequired("provider")

	return cmd
}

func (mc *MetricsCmd) run(ctx context.Context, m Monitor, reporter *export.Reporter) error {
	snapshot, err := m.Metrics(ctx, mc.provider)
	if err != nil {
		return fmt.Errorf("failed to fetch %s metrics: %w", mc.provider, err)
	}
	return reporter.HandleMetrics(snapshot)
}
