package commands

import (
	"context"
	"fmt"

	"github.com/de-tools/cloud-monitor/pkg/runtime/terminal/export"
	"github.com/spf13/cobra"
)

func NewBillingCmd(factory MonitorFactory, opts *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "billing",
		Short: "Show month-to-date cost per provider and the total",
		Args:  cobra.NoArgs,
		RunE: runWithMonitor(factory, opts, func(ctx context.Context, m Monitor, reporter *export.Reporter) error {
			billing, err := m.Billing(ctx)
			if err != nil {
				return fmt.Errorf("billing fetch failed: %w", err)
			}
			return reporter.HandleBilling(billing, m.Providers())
		}),
	}
}
