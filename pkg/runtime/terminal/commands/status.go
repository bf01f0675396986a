package commands

import (
	"context"
	"fmt"

	"github.com/de-tools/cloud-monitor/pkg/runtime/terminal/export"
	"github.com/spf13/cobra"
)

func NewStatusCmd(factory MonitorFactory, opts *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current state of every monitored deployment",
		Args:  cobra.NoArgs,
		RunE: runWithMonitor(factory, opts, func(ctx context.Context, m Monitor, reporter *export.Reporter) error {
			statuses, err := m.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch cloud status: %w", err)
			}
			return reporter.HandleStatus(statuses)
		}),
	}
}
