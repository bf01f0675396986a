package azure

import (
	"context"

	"github.com/de-tools/cloud-monitor/pkg/models/domain"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

func (p *Provider) CheckStatus(ctx context.Context) domain.ServiceStatus {
	logger := zerolog.Ctx(ctx)

	var (
		site    *StaticSite
		metrics *domain.MetricsSnapshot
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		site, err = p.resources.GetStaticSite(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		metrics, err = p.FetchMetrics(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Str("provider", string(domain.ProviderAzure)).Msg("Azure status check failed")
		return domain.NewFailedStatus(p.Descriptor(), err, p.clock.Now().UTC())
	}

	status := site.Properties.ProvisioningState
	if status == "" {
		status = domain.StatusUnknown
	}
	hostname := site.Properties.DefaultHostname
	if hostname == "" {
		hostname = domain.URLUnavailable
	}

	return domain.ServiceStatus{
		ID:          domain.ProviderAzure,
		Name:        p.Descriptor().Name,
		Status:      status,
		URL:         hostname,
		Metrics:     metrics.Native,
		Series:      metrics.Series,
		LastUpdated: p.clock.Now().UTC(),
	}
}
