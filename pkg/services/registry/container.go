package registry

import (
	"context"
	"fmt"

	"github.com/de-tools/cloud-monitor/pkg/models/domain"
	"github.com/de-tools/cloud-monitor/pkg/services/auth"
	"github.com/de-tools/cloud-monitor/pkg/services/config"
	"github.com/de-tools/cloud-monitor/pkg/services/monitor"
	"github.com/de-tools/cloud-monitor/pkg/services/monitor/aws"
	"github.com/de-tools/cloud-monitor/pkg/services/monitor/azure"
	"github.com/de-tools/cloud-monitor/pkg/telemetry"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// Container owns the process-wide services: the shared Azure token cache,
// the provider adapters and the aggregator in front of them.
type Container struct {
	Tokens     *auth.TokenCache
	Metrics    *telemetry.Metrics
	Aggregator *monitor.Aggregator
}

type Options struct {
	Clock clockwork.Clock
	// Metrics is optional; the CLI runs without collectors.
	Metrics *telemetry.Metrics
}

func NewContainer(ctx context.Context, cfg *config.Config, opts Options) (*Container, error) {
	logger := zerolog.Ctx(ctx)
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	exchanger, err := newExchanger(cfg.Azure)
	if err != nil {
		return nil, err
	}
	tokens := auth.NewTokenCache(domain.ProviderAzure, exchanger, auth.WithClock(clock))

	azureProvider, err := azure.NewProvider(azure.Config{
		Settings: azure.Settings{
			SubscriptionID: cfg.Azure.SubscriptionID,
			ResourceGroup:  cfg.Azure.ResourceGroup,
			StaticSiteName: cfg.Azure.StaticSiteName,
		},
		Credential: tokens,
		Clock:      clock,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure provider: %w", err)
	}

	awsCfg, err := aws.LoadConfig(ctx, cfg.AWS.Region)
	if err != nil {
		return nil, err
	}
	awsProvider := aws.NewProvider(awsCfg, aws.Settings{
		InstanceID: cfg.AWS.InstanceID,
		PublicDNS:  cfg.AWS.PublicDNS,
		PublicIP:   cfg.AWS.PublicIP,
	}, clock)

	monitorCfg := monitor.Config{CallTimeout: cfg.Monitor.CallTimeout, Clock: clock}
	if opts.Metrics != nil {
		monitorCfg.Observer = opts.Metrics
	}
	aggregator, err := monitor.NewAggregator(monitorCfg, azureProvider, awsProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to create aggregator: %w", err)
	}

	for _, p := range aggregator.Providers() {
		logger.Info().Str("provider", string(p.ID)).Msgf("Registered %s", p.Name)
	}

	return &Container{
		Tokens:     tokens,
		Metrics:    opts.Metrics,
		Aggregator: aggregator,
	}, nil
}

func newExchanger(cfg config.AzureConfig) (auth.Exchanger, error) {
	creds := auth.ClientCredentials{
		TenantID:     cfg.TenantID,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
	}
	if cfg.TokenURL != "" {
		return auth.NewOAuth2Exchanger(creds, cfg.TokenURL), nil
	}

	exchanger, err := auth.NewClientSecretExchanger(creds)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}
	return exchanger, nil
}
