package azure

import (
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/costmanagement/armcostmanagement"
	"github.com/de-tools/cloud-monitor/pkg/models/domain"
	"github.com/jonboulle/clockwork"
)

var descriptor = domain.ProviderDescriptor{
	ID:     domain.ProviderAzure,
	Key:    "azure",
	Vendor: "Azure",
	Name:   "Azure Static Web App",
}

type Config struct {
	Settings
	// Credential is normally the shared auth.TokenCache.
	Credential    azcore.TokenCredential
	ClientOptions *arm.ClientOptions
	Clock         clockwork.Clock
}

// Provider monitors one Azure Static Web App.
type Provider struct {
	resources ResourceReader
	costs     CostQuerier
	settings  Settings
	clock     clockwork.Clock
}

func NewProvider(cfg Config) (*Provider, error) {
	resources, err := NewResourceClient(cfg.Credential, cfg.Settings, cfg.ClientOptions)
	if err != nil {
		return nil, err
	}

	factory, err := armcostmanagement.NewClientFactory(cfg.Credential, withoutRetries(cfg.ClientOptions))
	if err != nil {
		return nil, fmt.Errorf("failed to create cost management client factory: %w", err)
	}

	return newProvider(resources, factory.NewQueryClient(), cfg.Settings, cfg.Clock), nil
}

func newProvider(resources ResourceReader, costs CostQuerier, settings Settings, clock clockwork.Clock) *Provider {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Provider{
		resources: resources,
		costs:     costs,
		settings:  settings,
		clock:     clock,
	}
}

func (p *Provider) Descriptor() domain.ProviderDescriptor {
	return descriptor
}
