package aws

import (
	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/de-tools/cloud-monitor/pkg/models/domain"
	"github.com/jonboulle/clockwork"
)

// BackendPort is where the backend listens when only a public IP is known.
const BackendPort = 5000

var descriptor = domain.ProviderDescriptor{
	ID:     domain.ProviderAWSEC2,
	Key:    "aws",
	Vendor: "AWS",
	Name:   "AWS EC2 Backend",
}

type Settings struct {
	InstanceID string
	PublicDNS  string
	PublicIP   string
}

// Provider monitors one EC2 instance.
type Provider struct {
	ec2        InstanceStatusDescriber
	cloudwatch MetricDataGetter
	costs      CostGetter
	settings   Settings
	clock      clockwork.Clock
}

func NewProvider(cfg awssdk.Config, settings Settings, clock clockwork.Clock) *Provider {
	return newProvider(
		ec2.NewFromConfig(cfg),
		cloudwatch.NewFromConfig(cfg),
		costexplorer.NewFromConfig(cfg, func(o *costexplorer.Options) {
			o.Region = CostExplorerRegion
		}),
		settings,
		clock,
	)
}

func newProvider(
	ec2Client InstanceStatusDescriber,
	cw MetricDataGetter,
	costs CostGetter,
	settings Settings,
	clock clockwork.Clock,
) *Provider {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Provider{
		ec2:        ec2Client,
		cloudwatch: cw,
		costs:      costs,
		settings:   settings,
		clock:      clock,
	}
}

func (p *Provider) Descriptor() domain.ProviderDescriptor {
	return descriptor
}
