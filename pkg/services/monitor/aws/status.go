package aws

import (
	"context"
	"fmt"
	"strings"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/de-tools/cloud-monitor/pkg/models/domain"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// InstanceStatusDescriber is the subset of the EC2 client used for status checks.
type InstanceStatusDescriber interface {
	DescribeInstanceStatus(
		ctx context.Context,
		params *ec2.DescribeInstanceStatusInput,
		optFns ...func(*ec2.Options),
	) (*ec2.DescribeInstanceStatusOutput, error)
}

func (p *Provider) CheckStatus(ctx context.Context) domain.ServiceStatus {
	logger := zerolog.Ctx(ctx)

	var (
		state   string
		metrics *domain.MetricsSnapshot
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		state, err = p.instanceState(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		metrics, err = p.FetchMetrics(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Str("provider", string(domain.ProviderAWSEC2)).Msg("AWS status check failed")
		return domain.NewFailedStatus(p.Descriptor(), err, p.clock.Now().UTC())
	}

	return domain.ServiceStatus{
		ID:          domain.ProviderAWSEC2,
		Name:        p.Descriptor().Name,
		Status:      state,
		URL:         p.publicURL(),
		Metrics:     metrics.Native,
		Series:      metrics.Series,
		LastUpdated: p.clock.Now().UTC(),
	}
}

func (p *Provider) instanceState(ctx context.Context) (string, error) {
	out, err := p.ec2.DescribeInstanceStatus(ctx, &ec2.DescribeInstanceStatusInput{
		InstanceIds:         []string{p.settings.InstanceID},
		IncludeAllInstances: awssdk.Bool(true),
	})
	if err != nil {
		return "", wrapSDKError("describe instance status", err)
	}

	if len(out.InstanceStatuses) == 0 {
		return "", &domain.UpstreamError{
			Provider:  domain.ProviderAWSEC2,
			Operation: "describe instance status",
			Message:   fmt.Sprintf("no instance found: %s", p.settings.InstanceID),
		}
	}

	state := out.InstanceStatuses[0].InstanceState
	if state == nil || state.Name == "" {
		return domain.StatusUnknown, nil
	}
	return strings.ToUpper(string(state.Name)), nil
}

func (p *Provider) publicURL() string {
	switch {
	case p.settings.PublicDNS != "":
		return p.settings.PublicDNS
	case p.settings.PublicIP != "":
		return fmt.Sprintf("http://%s:%d", p.settings.PublicIP, BackendPort)
	default:
		return domain.URLUnavailable
	}
}
