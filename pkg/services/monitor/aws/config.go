package aws

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
)

const (
	DefaultRegion = "us-east-1"
	// CostExplorerRegion is the only region serving the Cost Explorer API.
	CostExplorerRegion = "us-east-1"
)

// LoadConfig resolves credentials from the default chain. An empty region
// falls back to the shared config and then DefaultRegion. SDK retries are
// off: a failed call is reported on the first attempt.
func LoadConfig(ctx context.Context, region string) (awssdk.Config, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithDefaultRegion(DefaultRegion),
		config.WithRetryer(func() awssdk.Retryer { return awssdk.NopRetryer{} }),
	}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return awssdk.Config{}, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}
	return cfg, nil
}
