package aws

import (
	"context"
	"fmt"
	"strconv"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/de-tools/cloud-monitor/pkg/models/domain"
)

const (
	ec2ServiceName = "Amazon Elastic Compute Cloud - Compute"
	costMetric     = "UnblendedCost"
	dateLayout     = "2006-01-02"
)

// CostGetter is the subset of the Cost Explorer client used for billing.
type CostGetter interface {
	GetCostAndUsage(
		ctx context.Context,
		params *costexplorer.GetCostAndUsageInput,
		optFns ...func(*costexplorer.Options),
	) (*costexplorer.GetCostAndUsageOutput, error)
}

func (p *Provider) FetchBilling(ctx context.Context) (float64, error) {
	result, err := p.costs.GetCostAndUsage(ctx, monthToDateInput(p.clock.Now().UTC()))
	if err != nil {
		return 0, wrapSDKError("get cost and usage", err)
	}

	var total float64
	for _, r := range result.ResultsByTime {
		metric, ok := r.Total[costMetric]
		if !ok || metric.Amount == nil {
			continue
		}
		amount, err := strconv.ParseFloat(*metric.Amount, 64)
		if err != nil {
			return 0, &domain.UpstreamError{
				Provider:  domain.ProviderAWSEC2,
				Operation: "get cost and usage",
				Err:       fmt.Errorf("invalid cost amount %q: %w", *metric.Amount, err),
			}
		}
		total += amount
	}
	return total, nil
}

// monthToDateInput covers [first of month, tomorrow). End is exclusive, and
// Cost Explorer rejects Start == End, which would happen on the 1st.
func monthToDateInput(now time.Time) *costexplorer.GetCostAndUsageInput {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)

	return &costexplorer.GetCostAndUsageInput{
		TimePeriod: &types.DateInterval{
			Start: awssdk.String(start.Format(dateLayout)),
			End:   awssdk.String(end.Format(dateLayout)),
		},
		Granularity: types.GranularityMonthly,
		Metrics:     []string{costMetric},
		Filter: &types.Expression{
			Dimensions: &types.DimensionValues{
				Key:    types.DimensionService,
				Values: []string{ec2ServiceName},
			},
		},
	}
}
