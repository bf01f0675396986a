package azure

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/costmanagement/armcostmanagement"
	"github.com/de-tools/cloud-monitor/pkg/models/domain"
)

const billedResourceType = "microsoft.web/staticsites"

// CostQuerier is the subset of armcostmanagement.QueryClient used for billing.
type CostQuerier interface {
	Usage(
		ctx context.Context,
		scope string,
		parameters armcostmanagement.QueryDefinition,
		options *armcostmanagement.QueryClientUsageOptions,
	) (armcostmanagement.QueryClientUsageResponse, error)
}

func (p *Provider) FetchBilling(ctx context.Context) (float64, error) {
	now := p.clock.Now().UTC()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	result, err := p.costs.Usage(ctx, p.settings.subscriptionScope(), monthToDateQuery(from, now), nil)
	if err != nil {
		return 0, wrapSDKError("query cost", err)
	}

	if result.Properties == nil || len(result.Properties.Rows) == 0 || len(result.Properties.Rows[0]) == 0 {
		return 0, nil
	}

	amount, err := toFloat(result.Properties.Rows[0][0])
	if err != nil {
		return 0, &domain.UpstreamError{Provider: domain.ProviderAzure, Operation: "query cost", Err: err}
	}
	return amount, nil
}

func monthToDateQuery(from, until time.Time) armcostmanagement.QueryDefinition {
	return armcostmanagement.QueryDefinition{
		Type:      to.Ptr(armcostmanagement.ExportTypeActualCost),
		Timeframe: to.Ptr(armcostmanagement.TimeframeTypeCustom),
		TimePeriod: &armcostmanagement.QueryTimePeriod{
			From: to.Ptr(from),
			To:   to.Ptr(until),
		},
		Dataset: &armcostmanagement.QueryDataset{
			Aggregation: map[string]*armcostmanagement.QueryAggregation{
				"totalCost": {
					Name:     to.Ptr("PreTaxCost"),
					Function: to.Ptr(armcostmanagement.FunctionTypeSum),
				},
			},
			Filter: &armcostmanagement.QueryFilter{
				Dimensions: &armcostmanagement.QueryComparisonExpression{
					Name:     to.Ptr("ResourceType"),
					Operator: to.Ptr(armcostmanagement.QueryOperatorTypeIn),
					Values:   []*string{to.Ptr(billedResourceType)},
				},
			},
		},
	}
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case string:
		return strconv.ParseFloat(n, 64)
	default:
		return 0, fmt.Errorf("unexpected cost value %v (%T)", v, v)
	}
}

func wrapSDKError(op string, err error) error {
	var authErr *domain.AuthError
	if errors.As(err, &authErr) {
		return authErr
	}

	upstream := &domain.UpstreamError{Provider: domain.ProviderAzure, Operation: op, Err: err}
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		upstream.StatusCode = respErr.StatusCode
		upstream.Code = respErr.ErrorCode
	}
	return upstream
}
