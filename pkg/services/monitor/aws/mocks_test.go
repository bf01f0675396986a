package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/stretchr/testify/mock"
)

type mockEC2 struct {
	mock.Mock
}

func (m *mockEC2) DescribeInstanceStatus(
	ctx context.Context,
	params *ec2.DescribeInstanceStatusInput,
	_ ...func(*ec2.Options),
) (*ec2.DescribeInstanceStatusOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*ec2.DescribeInstanceStatusOutput)
	return out, args.Error(1)
}

type mockCloudWatch struct {
	mock.Mock
}

func (m *mockCloudWatch) GetMetricData(
	ctx context.Context,
	params *cloudwatch.GetMetricDataInput,
	_ ...func(*cloudwatch.Options),
) (*cloudwatch.GetMetricDataOutput, error) {
	// the input is mutated between pages, record the token seen on this call
	var token string
	if params.NextToken != nil {
		token = *params.NextToken
	}
	args := m.Called(ctx, token)
	out, _ := args.Get(0).(*cloudwatch.GetMetricDataOutput)
	return out, args.Error(1)
}

type mockCostExplorer struct {
	mock.Mock
}

func (m *mockCostExplorer) GetCostAndUsage(
	ctx context.Context,
	params *costexplorer.GetCostAndUsageInput,
	_ ...func(*costexplorer.Options),
) (*costexplorer.GetCostAndUsageOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*costexplorer.GetCostAndUsageOutput)
	return out, args.Error(1)
}
