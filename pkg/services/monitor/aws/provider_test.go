package aws

import (
	"context"
	"errors"
	"testing"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	cetypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"
	"github.com/de-tools/cloud-monitor/pkg/models/domain"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

var testSettings = Settings{InstanceID: "i-0abc"}

func statusOutput(state ec2types.InstanceStateName) *ec2.DescribeInstanceStatusOutput {
	return &ec2.DescribeInstanceStatusOutput{
		InstanceStatuses: []ec2types.InstanceStatus{
			{InstanceId: awssdk.String("i-0abc"), InstanceState: &ec2types.InstanceState{Name: state}},
		},
	}
}

func metricOutput() *cloudwatch.GetMetricDataOutput {
	return &cloudwatch.GetMetricDataOutput{
		MetricDataResults: []cwtypes.MetricDataResult{
			{
				Id:         awssdk.String("cpu"),
				Label:      awssdk.String("CPUUtilization"),
				Timestamps: []time.Time{now.Add(-5 * time.Minute), now.Add(-10 * time.Minute)},
				Values:     []float64{12.5, 10},
				StatusCode: cwtypes.StatusCodeComplete,
			},
		},
	}
}

func TestProvider_CheckStatus(t *testing.T) {
	tests := []struct {
		name       string
		settings   Settings
		output     *ec2.DescribeInstanceStatusOutput
		err        error
		wantStatus string
		wantURL    string
		wantError  string
	}{
		{
			name:       "running with public DNS",
			settings:   Settings{InstanceID: "i-0abc", PublicDNS: "ec2-1-2-3-4.compute.amazonaws.com", PublicIP: "1.2.3.4"},
			output:     statusOutput(ec2types.InstanceStateNameRunning),
			wantStatus: "RUNNING",
			wantURL:    "ec2-1-2-3-4.compute.amazonaws.com",
		},
		{
			name:       "stopped with public IP only",
			settings:   Settings{InstanceID: "i-0abc", PublicIP: "1.2.3.4"},
			output:     statusOutput(ec2types.InstanceStateNameStopped),
			wantStatus: "STOPPED",
			wantURL:    "http://1.2.3.4:5000",
		},
		{
			name:       "no public endpoint",
			settings:   testSettings,
			output:     statusOutput(ec2types.InstanceStateNamePending),
			wantStatus: "PENDING",
			wantURL:    domain.URLUnavailable,
		},
		{
			name:     "missing state",
			settings: testSettings,
			output: &ec2.DescribeInstanceStatusOutput{
				InstanceStatuses: []ec2types.InstanceStatus{{InstanceId: awssdk.String("i-0abc")}},
			},
			wantStatus: domain.StatusUnknown,
			wantURL:    domain.URLUnavailable,
		},
		{
			name:       "empty result set",
			settings:   testSettings,
			output:     &ec2.DescribeInstanceStatusOutput{},
			wantStatus: domain.StatusError,
			wantURL:    domain.URLUnavailable,
			wantError:  "no instance found: i-0abc",
		},
		{
			name:       "API failure",
			settings:   Settings{InstanceID: "i-0abc", PublicDNS: "ignored.example.com"},
			err:        &smithy.GenericAPIError{Code: "UnauthorizedOperation", Message: "You are not authorized"},
			wantStatus: domain.StatusError,
			wantURL:    domain.URLUnavailable,
			wantError:  "You are not authorized",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ec2Client := new(mockEC2)
			ec2Client.On("DescribeInstanceStatus", mock.Anything, mock.MatchedBy(func(in *ec2.DescribeInstanceStatusInput) bool {
				return len(in.InstanceIds) == 1 && in.InstanceIds[0] == "i-0abc" && awssdk.ToBool(in.IncludeAllInstances)
			})).Return(tt.output, tt.err)

			cw := new(mockCloudWatch)
			cw.On("GetMetricData", mock.Anything, "").Return(metricOutput(), nil).Maybe()

			p := newProvider(ec2Client, cw, new(mockCostExplorer), tt.settings, clockwork.NewFakeClockAt(now))
			status := p.CheckStatus(context.Background())

			assert.Equal(t, domain.ProviderAWSEC2, status.ID)
			assert.Equal(t, "AWS EC2 Backend", status.Name)
			assert.Equal(t, tt.wantStatus, status.Status)
			assert.Equal(t, tt.wantURL, status.URL)
			assert.Equal(t, tt.wantError, status.Error)
			assert.Equal(t, now, status.LastUpdated)
			ec2Client.AssertExpectations(t)
		})
	}
}

func TestProvider_CheckStatusMetricsFailure(t *testing.T) {
	ec2Client := new(mockEC2)
	ec2Client.On("DescribeInstanceStatus", mock.Anything, mock.Anything).
		Return(statusOutput(ec2types.InstanceStateNameRunning), nil).Maybe()
	cw := new(mockCloudWatch)
	cw.On("GetMetricData", mock.Anything, "").Return(nil, errors.New("throttled"))

	p := newProvider(ec2Client, cw, new(mockCostExplorer), testSettings, clockwork.NewFakeClockAt(now))
	status := p.CheckStatus(context.Background())

	assert.Equal(t, domain.StatusError, status.Status)
	assert.Contains(t, status.Error, "throttled")
	assert.Nil(t, status.Metrics)
}

func TestProvider_FetchMetrics(t *testing.T) {
	cw := new(mockCloudWatch)
	cw.On("GetMetricData", mock.Anything, "").Return(metricOutput(), nil)

	p := newProvider(new(mockEC2), cw, new(mockCostExplorer), testSettings, clockwork.NewFakeClockAt(now))
	snapshot, err := p.FetchMetrics(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.ProviderAWSEC2, snapshot.Provider)
	assert.Equal(t, now.Add(-time.Hour), snapshot.Start)
	assert.Equal(t, now, snapshot.End)
	assert.Equal(t, metricOutput().MetricDataResults, snapshot.Native)

	require.Len(t, snapshot.Series, 1)
	cpu := snapshot.Series[0]
	assert.Equal(t, "cpu", cpu.Name)
	assert.Equal(t, "CPUUtilization", cpu.Label)
	assert.Equal(t, "Average", cpu.Statistic)
	assert.Equal(t, "Percent", cpu.Unit)
	assert.Equal(t, []domain.MetricPoint{
		{Timestamp: now.Add(-10 * time.Minute), Value: 10},
		{Timestamp: now.Add(-5 * time.Minute), Value: 12.5},
	}, cpu.Points)
}

func TestProvider_FetchMetricsFollowsPages(t *testing.T) {
	cw := new(mockCloudWatch)
	first := metricOutput()
	first.NextToken = awssdk.String("page-2")
	cw.On("GetMetricData", mock.Anything, "").Return(first, nil).Once()
	cw.On("GetMetricData", mock.Anything, "page-2").Return(&cloudwatch.GetMetricDataOutput{
		MetricDataResults: []cwtypes.MetricDataResult{
			{Id: awssdk.String("cpu"), Timestamps: []time.Time{now.Add(-15 * time.Minute)}, Values: []float64{8}},
			{Id: awssdk.String("networkIn"), Timestamps: []time.Time{now.Add(-5 * time.Minute)}, Values: []float64{2048}},
		},
	}, nil).Once()

	p := newProvider(new(mockEC2), cw, new(mockCostExplorer), testSettings, clockwork.NewFakeClockAt(now))
	snapshot, err := p.FetchMetrics(context.Background())
	require.NoError(t, err)
	cw.AssertExpectations(t)

	require.Len(t, snapshot.Series, 2)
	cpu := snapshot.Series[0]
	require.Len(t, cpu.Points, 3)
	assert.Equal(t, 8.0, cpu.Points[0].Value)
	assert.Equal(t, "networkIn", snapshot.Series[1].Name)
	assert.Equal(t, "Sum", snapshot.Series[1].Statistic)
}

func TestProvider_FetchMetricsError(t *testing.T) {
	cw := new(mockCloudWatch)
	cw.On("GetMetricData", mock.Anything, "").
		Return(nil, &smithy.GenericAPIError{Code: "AccessDenied", Message: "not allowed"})

	p := newProvider(new(mockEC2), cw, new(mockCostExplorer), testSettings, clockwork.NewFakeClockAt(now))
	_, err := p.FetchMetrics(context.Background())

	var upstream *domain.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "AccessDenied", upstream.Code)
	assert.Equal(t, "not allowed", upstream.Message)
}

func TestMetricDataQueries(t *testing.T) {
	p := newProvider(nil, nil, nil, testSettings, clockwork.NewFakeClockAt(now))
	queries := p.metricDataQueries()

	require.Len(t, queries, 6)
	want := map[string][2]string{
		"cpu":          {"CPUUtilization", "Average"},
		"networkIn":    {"NetworkIn", "Sum"},
		"networkOut":   {"NetworkOut", "Sum"},
		"diskRead":     {"DiskReadBytes", "Sum"},
		"diskWrite":    {"DiskWriteBytes", "Sum"},
		"statusChecks": {"StatusCheckFailed", "Maximum"},
	}
	for _, q := range queries {
		expected, ok := want[*q.Id]
		require.True(t, ok, *q.Id)
		assert.Equal(t, expected[0], *q.MetricStat.Metric.MetricName)
		assert.Equal(t, expected[1], *q.MetricStat.Stat)
		assert.Equal(t, "AWS/EC2", *q.MetricStat.Metric.Namespace)
		assert.EqualValues(t, 300, *q.MetricStat.Period)
		assert.Equal(t, "i-0abc", *q.MetricStat.Metric.Dimensions[0].Value)
	}
}

func costOutput(amounts ...string) *costexplorer.GetCostAndUsageOutput {
	out := &costexplorer.GetCostAndUsageOutput{}
	for _, a := range amounts {
		out.ResultsByTime = append(out.ResultsByTime, cetypes.ResultByTime{
			Total: map[string]cetypes.MetricValue{
				"UnblendedCost": {Amount: awssdk.String(a), Unit: awssdk.String("USD")},
			},
		})
	}
	return out
}

func TestProvider_FetchBilling(t *testing.T) {
	tests := []struct {
		name    string
		output  *costexplorer.GetCostAndUsageOutput
		err     error
		want    float64
		wantErr bool
	}{
		{name: "single month", output: costOutput("42.1234"), want: 42.1234},
		{name: "no results", output: costOutput(), want: 0},
		{name: "invalid amount", output: costOutput("n/a"), wantErr: true},
		{name: "API failure", err: errors.New("expired token"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ce := new(mockCostExplorer)
			ce.On("GetCostAndUsage", mock.Anything, mock.Anything).Return(tt.output, tt.err)

			p := newProvider(new(mockEC2), new(mockCloudWatch), ce, testSettings, clockwork.NewFakeClockAt(now))
			got, err := p.FetchBilling(context.Background())

			if tt.wantErr {
				var upstream *domain.UpstreamError
				require.ErrorAs(t, err, &upstream)
				assert.Equal(t, domain.ProviderAWSEC2, upstream.Provider)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMonthToDateInput(t *testing.T) {
	tests := []struct {
		name      string
		now       time.Time
		wantStart string
		wantEnd   string
	}{
		{name: "mid month", now: now, wantStart: "2025-06-01", wantEnd: "2025-06-16"},
		{name: "first of month", now: time.Date(2025, 6, 1, 0, 5, 0, 0, time.UTC), wantStart: "2025-06-01", wantEnd: "2025-06-02"},
		{name: "last of month", now: time.Date(2025, 6, 30, 23, 0, 0, 0, time.UTC), wantStart: "2025-06-01", wantEnd: "2025-07-01"},
		{name: "year end", now: time.Date(2025, 12, 31, 8, 0, 0, 0, time.UTC), wantStart: "2025-12-01", wantEnd: "2026-01-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := monthToDateInput(tt.now)

			assert.Equal(t, tt.wantStart, *in.TimePeriod.Start)
			assert.Equal(t, tt.wantEnd, *in.TimePeriod.End)
			assert.Equal(t, cetypes.GranularityMonthly, in.Granularity)
			assert.Equal(t, []string{"UnblendedCost"}, in.Metrics)
			assert.Equal(t, cetypes.DimensionService, in.Filter.Dimensions.Key)
			assert.Equal(t, []string{"Amazon Elastic Compute Cloud - Compute"}, in.Filter.Dimensions.Values)
		})
	}
}
