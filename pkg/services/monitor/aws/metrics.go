package aws

import (
	"context"
	"slices"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/de-tools/cloud-monitor/pkg/models/domain"
	"github.com/samber/lo"
)

const (
	MetricsLookback = time.Hour
	metricsPeriod   = 300

	ec2Namespace = "AWS/EC2"
)

// MetricDataGetter is the subset of the CloudWatch client used for metrics.
type MetricDataGetter interface {
	GetMetricData(
		ctx context.Context,
		params *cloudwatch.GetMetricDataInput,
		optFns ...func(*cloudwatch.Options),
	) (*cloudwatch.GetMetricDataOutput, error)
}

type metricQuery struct {
	id        string
	name      string
	statistic string
	unit      string
}

var metricQueries = []metricQuery{
	{id: "cpu", name: "CPUUtilization", statistic: "Average", unit: "Percent"},
	{id: "networkIn", name: "NetworkIn", statistic: "Sum", unit: "Bytes"},
	{id: "networkOut", name: "NetworkOut", statistic: "Sum", unit: "Bytes"},
	{id: "diskRead", name: "DiskReadBytes", statistic: "Sum", unit: "Bytes"},
	{id: "diskWrite", name: "DiskWriteBytes", statistic: "Sum", unit: "Bytes"},
	{id: "statusChecks", name: "StatusCheckFailed", statistic: "Maximum", unit: "Count"},
}

func (p *Provider) FetchMetrics(ctx context.Context) (*domain.MetricsSnapshot, error) {
	end := p.clock.Now().UTC()
	start := end.Add(-MetricsLookback)

	input := &cloudwatch.GetMetricDataInput{
		StartTime:         awssdk.Time(start),
		EndTime:           awssdk.Time(end),
		ScanBy:            types.ScanByTimestampAscending,
		MetricDataQueries: p.metricDataQueries(),
	}

	var results []types.MetricDataResult
	for {
		out, err := p.cloudwatch.GetMetricData(ctx, input)
		if err != nil {
			return nil, wrapSDKError("get metric data", err)
		}
		results = mergeResults(results, out.MetricDataResults)

		if awssdk.ToString(out.NextToken) == "" {
			break
		}
		input.NextToken = out.NextToken
	}
	if results == nil {
		results = []types.MetricDataResult{}
	}

	return &domain.MetricsSnapshot{
		Provider: domain.ProviderAWSEC2,
		Start:    start,
		End:      end,
		Native:   results,
		Series:   normalizeMetrics(results),
	}, nil
}

func (p *Provider) metricDataQueries() []types.MetricDataQuery {
	queries := make([]types.MetricDataQuery, 0, len(metricQueries))
	for _, q := range metricQueries {
		queries = append(queries, types.MetricDataQuery{
			Id: awssdk.String(q.id),
			MetricStat: &types.MetricStat{
				Metric: &types.Metric{
					Namespace:  awssdk.String(ec2Namespace),
					MetricName: awssdk.String(q.name),
					Dimensions: []types.Dimension{
						{Name: awssdk.String("InstanceId"), Value: awssdk.String(p.settings.InstanceID)},
					},
				},
				Period: awssdk.Int32(metricsPeriod),
				Stat:   awssdk.String(q.statistic),
			},
			ReturnData: awssdk.Bool(true),
		})
	}
	return queries
}

// mergeResults appends a page, joining partial results that share an id.
func mergeResults(acc, page []types.MetricDataResult) []types.MetricDataResult {
	for _, r := range page {
		_, i, found := lo.FindIndexOf(acc, func(existing types.MetricDataResult) bool {
			return awssdk.ToString(existing.Id) == awssdk.ToString(r.Id)
		})
		if !found {
			acc = append(acc, r)
			continue
		}
		acc[i].Timestamps = append(acc[i].Timestamps, r.Timestamps...)
		acc[i].Values = append(acc[i].Values, r.Values...)
		acc[i].StatusCode = r.StatusCode
	}
	return acc
}

func normalizeMetrics(results []types.MetricDataResult) []domain.MetricSeries {
	series := make([]domain.MetricSeries, 0, len(results))
	for _, r := range results {
		id := awssdk.ToString(r.Id)
		s := domain.MetricSeries{
			Name:   id,
			Label:  awssdk.ToString(r.Label),
			Points: make([]domain.MetricPoint, 0, len(r.Values)),
		}
		if q, ok := lo.Find(metricQueries, func(q metricQuery) bool { return q.id == id }); ok {
			s.Statistic = q.statistic
			s.Unit = q.unit
		}

		n := min(len(r.Timestamps), len(r.Values))
		for i := 0; i < n; i++ {
			s.Points = append(s.Points, domain.MetricPoint{Timestamp: r.Timestamps[i].UTC(), Value: r.Values[i]})
		}
		slices.SortStableFunc(s.Points, func(a, b domain.MetricPoint) int {
			return a.Timestamp.Compare(b.Timestamp)
		})
		series = append(series, s)
	}
	return series
}
