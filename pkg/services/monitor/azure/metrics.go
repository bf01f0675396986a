package azure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/de-tools/cloud-monitor/pkg/models/domain"
)

// MetricsLookback is the window requested from Azure Monitor.
const MetricsLookback = 24 * time.Hour

type metricName struct {
	Value          string `json:"value"`
	LocalizedValue string `json:"localizedValue"`
}

type metricValue struct {
	TimeStamp time.Time `json:"timeStamp"`
	Total     *float64  `json:"total"`
	Average   *float64  `json:"average"`
	Maximum   *float64  `json:"maximum"`
	Minimum   *float64  `json:"minimum"`
	Count     *float64  `json:"count"`
}

type metric struct {
	Name       metricName `json:"name"`
	Unit       string     `json:"unit"`
	Timeseries []struct {
		Data []metricValue `json:"data"`
	} `json:"timeseries"`
}

func (p *Provider) FetchMetrics(ctx context.Context) (*domain.MetricsSnapshot, error) {
	end := p.clock.Now().UTC()
	start := end.Add(-MetricsLookback)

	native, err := p.resources.ListMetrics(ctx, start, end)
	if err != nil {
		return nil, err
	}

	series, err := normalizeMetrics(native)
	if err != nil {
		return nil, &domain.UpstreamError{Provider: domain.ProviderAzure, Operation: "list metrics", Err: err}
	}

	return &domain.MetricsSnapshot{
		Provider: domain.ProviderAzure,
		Start:    start,
		End:      end,
		Native:   native,
		Series:   series,
	}, nil
}

func normalizeMetrics(native []json.RawMessage) ([]domain.MetricSeries, error) {
	series := make([]domain.MetricSeries, 0, len(native))
	for _, raw := range native {
		var m metric
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("failed to decode metric: %w", err)
		}
		series = append(series, toSeries(m))
	}
	return series, nil
}

// aggregations in order of preference; Azure only fills the one requested
// or the metric's primary aggregation.
var aggregations = []struct {
	name  string
	value func(metricValue) *float64
}{
	{"Total", func(v metricValue) *float64 { return v.Total }},
	{"Average", func(v metricValue) *float64 { return v.Average }},
	{"Maximum", func(v metricValue) *float64 { return v.Maximum }},
	{"Minimum", func(v metricValue) *float64 { return v.Minimum }},
	{"Count", func(v metricValue) *float64 { return v.Count }},
}

func toSeries(m metric) domain.MetricSeries {
	s := domain.MetricSeries{
		Name:   m.Name.Value,
		Label:  m.Name.LocalizedValue,
		Unit:   m.Unit,
		Points: []domain.MetricPoint{},
	}

	for _, agg := range aggregations {
		var points []domain.MetricPoint
		for _, ts := range m.Timeseries {
			for _, v := range ts.Data {
				if val := agg.value(v); val != nil {
					points = append(points, domain.MetricPoint{Timestamp: v.TimeStamp, Value: *val})
				}
			}
		}
		if len(points) > 0 {
			s.Statistic = agg.name
			s.Points = points
			break
		}
	}

	return s
}
