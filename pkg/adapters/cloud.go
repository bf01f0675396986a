package adapters

import (
	"time"

	"github.com/de-tools/cloud-monitor/pkg/models/api"
	"github.com/de-tools/cloud-monitor/pkg/models/domain"
	"github.com/samber/lo"
)

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(api.TimestampFormat)
}

func MapMetricSeriesDomainToApi(series []domain.MetricSeries) []api.MetricSeries {
	return lo.Map(series, func(s domain.MetricSeries, _ int) api.MetricSeries {
		return api.MetricSeries{
			Name:      s.Name,
			Label:     s.Label,
			Unit:      s.Unit,
			Statistic: s.Statistic,
			Points: lo.Map(s.Points, func(p domain.MetricPoint, _ int) api.MetricPoint {
				return api.MetricPoint{Timestamp: FormatTimestamp(p.Timestamp), Value: p.Value}
			}),
		}
	})
}

func MapServiceStatusDomainToApi(s domain.ServiceStatus) api.ServiceStatus {
	metrics := s.Metrics
	if metrics == nil {
		metrics = []any{}
	}
	return api.ServiceStatus{
		ID:          string(s.ID),
		Name:        s.Name,
		Status:      s.Status,
		URL:         s.URL,
		Metrics:     metrics,
		Series:      MapMetricSeriesDomainToApi(s.Series),
		LastUpdated: FormatTimestamp(s.LastUpdated),
		Error:       s.Error,
	}
}

func MapServiceStatusesDomainToApi(statuses []domain.ServiceStatus) []api.ServiceStatus {
	return lo.Map(statuses, func(s domain.ServiceStatus, _ int) api.ServiceStatus {
		return MapServiceStatusDomainToApi(s)
	})
}

func MapMetricsSeriesDomainToApi(m domain.MetricsSnapshot) api.MetricsSeries {
	return api.MetricsSeries{
		Provider: string(m.Provider),
		Start:    FormatTimestamp(m.Start),
		End:      FormatTimestamp(m.End),
		Series:   MapMetricSeriesDomainToApi(m.Series),
	}
}

func MapBillingDomainToApi(b domain.BillingSnapshot) api.Billing {
	res := make(api.Billing, len(b.Costs)+2)
	for key, amount := range b.Costs {
		res[key] = amount
	}
	res["total"] = b.Total
	if len(b.Errors) > 0 {
		res["errors"] = b.Errors
	}
	return res
}
