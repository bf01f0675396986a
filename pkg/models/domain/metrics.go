package domain

import "time"

type MetricPoint struct {
	Timestamp time.Time
	Value     float64
}

// MetricSeries is the provider-agnostic view of one time-series.
type MetricSeries struct {
	Name      string // cpu, SiteHits
	Label     string
	Unit      string // Percent, Bytes, Count
	Statistic string // Average, Sum, Maximum, Total
	Points    []MetricPoint
}

type MetricsSnapshot struct {
	Provider ProviderID
	Start    time.Time
	End      time.Time
	Native   any
	Series   []MetricSeries
}
