package monitor

import (
	"context"
	"time"

	"github.com/de-tools/cloud-monitor/pkg/models/domain"
)

// StatusChecker snapshots the resource state of one deployment. It never
// fails: problems are reported through ServiceStatus.Error.
type StatusChecker interface {
	CheckStatus(ctx context.Context) domain.ServiceStatus
}

type MetricsFetcher interface {
	FetchMetrics(ctx context.Context) (*domain.MetricsSnapshot, error)
}

type BillingFetcher interface {
	// FetchBilling returns the month-to-date cost, not yet rounded.
	FetchBilling(ctx context.Context) (float64, error)
}

// Provider is one monitored cloud deployment.
type Provider interface {
	StatusChecker
	MetricsFetcher
	BillingFetcher
	Descriptor() domain.ProviderDescriptor
}

// Observer receives the outcome of every upstream call made through the aggregator.
type Observer interface {
	ObserveCall(provider domain.ProviderID, operation string, duration time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveCall(domain.ProviderID, string, time.Duration, error) {}

const (
	OperationStatus  = "status"
	OperationMetrics = "metrics"
	OperationBilling = "billing"
)
