package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/de-tools/cloud-monitor/pkg/models/domain"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const DefaultCallTimeout = 10 * time.Second

type Config struct {
	CallTimeout time.Duration
	Observer    Observer
	Clock       clockwork.Clock
}

// Aggregator fans requests out to the registered providers and merges the results.
type Aggregator struct {
	providers   []Provider
	byKey       map[string]Provider
	callTimeout time.Duration
	observer    Observer
	clock       clockwork.Clock
}

func NewAggregator(cfg Config, providers ...Provider) (*Aggregator, error) {
	a := &Aggregator{
		providers:   providers,
		byKey:       make(map[string]Provider, len(providers)),
		callTimeout: cfg.CallTimeout,
		observer:    cfg.Observer,
		clock:       cfg.Clock,
	}
	if a.callTimeout <= 0 {
		a.callTimeout = DefaultCallTimeout
	}
	if a.observer == nil {
		a.observer = nopObserver{}
	}
	if a.clock == nil {
		a.clock = clockwork.NewRealClock()
	}

	for _, p := range providers {
		key := p.Descriptor().Key
		if _, exists := a.byKey[key]; exists {
			return nil, fmt.Errorf("duplicate provider: %s", key)
		}
		a.byKey[key] = p
	}

	if len(a.byKey) == 0 {
		return nil, fmt.Errorf("at least one provider must be registered")
	}

	return a, nil
}

func (a *Aggregator) Providers() []domain.ProviderDescriptor {
	descriptors := make([]domain.ProviderDescriptor, 0, len(a.providers))
	for _, p := range a.providers {
		descriptors = append(descriptors, p.Descriptor())
	}
	return descriptors
}

// Status returns one snapshot per provider, in registration order.
func (a *Aggregator) Status(ctx context.Context) ([]domain.ServiceStatus, error) {
	results := make([]domain.ServiceStatus, len(a.providers))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range a.providers {
		g.Go(func() error {
			desc := p.Descriptor()
			cctx, cancel := context.WithTimeout(gctx, a.callTimeout)
			defer cancel()

			start := a.clock.Now()
			status, err := call(cctx, func(ctx context.Context) (domain.ServiceStatus, error) {
				return p.CheckStatus(ctx), nil
			})
			if err != nil {
				if isPanic(err) {
					return &domain.AggregationError{Operation: OperationStatus, Err: fmt.Errorf("%s: %w", desc.Key, err)}
				}
				status = domain.NewFailedStatus(desc, err, a.clock.Now().UTC())
			}

			var statusErr error
			if status.Failed() {
				statusErr = errors.New(status.Error)
			}
			a.observer.ObserveCall(desc.ID, OperationStatus, a.clock.Since(start), statusErr)

			results[i] = status
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("status fan-out failed")
		return nil, err
	}

	return results, nil
}

// Metrics fetches one provider's metrics. Failures are not absorbed.
func (a *Aggregator) Metrics(ctx context.Context, key string) (*domain.MetricsSnapshot, error) {
	p, ok := a.byKey[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownProvider, key)
	}
	desc := p.Descriptor()

	cctx, cancel := context.WithTimeout(ctx, a.callTimeout)
	defer cancel()

	start := a.clock.Now()
	snapshot, err := call(cctx, p.FetchMetrics)
	a.observer.ObserveCall(desc.ID, OperationMetrics, a.clock.Since(start), err)

	if err != nil {
		if isPanic(err) {
			return nil, &domain.AggregationError{Operation: OperationMetrics, Err: err}
		}
		zerolog.Ctx(ctx).Error().
			Err(err).
			Str("provider", string(desc.ID)).
			Msgf("%s metrics fetch failed", desc.Vendor)
		return nil, fmt.Errorf("failed to fetch %s metrics: %w", desc.Key, err)
	}

	return snapshot, nil
}

// Billing sums month-to-date cost across providers. A failing provider
// contributes zero and is listed in BillingSnapshot.Errors.
func (a *Aggregator) Billing(ctx context.Context) (domain.BillingSnapshot, error) {
	logger := zerolog.Ctx(ctx)
	costs := make([]domain.ProviderCost, len(a.providers))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range a.providers {
		g.Go(func() error {
			desc := p.Descriptor()
			cctx, cancel := context.WithTimeout(gctx, a.callTimeout)
			defer cancel()

			start := a.clock.Now()
			amount, err := call(cctx, p.FetchBilling)
			a.observer.ObserveCall(desc.ID, OperationBilling, a.clock.Since(start), err)

			if err != nil {
				if isPanic(err) {
					return &domain.AggregationError{Operation: OperationBilling, Err: fmt.Errorf("%s: %w", desc.Key, err)}
				}
				logger.Warn().
					Err(err).
					Str("provider", string(desc.ID)).
					Msgf("%s billing fetch failed", desc.Vendor)
			}

			costs[i] = domain.ProviderCost{Key: desc.Key, Amount: amount, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("billing fan-out failed")
		return domain.BillingSnapshot{}, err
	}

	return domain.NewBillingSnapshot(costs...), nil
}

func isPanic(err error) bool {
	var p *panicError
	return errors.As(err, &p)
}
