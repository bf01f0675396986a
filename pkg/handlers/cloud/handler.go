package cloud

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/de-tools/cloud-monitor/pkg/adapters"
	"github.com/de-tools/cloud-monitor/pkg/models/api"
	"github.com/de-tools/cloud-monitor/pkg/models/domain"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const viewSeries = "series"

// Monitor is implemented by monitor.Aggregator.
type Monitor interface {
	Providers() []domain.ProviderDescriptor
	Status(ctx context.Context) ([]domain.ServiceStatus, error)
	Metrics(ctx context.Context, key string) (*domain.MetricsSnapshot, error)
	Billing(ctx context.Context) (domain.BillingSnapshot, error)
}

type Handler struct {
	monitor Monitor
}

func NewHandler(monitor Monitor) *Handler {
	return &Handler{monitor: monitor}
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	statuses, err := h.monitor.Status(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to fetch cloud status")
		writeJSON(w, r, http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch cloud status"})
		return
	}

	writeJSON(w, r, http.StatusOK, adapters.MapServiceStatusesDomainToApi(statuses))
}

func (h *Handler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	key := chi.URLParam(r, "provider")

	snapshot, err := h.monitor.Metrics(ctx, key)
	if errors.Is(err, domain.ErrUnknownProvider) {
		writeJSON(w, r, http.StatusNotFound, api.ErrorResponse{Error: fmt.Sprintf("Unknown provider: %s", key)})
		return
	}
	if err != nil {
		logger.Error().Err(err).Str("provider", key).Msg("failed to fetch metrics")
		writeJSON(w, r, http.StatusInternalServerError, api.ErrorResponse{
			Error:   fmt.Sprintf("Failed to fetch %s metrics", h.vendor(key)),
			Details: domain.ErrorMessage(err),
		})
		return
	}

	if r.URL.Query().Get("view") == viewSeries {
		writeJSON(w, r, http.StatusOK, adapters.MapMetricsSeriesDomainToApi(*snapshot))
		return
	}
	writeJSON(w, r, http.StatusOK, snapshot.Native)
}

func (h *Handler) GetBilling(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	billing, err := h.monitor.Billing(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("billing fetch failed")
		writeJSON(w, r, http.StatusInternalServerError, api.ErrorResponse{
			Error:   "Billing fetch failed",
			Details: domain.ErrorMessage(err),
		})
		return
	}

	writeJSON(w, r, http.StatusOK, adapters.MapBillingDomainToApi(billing))
}

func (h *Handler) vendor(key string) string {
	for _, p := range h.monitor.Providers() {
		if p.Key == key {
			return p.Vendor
		}
	}
	return key
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}
