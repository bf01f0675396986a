package health

import (
	"encoding/json"
	"net/http"

	"github.com/de-tools/cloud-monitor/pkg/adapters"
	"github.com/de-tools/cloud-monitor/pkg/models/api"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

const statusUp = "UP"

// Handler reports liveness only. It never calls a cloud provider.
type Handler struct {
	clock clockwork.Clock
}

func NewHandler(clock clockwork.Clock) *Handler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Handler{clock: clock}
}

func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(api.Health{
		Status:    statusUp,
		Timestamp: adapters.FormatTimestamp(h.clock.Now()),
	})
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to encode health")
	}
}
