package api

import (
	"encoding/json"
	"net/http"

	"github.com/alexivanou/wetter-proxy/internal/model"
	"github.com/alexivanou/wetter-proxy/internal/stats"
	"go.uber.org/zap"
)

// StatsHandler handles statistics requests
type StatsHandler struct {
	collector *stats.Collector
	logger    *zap.Logger
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(collector *stats.Collector, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{collector: collector, logger: logger}
}

// GetStats handles GET /api/stats
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	stats, err := h.collector.Collect(r.Context())
	if err != nil {
		h.logger.Error("Error collecting statistics", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(model.ErrorResponse{Error: "failed to collect statistics"})
		return
	}

	if err := json.NewEncoder(w).Encode(stats); err != nil {
		h.logger.Error("Error encoding statistics", zap.Error(err))
	}
}
