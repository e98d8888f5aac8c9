package api

import (
	"encoding/json"
	"net/http"

	"github.com/alexivanou/wetter-proxy/internal/model"
	"github.com/alexivanou/wetter-proxy/internal/service"
	"go.uber.org/zap"
)

// Handler handles HTTP requests
type Handler struct {
	service service.ServiceInterface
	logger  *zap.Logger
}

// NewHandler creates a new handler instance
func NewHandler(service service.ServiceInterface, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

// GetWeather handles GET /api/weather
func (h *Handler) GetWeather(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")

	result, err := h.service.Lookup(r.Context(), city)
	if err != nil {
		h.writeError(w, statusFor(err), err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// SuggestCities handles GET /api/suggest
func (h *Handler) SuggestCities(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	response, err := h.service.SuggestCities(r.Context(), query)
	if err != nil {
		h.writeError(w, statusFor(err), err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func statusFor(err error) int {
	if service.IsInputError(err) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, model.ErrorResponse{Error: message})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("Error encoding response", zap.Error(err))
	}
}
