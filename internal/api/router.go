package api

import (
	"io/fs"
	"net/http"

	"github.com/alexivanou/wetter-proxy/internal/service"
	"github.com/alexivanou/wetter-proxy/internal/stats"
	"github.com/alexivanou/wetter-proxy/web"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// NewRouter creates a new HTTP router
func NewRouter(service service.ServiceInterface, statsCollector *stats.Collector, logger *zap.Logger) *mux.Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	handler := NewHandler(service, logger)
	statsHandler := NewStatsHandler(statsCollector, logger)

	router := mux.NewRouter()
	router.Use(requestID, accessLog(logger, statsCollector))

	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/weather", handler.GetWeather).Methods("GET")
	api.HandleFunc("/suggest", handler.SuggestCities).Methods("GET")
	api.HandleFunc("/stats", statsHandler.GetStats).Methods("GET")

	static, err := fs.Sub(web.Static, "static")
	if err != nil {
		// the embedded tree is fixed at build time
		panic(err)
	}
	router.PathPrefix("/").Handler(http.FileServer(http.FS(static))).Methods("GET")

	return router
}
