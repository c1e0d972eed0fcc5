package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/optionscout/optionscout/internal/api/handlers"
	"github.com/optionscout/optionscout/internal/metrics"
	"github.com/optionscout/optionscout/pkg/config"
	"github.com/optionscout/optionscout/pkg/logger"
	"github.com/optionscout/optionscout/pkg/redis"
)

// RouterDeps bundles everything the router wires together.
type RouterDeps struct {
	Screener  *handlers.ScreenerHandler
	Insights  *handlers.InsightsHandler
	Watchlist *handlers.WatchlistHandler
	Limiter   *redis.RateLimiter
	Metrics   *metrics.Registry
}

// NewRouter creates and configures the HTTP router. /health and /metrics
// stay outside the gate; everything under /api passes the full middleware
// chain: request ID, logging, recovery, API-key gate, caller rate limit.
func NewRouter(cfg *config.Config, log *logger.Logger, deps RouterDeps) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	if cfg.MetricsEnabled && deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics.Handler()).Methods("GET")
	}

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/screener", deps.Screener.Screen).Methods("GET")
	api.HandleFunc("/debug/screener", deps.Screener.DebugScreen).Methods("GET")

	api.HandleFunc("/insights/{symbol}/recent", deps.Insights.Recent).Methods("GET")
	api.HandleFunc("/insights/{symbol}/latest", deps.Insights.Latest).Methods("GET")

	api.HandleFunc("/watchlist", deps.Watchlist.Show).Methods("GET")
	api.HandleFunc("/watchlist/refresh", deps.Watchlist.Refresh).Methods("POST")

	r.Use(requestIDMiddleware())
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	api.Use(apiKeyMiddleware(cfg, log))
	api.Use(rateLimitMiddleware(cfg, deps.Limiter, log))

	return r
}

// healthCheckHandler returns server health status.
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "optionscout-api",
	})
}
