package api

import (
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/optionscout/optionscout/pkg/config"
	"github.com/optionscout/optionscout/pkg/logger"
	"github.com/optionscout/optionscout/pkg/redis"
)

const requestIDHeader = "X-Request-ID"

// requestIDMiddleware tags every request with a short random ID, echoed in
// the response header so callers can quote it in reports.
func requestIDMiddleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(requestIDHeader)
			if id == "" {
				id = uuid.New().String()[:8]
			}
			r.Header.Set(requestIDHeader, id)
			w.Header().Set(requestIDHeader, id)

			next.ServeHTTP(w, r)
		})
	}
}

// loggingMiddleware logs HTTP requests.
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":     r.Method,
				"path":       r.URL.Path,
				"duration":   time.Since(start),
				"request_id": r.Header.Get(requestIDHeader),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from handler panics.
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error":      err,
						"path":       r.URL.Path,
						"request_id": r.Header.Get(requestIDHeader),
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// apiKeyMiddleware gates /api behind X-API-Key. An empty key set runs the
// API open; the warn at startup is the operator's reminder.
func apiKeyMiddleware(cfg *config.Config, log *logger.Logger) mux.MiddlewareFunc {
	keys := make(map[string]bool, len(cfg.API.Keys))
	for _, k := range cfg.API.Keys {
		keys[k] = true
	}

	if len(keys) == 0 {
		log.Warn("API_KEYS is empty, API runs without authentication")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(keys) > 0 && !keys[r.Header.Get("X-API-Key")] {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "Invalid or missing API key",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// rateLimitMiddleware enforces a per-caller sliding window. Callers are
// identified by API key when present, else remote address. With Redis
// disabled the limiter allows everything.
func rateLimitMiddleware(cfg *config.Config, limiter *redis.RateLimiter, log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			callerID := r.Header.Get("X-API-Key")
			if callerID == "" {
				callerID = remoteHost(r)
			}

			allowed, _, err := limiter.Allow(r.Context(), redis.CallerRateLimit(callerID, cfg.API.RatePerMin))
			if err != nil {
				// Limiter trouble must not take the API down.
				log.WithError(err).Warn("Rate limit check failed, allowing request")
				allowed = true
			}

			if !allowed {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "Rate limit exceeded",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
