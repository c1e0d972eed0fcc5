package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/optionscout/optionscout/internal/engine"
	"github.com/optionscout/optionscout/internal/external/massive"
	"github.com/optionscout/optionscout/internal/screener"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// screenStatus maps a screening error to an HTTP status. Request and engine
// validation are the caller's fault, an empty chain is a not-found, a tripped
// breaker is a 503, and anything else is the upstream's fault.
func screenStatus(err error) int {
	var verr *screener.ValidationError
	var perr *engine.InvalidParameterError

	switch {
	case errors.As(err, &verr), errors.As(err, &perr):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrEmptyBatch):
		return http.StatusNotFound
	case errors.Is(err, massive.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}
