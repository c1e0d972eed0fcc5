package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/optionscout/optionscout/internal/archive"
	"github.com/optionscout/optionscout/pkg/logger"
)

// InsightsHandler serves archived digests. With the archive disabled the
// endpoints answer 404 rather than 500; absence of history is not a fault.
type InsightsHandler struct {
	repo   *archive.Repository // nil when ARCHIVE_ENABLED=false
	logger *logger.Logger
}

// NewInsightsHandler creates an insights handler. repo may be nil.
func NewInsightsHandler(repo *archive.Repository, log *logger.Logger) *InsightsHandler {
	return &InsightsHandler{
		repo:   repo,
		logger: log,
	}
}

// Recent handles GET /api/insights/{symbol}/recent?limit=N.
func (h *InsightsHandler) Recent(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		respondError(w, http.StatusNotFound, "Digest archive is disabled")
		return
	}

	symbol := strings.ToUpper(mux.Vars(r)["symbol"])

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	digests, err := h.repo.RecentDigests(r.Context(), symbol, limit)
	if err != nil {
		h.logger.WithError(err).WithField("underlying", symbol).Error("Failed to load recent digests")
		respondError(w, http.StatusInternalServerError, "Failed to load digests")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"underlying": symbol,
		"count":      len(digests),
		"digests":    digests,
	})
}

// Latest handles GET /api/insights/{symbol}/latest.
func (h *InsightsHandler) Latest(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		respondError(w, http.StatusNotFound, "Digest archive is disabled")
		return
	}

	symbol := strings.ToUpper(mux.Vars(r)["symbol"])

	digest, err := h.repo.LatestDigest(r.Context(), symbol)
	if err != nil {
		if errors.Is(err, archive.ErrNotFound) {
			respondError(w, http.StatusNotFound, "No digest archived for "+symbol)
			return
		}
		h.logger.WithError(err).WithField("underlying", symbol).Error("Failed to load latest digest")
		respondError(w, http.StatusInternalServerError, "Failed to load digest")
		return
	}

	respondJSON(w, http.StatusOK, digest)
}
