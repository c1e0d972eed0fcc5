package handlers

import (
	"net/http"

	"github.com/optionscout/optionscout/internal/external/movers"
	"github.com/optionscout/optionscout/internal/watchlist"
	"github.com/optionscout/optionscout/pkg/logger"
)

// WatchlistHandler serves the watchlist endpoints.
type WatchlistHandler struct {
	list   *watchlist.Watchlist
	movers *movers.Client
	topK   int
	logger *logger.Logger
}

// NewWatchlistHandler creates a watchlist handler.
func NewWatchlistHandler(list *watchlist.Watchlist, moversClient *movers.Client, topK int, log *logger.Logger) *WatchlistHandler {
	return &WatchlistHandler{
		list:   list,
		movers: moversClient,
		topK:   topK,
		logger: log,
	}
}

// Show handles GET /api/watchlist.
func (h *WatchlistHandler) Show(w http.ResponseWriter, r *http.Request) {
	symbols, err := h.list.Load()
	if err != nil {
		h.logger.WithError(err).Error("Failed to load watchlist")
		respondError(w, http.StatusInternalServerError, "Failed to load watchlist")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"path":    h.list.Path(),
		"count":   len(symbols),
		"symbols": symbols,
	})
}

// Refresh handles POST /api/watchlist/refresh: replace the watchlist with
// the current most-active underlyings.
func (h *WatchlistHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	active, err := h.movers.MostActive(r.Context(), h.topK)
	if err != nil {
		h.logger.WithError(err).Error("Failed to fetch most-active underlyings")
		respondError(w, http.StatusBadGateway, "Failed to fetch most-active underlyings")
		return
	}

	symbols := make([]string, len(active))
	for i, m := range active {
		symbols[i] = m.Symbol
	}

	if err := h.list.Replace(symbols); err != nil {
		h.logger.WithError(err).Error("Failed to replace watchlist")
		respondError(w, http.StatusInternalServerError, "Failed to replace watchlist")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "refreshed",
		"count":   len(symbols),
		"symbols": symbols,
	})
}
