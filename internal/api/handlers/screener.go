package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/optionscout/optionscout/internal/contracts"
	"github.com/optionscout/optionscout/internal/engine"
	"github.com/optionscout/optionscout/internal/screener"
	"github.com/optionscout/optionscout/pkg/logger"
)

// ScreenerHandler serves the screening endpoints.
type ScreenerHandler struct {
	service *screener.Service
	logger  *logger.Logger
}

// NewScreenerHandler creates a screener handler.
func NewScreenerHandler(service *screener.Service, log *logger.Logger) *ScreenerHandler {
	return &ScreenerHandler{
		service: service,
		logger:  log,
	}
}

// contractRow is the slim per-contract row in screener responses.
type contractRow struct {
	Rank         int     `json:"rank"`
	Symbol       string  `json:"symbol"`
	Expiry       string  `json:"expiry"`
	Strike       float64 `json:"strike"`
	Type         string  `json:"type"`
	Volume       int64   `json:"volume"`
	OpenInterest int64   `json:"open_interest"`
	IV           float64 `json:"iv"`
	Delta        float64 `json:"delta"`
	Premium      float64 `json:"premium"`
	Score        float64 `json:"score"`
}

// screenResponse is the /api/screener envelope.
type screenResponse struct {
	Underlying string        `json:"underlying"`
	Side       string        `json:"side"`
	Profile    string        `json:"profile"`
	RawCount   int           `json:"raw_count"`
	Contracts  []contractRow `json:"contracts"`
	Digest     string        `json:"digest"`
	Insight    string        `json:"insight,omitempty"`
	FetchedAt  time.Time     `json:"fetched_at"`
	CacheHit   bool          `json:"cache_hit"`
}

// debugScreenResponse adds the full scored rows and the weights in force.
type debugScreenResponse struct {
	screenResponse
	Scored  []contracts.ScoredContract `json:"scored"`
	Weights engine.WeightConfig        `json:"weights"`
}

// Screen handles GET /api/screener.
//
// Query parameters: symbol (required), side, profile, top, explain, no_cache.
func (h *ScreenerHandler) Screen(w http.ResponseWriter, r *http.Request) {
	req, err := parseScreenRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.Screen(r.Context(), req)
	if err != nil {
		h.logger.WithError(err).WithField("underlying", req.Underlying).Error("Screening failed")
		respondError(w, screenStatus(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, toScreenResponse(result))
}

// DebugScreen handles GET /api/debug/screener: the whole batch scored, no
// truncation, with components and the weights used. Never cached downstream.
func (h *ScreenerHandler) DebugScreen(w http.ResponseWriter, r *http.Request) {
	req, err := parseScreenRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Debug = true
	req.Explain = false

	result, err := h.service.Screen(r.Context(), req)
	if err != nil {
		h.logger.WithError(err).WithField("underlying", req.Underlying).Error("Debug screening failed")
		respondError(w, screenStatus(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, debugScreenResponse{
		screenResponse: toScreenResponse(result),
		Scored:         result.Ranked.Contracts,
		Weights:        result.Weights,
	})
}

// parseScreenRequest reads query parameters into a screener request. Value
// validation belongs to the service; only shape errors are rejected here.
func parseScreenRequest(r *http.Request) (screener.Request, error) {
	q := r.URL.Query()

	req := screener.Request{
		Underlying: q.Get("symbol"),
		Side:       q.Get("side"),
		Profile:    q.Get("profile"),
		Explain:    parseBool(q.Get("explain")),
		NoCache:    parseBool(q.Get("no_cache")),
		Source:     "api",
	}

	if raw := q.Get("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return req, &screener.ValidationError{Field: "top", Reason: "must be an integer"}
		}
		req.TopN = n
	}

	return req, nil
}

func parseBool(raw string) bool {
	v, err := strconv.ParseBool(raw)
	return err == nil && v
}

func toScreenResponse(result *screener.Result) screenResponse {
	rows := make([]contractRow, len(result.Ranked.Contracts))
	for i := range result.Ranked.Contracts {
		c := &result.Ranked.Contracts[i]
		rows[i] = contractRow{
			Rank:         c.Rank,
			Symbol:       c.Symbol,
			Expiry:       c.ExpiryDate(),
			Strike:       c.Strike,
			Type:         string(c.Type),
			Volume:       c.Volume,
			OpenInterest: c.OpenInterest,
			IV:           c.IV,
			Delta:        c.Delta,
			Premium:      c.Premium,
			Score:        c.Score,
		}
	}

	return screenResponse{
		Underlying: result.Underlying,
		Side:       result.Side,
		Profile:    result.Profile,
		RawCount:   result.RawCount,
		Contracts:  rows,
		Digest:     result.Ranked.Digest,
		Insight:    result.Insight,
		FetchedAt:  result.FetchedAt,
		CacheHit:   result.CacheHit,
	}
}
