package screener

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/optionscout/optionscout/internal/archive"
	"github.com/optionscout/optionscout/internal/contracts"
	"github.com/optionscout/optionscout/internal/engine"
	"github.com/optionscout/optionscout/internal/metrics"
	"github.com/optionscout/optionscout/pkg/config"
	"github.com/optionscout/optionscout/pkg/logger"
	"github.com/optionscout/optionscout/pkg/redis"
)

// ValidationError reports a malformed screening request. The API layer maps
// it to a 400, the engine's own errors keep their own mapping.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Request is one screening invocation. Zero values fall back to the
// configured defaults.
type Request struct {
	Underlying string
	Side       string // call | put | all
	Profile    string // conservative | balanced | aggressive
	TopN       int
	Explain    bool // generate an insight alongside the digest
	Debug      bool // score the whole batch, no truncation
	NoCache    bool
	Source     string // metrics label: api | cli | scheduler
}

// Result is the full screening outcome handed to handlers, jobs and the CLI.
type Result struct {
	Underlying string                  `json:"underlying"`
	Side       string                  `json:"side"`
	Profile    string                  `json:"profile"`
	RawCount   int                     `json:"raw_count"`
	Ranked     *contracts.RankedResult `json:"ranked"`
	Insight    string                  `json:"insight,omitempty"`
	Weights    engine.WeightConfig     `json:"weights"`
	FetchedAt  time.Time               `json:"fetched_at"`
	CacheHit   bool                    `json:"cache_hit"`
}

// Cache is the slice of the redis cache the service uses.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Service orchestrates one screening pass: snapshot fetch (through the
// cache), side filter, ranking, optional insight, best-effort archive. The
// engine stays pure; everything stateful lives here.
type Service struct {
	provider  contracts.ChainProvider
	explainer contracts.Explainer
	cache     Cache
	archive   *archive.Repository // nil when the archive is disabled
	metrics   *metrics.Registry
	logger    *logger.Logger
	defaults  config.ScreenerConfig
}

// New creates a screening service. archiveRepo may be nil.
func New(
	provider contracts.ChainProvider,
	explainer contracts.Explainer,
	cache Cache,
	archiveRepo *archive.Repository,
	m *metrics.Registry,
	cfg *config.Config,
	log *logger.Logger,
) *Service {
	return &Service{
		provider:  provider,
		explainer: explainer,
		cache:     cache,
		archive:   archiveRepo,
		metrics:   m,
		logger:    log.WithComponent("screener"),
		defaults:  cfg.Screener,
	}
}

// Screen runs one full screening pass.
func (s *Service) Screen(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	result, err := s.screen(ctx, req)

	status := "ok"
	if err != nil {
		status = "error"
	}
	source := req.Source
	if source == "" {
		source = "api"
	}
	s.metrics.ScreensTotal.WithLabelValues(source, status).Inc()
	s.metrics.ScreenDuration.Observe(time.Since(start).Seconds())

	return result, err
}

func (s *Service) screen(ctx context.Context, req Request) (*Result, error) {
	req, err := s.normalize(req)
	if err != nil {
		return nil, err
	}

	weights, _ := engine.ProfileWeights(req.Profile)
	// An operator weight override replaces the preset for the default
	// profile; explicitly selected profiles keep their presets.
	if s.defaults.Weights != nil && req.Profile == s.defaults.Profile {
		weights = *s.defaults.Weights
	}

	// Only default-sized screens go through the digest cache; its key
	// carries underlying, side and profile but no count. Debug screens
	// always recompute.
	digestKey := redis.DigestKey(req.Underlying, req.Side, req.Profile)
	useDigestCache := !req.NoCache && !req.Debug && req.TopN == s.defaults.TopN
	if useDigestCache {
		if cached, ok := s.loadDigest(ctx, digestKey, req); ok {
			return cached, nil
		}
	}

	batch, cacheHit, fetchedAt, err := s.loadChain(ctx, req)
	if err != nil {
		return nil, err
	}
	rawCount := len(batch)

	filtered := filterSide(batch, req.Side)
	if len(filtered) == 0 {
		// Raw chain may be non-empty; the side filter decides what the
		// engine sees, so the sentinel still applies.
		return nil, engine.ErrEmptyBatch
	}

	n := req.TopN
	if req.Debug {
		n = len(filtered)
	}

	ranked, err := engine.NewRanker(weights).RankTop(filtered, n)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Underlying: req.Underlying,
		Side:       req.Side,
		Profile:    req.Profile,
		RawCount:   rawCount,
		Ranked:     ranked,
		Weights:    weights,
		FetchedAt:  fetchedAt,
		CacheHit:   cacheHit,
	}

	if req.Explain {
		result.Insight = s.explain(ctx, req.Underlying, ranked)
	}

	s.archiveResult(ctx, req, result)

	if useDigestCache {
		if err := s.cache.Set(ctx, digestKey, result, redis.TTLDigest); err != nil {
			s.logger.WithError(err).Warn("Digest cache write failed")
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"underlying": req.Underlying,
		"side":       req.Side,
		"profile":    req.Profile,
		"raw_count":  rawCount,
		"ranked":     len(ranked.Contracts),
		"cache_hit":  cacheHit,
	}).Info("Screening completed")

	return result, nil
}

// normalize applies defaults and validates the request surface. Engine-level
// constraints (n >= 1 against the batch) stay with the engine.
func (s *Service) normalize(req Request) (Request, error) {
	req.Underlying = strings.ToUpper(strings.TrimSpace(req.Underlying))
	if req.Underlying == "" {
		return req, &ValidationError{Field: "underlying", Reason: "must not be empty"}
	}

	if req.Side == "" {
		req.Side = s.defaults.Side
	}
	req.Side = strings.ToLower(req.Side)
	switch req.Side {
	case "call", "put", "all":
	default:
		return req, &ValidationError{Field: "side", Reason: "must be one of: call, put, all"}
	}

	if req.Profile == "" {
		req.Profile = s.defaults.Profile
	}
	req.Profile = strings.ToLower(req.Profile)
	if _, ok := engine.ProfileWeights(req.Profile); !ok {
		return req, &ValidationError{Field: "profile", Reason: "must be one of: conservative, balanced, aggressive"}
	}

	if req.TopN == 0 {
		req.TopN = s.defaults.TopN
	}
	if req.TopN < 1 {
		return req, &ValidationError{Field: "top_n", Reason: "must be at least 1"}
	}

	return req, nil
}

// loadDigest serves a completed screen from the digest cache. A hit for an
// explain request whose cached copy carries no prose generates the insight
// fresh; a plain request never surfaces cached prose.
func (s *Service) loadDigest(ctx context.Context, key string, req Request) (*Result, bool) {
	var cached Result
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.logger.WithError(err).Warn("Digest cache read failed")
	}
	if !found {
		s.metrics.CacheMisses.WithLabelValues("digest").Inc()
		return nil, false
	}
	s.metrics.CacheHits.WithLabelValues("digest").Inc()

	cached.CacheHit = true
	switch {
	case req.Explain && cached.Insight == "":
		cached.Insight = s.explain(ctx, req.Underlying, cached.Ranked)
	case !req.Explain:
		cached.Insight = ""
	}

	s.logger.WithFields(map[string]interface{}{
		"underlying": req.Underlying,
		"side":       req.Side,
		"profile":    req.Profile,
	}).Debug("Digest served from cache")

	return &cached, true
}

// cachedChain is the cache envelope for a raw snapshot. The fetch time rides
// along so cache hits report the snapshot's real age.
type cachedChain struct {
	Contracts []contracts.OptionContract `json:"contracts"`
	FetchedAt time.Time                  `json:"fetched_at"`
}

// loadChain fetches the snapshot through the cache. The cache stores the
// raw (pre-filter) chain per underlying so call and put requests share one
// upstream fetch.
func (s *Service) loadChain(ctx context.Context, req Request) ([]contracts.OptionContract, bool, time.Time, error) {
	cacheKey := redis.ChainKey(req.Underlying, "raw")

	if !req.NoCache {
		var cached cachedChain
		found, err := s.cache.Get(ctx, cacheKey, &cached)
		if err != nil {
			s.logger.WithError(err).Warn("Chain cache read failed")
		}
		if found {
			s.metrics.CacheHits.WithLabelValues("chain").Inc()
			return cached.Contracts, true, cached.FetchedAt, nil
		}
		s.metrics.CacheMisses.WithLabelValues("chain").Inc()
	}

	fetchedAt := time.Now()
	batch, err := s.provider.FetchChain(ctx, req.Underlying)
	if err != nil {
		s.metrics.MassiveRequests.WithLabelValues("error").Inc()
		return nil, false, time.Time{}, err
	}
	s.metrics.MassiveRequests.WithLabelValues("ok").Inc()

	if !req.NoCache {
		entry := cachedChain{Contracts: batch, FetchedAt: fetchedAt}
		if err := s.cache.Set(ctx, cacheKey, entry, s.defaults.CacheTTL); err != nil {
			s.logger.WithError(err).Warn("Chain cache write failed")
		}
	}

	return batch, false, fetchedAt, nil
}

// explain asks the configured explainer for prose. Insight failure never
// fails the screen; the digest is the contract, the prose is garnish.
func (s *Service) explain(ctx context.Context, underlying string, ranked *contracts.RankedResult) string {
	insight, err := s.explainer.Explain(ctx, underlying, ranked)
	if err != nil {
		s.metrics.InsightRequests.WithLabelValues(s.explainer.Provider(), "error").Inc()
		s.logger.WithError(err).WithField("underlying", underlying).Warn("Insight generation failed")
		return ""
	}
	s.metrics.InsightRequests.WithLabelValues(s.explainer.Provider(), "ok").Inc()
	return insight
}

// archiveResult persists the digest best-effort. Debug screens are not
// archived; they are a diagnostic surface, not a product output.
func (s *Service) archiveResult(ctx context.Context, req Request, result *Result) {
	if s.archive == nil || req.Debug {
		return
	}

	_, err := s.archive.SaveDigest(ctx, req.Underlying, req.Side, req.Profile,
		result.RawCount, result.Ranked, result.Insight)
	if err != nil {
		s.logger.WithError(err).WithField("underlying", req.Underlying).Warn("Digest archive failed")
	}
}

// filterSide keeps contracts matching the requested side. "all" passes the
// batch through untouched.
func filterSide(batch []contracts.OptionContract, side string) []contracts.OptionContract {
	if side == "all" {
		return batch
	}

	want := contracts.ContractType(side)
	out := make([]contracts.OptionContract, 0, len(batch))
	for i := range batch {
		if batch[i].Type == want {
			out = append(out, batch[i])
		}
	}
	return out
}
