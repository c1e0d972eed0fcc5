package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optionscout/optionscout/internal/api/handlers"
	"github.com/optionscout/optionscout/internal/contracts"
	"github.com/optionscout/optionscout/internal/external/movers"
	"github.com/optionscout/optionscout/internal/metrics"
	"github.com/optionscout/optionscout/internal/screener"
	"github.com/optionscout/optionscout/internal/watchlist"
	"github.com/optionscout/optionscout/pkg/config"
	"github.com/optionscout/optionscout/pkg/httputil"
	"github.com/optionscout/optionscout/pkg/logger"
	"github.com/optionscout/optionscout/pkg/redis"
)

type staticProvider struct{ chain []contracts.OptionContract }

func (p *staticProvider) FetchChain(ctx context.Context, underlying string) ([]contracts.OptionContract, error) {
	return p.chain, nil
}

type noopExplainer struct{}

func (noopExplainer) Explain(ctx context.Context, underlying string, result *contracts.RankedResult) (string, error) {
	return "", nil
}

func (noopExplainer) Provider() string { return "noop" }

func newTestRouter(t *testing.T, apiKeys []string) http.Handler {
	t.Helper()

	cfg := &config.Config{
		Env:            "test",
		LogLevel:       "error",
		MetricsEnabled: true,
		API:            config.APIConfig{Keys: apiKeys, RatePerMin: 60},
		Screener: config.ScreenerConfig{
			TopN: 5, Side: "call", Profile: "balanced", CacheTTL: time.Minute,
		},
		Watchlist: config.WatchlistConfig{
			Path: filepath.Join(t.TempDir(), "symbols.txt"),
			TopK: 10,
		},
	}
	log := logger.New(cfg)

	redisClient, err := redis.New(cfg)
	require.NoError(t, err)
	cache := redis.NewCache(redisClient, "scout")
	limiter := redis.NewRateLimiter(redisClient, "scout")
	m := metrics.New()

	expiry := time.Date(2026, 9, 18, 0, 0, 0, 0, time.UTC)
	provider := &staticProvider{chain: []contracts.OptionContract{
		{Symbol: "O:SPY260918C00650000", Expiry: expiry, Strike: 650, Type: contracts.Call,
			Volume: 81188, OpenInterest: 2908, IV: 0.09, Delta: 0.69, Premium: 1.88},
	}}

	svc := screener.New(provider, noopExplainer{}, cache, nil, m, cfg, log)
	list := watchlist.New(cfg.Watchlist.Path, log)
	moversClient := movers.NewClient(cfg, httputil.New(cfg, log), log)

	return NewRouter(cfg, log, RouterDeps{
		Screener:  handlers.NewScreenerHandler(svc, log),
		Insights:  handlers.NewInsightsHandler(nil, log),
		Watchlist: handlers.NewWatchlistHandler(list, moversClient, cfg.Watchlist.TopK, log),
		Limiter:   limiter,
		Metrics:   m,
	})
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "optionscout-api")
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestIDEchoed(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req = httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Request-ID", "caller-id")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "caller-id", rec.Header().Get("X-Request-ID"))
}

func TestAPIKeyGate(t *testing.T) {
	router := newTestRouter(t, []string{"secret"})

	// No key
	req := httptest.NewRequest("GET", "/api/screener?symbol=SPY", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Wrong key
	req = httptest.NewRequest("GET", "/api/screener?symbol=SPY", nil)
	req.Header.Set("X-API-Key", "wrong")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Valid key
	req = httptest.NewRequest("GET", "/api/screener?symbol=SPY", nil)
	req.Header.Set("X-API-Key", "secret")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Health stays outside the gate.
	req = httptest.NewRequest("GET", "/health", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOpenModeWithoutKeys(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest("GET", "/api/screener?symbol=SPY", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestInsightsDisabledArchive(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest("GET", "/api/insights/SPY/latest", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWatchlistShow(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest("GET", "/api/watchlist", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	// Missing file falls back to the default watchlist.
	assert.Contains(t, rec.Body.String(), "SPY")
}
