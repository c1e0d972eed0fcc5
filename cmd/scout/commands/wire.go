package commands

import (
	"context"
	"fmt"

	"github.com/optionscout/optionscout/internal/archive"
	"github.com/optionscout/optionscout/internal/contracts"
	"github.com/optionscout/optionscout/internal/external/massive"
	"github.com/optionscout/optionscout/internal/external/movers"
	"github.com/optionscout/optionscout/internal/insight"
	"github.com/optionscout/optionscout/internal/metrics"
	"github.com/optionscout/optionscout/internal/screener"
	"github.com/optionscout/optionscout/internal/watchlist"
	"github.com/optionscout/optionscout/pkg/config"
	"github.com/optionscout/optionscout/pkg/database"
	"github.com/optionscout/optionscout/pkg/httputil"
	"github.com/optionscout/optionscout/pkg/logger"
	"github.com/optionscout/optionscout/pkg/redis"
)

// app holds the wired service graph shared by the CLI commands. Every
// command builds exactly this graph; only which parts it runs differs.
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	db      *database.DB // nil when the archive is disabled
	redis   *redis.Client
	cache   *redis.Cache
	limiter *redis.RateLimiter
	metrics *metrics.Registry

	massive   *massive.Client
	movers    *movers.Client
	explainer contracts.Explainer
	archive   *archive.Repository // nil when the archive is disabled
	list      *watchlist.Watchlist
	service   *screener.Service
}

// buildApp loads config and wires the full service graph.
func buildApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	redisClient, err := redis.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	a := &app{
		cfg:     cfg,
		log:     log,
		redis:   redisClient,
		cache:   redis.NewCache(redisClient, "scout"),
		limiter: redis.NewRateLimiter(redisClient, "scout"),
		metrics: metrics.New(),
	}

	if cfg.Archive.Enabled {
		db, err := database.New(cfg)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		a.db = db
		a.archive = archive.NewRepository(db.Pool)

		if err := a.archive.EnsureSchema(ctx); err != nil {
			a.Close()
			return nil, err
		}
	}

	massiveHTTP := httputil.NewWithTimeout(cfg, log, cfg.Massive.Timeout)
	if redisClient.Enabled() {
		// Distributed fallback limiter on top of the in-process bucket.
		massiveHTTP = massiveHTTP.WithRateLimiter(a.limiter, redis.MassiveRateLimit)
	}
	a.massive = massive.NewClient(cfg, massiveHTTP, log)

	moversHTTP := httputil.NewWithTimeout(cfg, log, cfg.Movers.Timeout)
	a.movers = movers.NewClient(cfg, moversHTTP, log).WithCache(a.cache)

	// POST bodies are not replayable, so the insight client never retries.
	insightHTTP := httputil.NewWithTimeout(cfg, log, cfg.Insight.Timeout).DisableRetry()
	if redisClient.Enabled() {
		insightHTTP = insightHTTP.WithRateLimiter(a.limiter, redis.InsightRateLimit)
	}
	a.explainer = insight.New(cfg, insightHTTP, log)

	a.list = watchlist.New(cfg.Watchlist.Path, log)
	a.service = screener.New(a.massive, a.explainer, a.cache, a.archive, a.metrics, cfg, log)

	return a, nil
}

// Close releases held connections.
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		a.redis.Close()
	}
}
