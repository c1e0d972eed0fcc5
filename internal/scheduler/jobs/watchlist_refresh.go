package jobs

import (
	"context"
	"fmt"

	"github.com/optionscout/optionscout/internal/external/movers"
	"github.com/optionscout/optionscout/internal/watchlist"
	"github.com/optionscout/optionscout/pkg/logger"
)

// WatchlistRefreshJob replaces the watchlist with the current most-active
// underlyings before the US session opens.
type WatchlistRefreshJob struct {
	movers   *movers.Client
	list     *watchlist.Watchlist
	topK     int
	schedule string
	logger   *logger.Logger
}

// NewWatchlistRefreshJob creates a watchlist refresh job.
func NewWatchlistRefreshJob(moversClient *movers.Client, list *watchlist.Watchlist, topK int, schedule string, log *logger.Logger) *WatchlistRefreshJob {
	return &WatchlistRefreshJob{
		movers:   moversClient,
		list:     list,
		topK:     topK,
		schedule: schedule,
		logger:   log.WithComponent("watchlist_refresh"),
	}
}

// Name returns the job name.
func (j *WatchlistRefreshJob) Name() string {
	return "watchlist_refresh"
}

// Schedule returns the cron expression (default: weekdays pre-open, UTC).
func (j *WatchlistRefreshJob) Schedule() string {
	return j.schedule
}

// Run fetches the movers table and replaces the watchlist.
func (j *WatchlistRefreshJob) Run(ctx context.Context) error {
	active, err := j.movers.MostActive(ctx, j.topK)
	if err != nil {
		return fmt.Errorf("watchlist refresh: fetch most-active: %w", err)
	}

	symbols := make([]string, len(active))
	for i, m := range active {
		symbols[i] = m.Symbol
	}

	if err := j.list.Replace(symbols); err != nil {
		return fmt.Errorf("watchlist refresh: %w", err)
	}

	j.logger.WithField("count", len(symbols)).Info("Watchlist refreshed from movers")
	return nil
}
