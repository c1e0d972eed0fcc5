package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/optionscout/optionscout/internal/screener"
	"github.com/optionscout/optionscout/internal/watchlist"
	"github.com/optionscout/optionscout/pkg/logger"
)

// Pruner deletes archived digests past a retention window.
type Pruner interface {
	PruneOlderThan(ctx context.Context, retention time.Duration) (int64, error)
}

// DigestRefreshJob screens every watchlist symbol on a market-hours cadence
// and archives the results, then prunes digests past retention. A failed
// symbol does not abort the sweep; the job fails only if no symbol screened
// cleanly.
type DigestRefreshJob struct {
	service   *screener.Service
	list      *watchlist.Watchlist
	pruner    Pruner // nil when the archive is disabled
	retention time.Duration
	schedule  string
	explain   bool
	logger    *logger.Logger
}

// NewDigestRefreshJob creates a digest refresh job. pruner may be nil;
// retention <= 0 disables pruning.
func NewDigestRefreshJob(service *screener.Service, list *watchlist.Watchlist, pruner Pruner, retention time.Duration, schedule string, explain bool, log *logger.Logger) *DigestRefreshJob {
	return &DigestRefreshJob{
		service:   service,
		list:      list,
		pruner:    pruner,
		retention: retention,
		schedule:  schedule,
		explain:   explain,
		logger:    log.WithComponent("digest_refresh"),
	}
}

// Name returns the job name.
func (j *DigestRefreshJob) Name() string {
	return "digest_refresh"
}

// Schedule returns the cron expression (default: every 30 minutes during US
// market hours, weekdays, UTC).
func (j *DigestRefreshJob) Schedule() string {
	return j.schedule
}

// Run executes one watchlist sweep.
func (j *DigestRefreshJob) Run(ctx context.Context) error {
	symbols, err := j.list.Load()
	if err != nil {
		return fmt.Errorf("digest refresh: load watchlist: %w", err)
	}

	var screened, failed int
	for _, symbol := range symbols {
		_, err := j.service.Screen(ctx, screener.Request{
			Underlying: symbol,
			Explain:    j.explain,
			NoCache:    true, // scheduled sweeps always want a fresh snapshot
			Source:     "scheduler",
		})
		if err != nil {
			failed++
			j.logger.WithError(err).WithField("underlying", symbol).Warn("Scheduled screen failed")
			continue
		}
		screened++
	}

	// Retention rides on the sweep; a prune failure never fails the job.
	if j.pruner != nil && j.retention > 0 {
		pruned, err := j.pruner.PruneOlderThan(ctx, j.retention)
		if err != nil {
			j.logger.WithError(err).Warn("Digest prune failed")
		} else if pruned > 0 {
			j.logger.WithField("pruned", pruned).Info("Old digests pruned")
		}
	}

	j.logger.WithFields(map[string]interface{}{
		"symbols":  len(symbols),
		"screened": screened,
		"failed":   failed,
	}).Info("Digest refresh completed")

	if screened == 0 {
		return fmt.Errorf("digest refresh: all %d symbols failed", len(symbols))
	}
	return nil
}
