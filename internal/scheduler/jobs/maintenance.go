package jobs

import (
	"context"
	"time"

	"github.com/wonny/memestock/pkg/logger"
)

// StaleCleaner drops cache entries past their TTL
type StaleCleaner interface {
	CleanStale(now time.Time) int
}

// CacheCleanupJob cleans stale quotes from the last-good cache
type CacheCleanupJob struct {
	cache  StaleCleaner
	logger *logger.Logger
	now    func() time.Time
}

// NewCacheCleanupJob creates a new cache cleanup job
func NewCacheCleanupJob(quoteCache StaleCleaner, log *logger.Logger) *CacheCleanupJob {
	return &CacheCleanupJob{
		cache:  quoteCache,
		logger: log.WithComponent("jobs"),
		now:    time.Now,
	}
}

// Name returns the job name
func (j *CacheCleanupJob) Name() string {
	return "quote_cache_cleanup"
}

// Schedule returns the cron schedule (hourly)
func (j *CacheCleanupJob) Schedule() string {
	return "0 0 * * * *"
}

// Run executes the cache cleanup
func (j *CacheCleanupJob) Run(ctx context.Context) error {
	j.logger.Debug("Starting scheduled quote cache cleanup")

	count := j.cache.CleanStale(j.now())

	if count > 0 {
		j.logger.WithField("removed", count).Info("Quote cache cleanup completed")
	}

	return nil
}
