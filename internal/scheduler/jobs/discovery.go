package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/memestock/internal/contracts"
	"github.com/wonny/memestock/internal/scheduler"
	"github.com/wonny/memestock/pkg/logger"
)

// DiscoveryJob picks the dynamic forum on a long period
type DiscoveryJob struct {
	discoverer contracts.Discoverer
	interval   time.Duration
	logger     *logger.Logger
}

// NewDiscoveryJob creates a new discovery job
func NewDiscoveryJob(d contracts.Discoverer, interval time.Duration, log *logger.Logger) *DiscoveryJob {
	return &DiscoveryJob{
		discoverer: d,
		interval:   interval,
		logger:     log.WithComponent("jobs"),
	}
}

// Name returns the job name
func (j *DiscoveryJob) Name() string {
	return "forum_discovery"
}

// Schedule returns the cron schedule
func (j *DiscoveryJob) Schedule() string {
	return scheduler.Every(j.interval)
}

// Run executes one discovery pass
func (j *DiscoveryJob) Run(ctx context.Context) error {
	added, err := j.discoverer.Discover(ctx)
	if err != nil {
		return fmt.Errorf("forum discovery: %w", err)
	}

	if added != "" {
		j.logger.WithField("forum", added).Info("Dynamic forum updated")
	} else {
		j.logger.Debug("Discovery found no new forum")
	}
	return nil
}
