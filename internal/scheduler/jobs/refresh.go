package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/memestock/internal/contracts"
	"github.com/wonny/memestock/internal/scheduler"
	"github.com/wonny/memestock/pkg/logger"
)

// RefreshJob runs one orchestrator cycle per tick
// ⭐ SSOT: 주기적 갱신은 이 잡에서만 트리거
type RefreshJob struct {
	refresher contracts.Refresher
	interval  time.Duration
	logger    *logger.Logger
}

// NewRefreshJob creates a new refresh job
func NewRefreshJob(r contracts.Refresher, interval time.Duration, log *logger.Logger) *RefreshJob {
	return &RefreshJob{
		refresher: r,
		interval:  interval,
		logger:    log.WithComponent("jobs"),
	}
}

// Name returns the job name
func (j *RefreshJob) Name() string {
	return "refresh"
}

// Schedule returns the cron schedule
func (j *RefreshJob) Schedule() string {
	return scheduler.Every(j.interval)
}

// Run executes a refresh. A fallback snapshot is reported as a failed run
// so it shows up in job stats; the snapshot itself is already published.
func (j *RefreshJob) Run(ctx context.Context) error {
	snap := j.refresher.Refresh(ctx)
	if snap == nil {
		return fmt.Errorf("refresh returned no snapshot")
	}

	j.logger.WithFields(map[string]interface{}{
		"cycle_id": snap.CycleID,
		"status":   snap.Status,
		"top":      len(snap.Top),
		"stage":    snap.Stage.Stage,
	}).Debug("Refresh tick finished")

	switch snap.Status {
	case contracts.StatusSuccess, contracts.StatusStarting:
		return nil
	default:
		return fmt.Errorf("refresh cycle ended with status %q", snap.Status)
	}
}
