package handlers

import (
	"net/http"
	"strconv"

	"github.com/wonny/memestock/internal/contracts"
	"github.com/wonny/memestock/internal/insight"
	"github.com/wonny/memestock/pkg/logger"
)

// JobRunner starts a registered job outside its schedule
type JobRunner interface {
	RunJob(name string) error
}

// InsightHandler serves the published snapshot and its metric view
// ⭐ SSOT: 스냅샷 API 핸들러는 이 구조체에서만
type InsightHandler struct {
	snapshots  contracts.SnapshotSource
	runner     JobRunner
	refreshJob string
	topN       int
	logger     *logger.Logger
}

// NewInsightHandler creates a new insight handler
func NewInsightHandler(
	snapshots contracts.SnapshotSource,
	runner JobRunner,
	refreshJob string,
	topN int,
	log *logger.Logger,
) *InsightHandler {
	return &InsightHandler{
		snapshots:  snapshots,
		runner:     runner,
		refreshJob: refreshJob,
		topN:       topN,
		logger:     log.WithComponent("api"),
	}
}

// GetSnapshot returns the latest published snapshot
// GET /api/snapshot
func (h *InsightHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.snapshots.Latest())
}

// MetricsResponse is the named-metric view of one snapshot
type MetricsResponse struct {
	CycleID           string           `json:"cycle_id"`
	Status            string           `json:"status"`
	LastUpdateSuccess bool             `json:"last_update_success"`
	Metrics           []insight.Metric `json:"metrics"`
}

// GetMetrics returns the presentation metrics
// GET /api/metrics?top=N
func (h *InsightHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	topN := h.topN
	if raw := r.URL.Query().Get("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 10 {
			respondError(w, http.StatusBadRequest, "top must be an integer between 1 and 10")
			return
		}
		topN = n
	}

	snap := h.snapshots.Latest()
	ok := h.snapshots.LastUpdateSuccess()
	respondJSON(w, http.StatusOK, MetricsResponse{
		CycleID:           snap.CycleID,
		Status:            snap.Status,
		LastUpdateSuccess: ok,
		Metrics:           insight.BuildMetrics(snap, ok, topN),
	})
}

// Refresh queues an out-of-schedule refresh cycle
// POST /api/refresh
func (h *InsightHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if h.runner == nil {
		respondError(w, http.StatusServiceUnavailable, "Scheduler not running")
		return
	}

	if err := h.runner.RunJob(h.refreshJob); err != nil {
		h.logger.WithError(err).Error("Failed to trigger refresh")
		respondError(w, http.StatusInternalServerError, "Failed to trigger refresh")
		return
	}

	h.logger.Info("Refresh triggered via API")
	respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"status":  "accepted",
		"message": "Refresh queued; a cycle already in flight is not restarted",
	})
}
