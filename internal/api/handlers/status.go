package handlers

import (
	"net/http"
	"time"

	"github.com/wonny/memestock/internal/contracts"
	"github.com/wonny/memestock/internal/scheduler"
	"github.com/wonny/memestock/pkg/logger"
)

// QuotaSource reports provider quota usage
type QuotaSource interface {
	Status() []contracts.ProviderStatus
}

// ForumView exposes the configured and discovered forums
type ForumView interface {
	Configured() []string
	Dynamic() string
	DiscoveredAt() time.Time
	Forums() []string
}

// JobStatsSource reports scheduler job statistics
type JobStatsSource interface {
	GetJobStats() map[string]scheduler.JobStats
}

// StatusHandler serves operational views: quota, forums, jobs
type StatusHandler struct {
	quota  QuotaSource
	forums ForumView
	jobs   JobStatsSource
	logger *logger.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(quota QuotaSource, forums ForumView, jobs JobStatsSource, log *logger.Logger) *StatusHandler {
	return &StatusHandler{
		quota:  quota,
		forums: forums,
		jobs:   jobs,
		logger: log.WithComponent("api"),
	}
}

// QuotaResponse lists provider quota state in ladder order
type QuotaResponse struct {
	Providers    []QuotaEntry `json:"providers"`
	AllExhausted bool         `json:"all_exhausted"`
}

// QuotaEntry is one provider's quota view
type QuotaEntry struct {
	contracts.ProviderStatus
	Remaining int `json:"remaining"` // -1 = unlimited
}

// GetQuota returns provider quota usage
// GET /api/quota
func (h *StatusHandler) GetQuota(w http.ResponseWriter, r *http.Request) {
	status := h.quota.Status()

	resp := QuotaResponse{Providers: make([]QuotaEntry, 0, len(status)), AllExhausted: len(status) > 0}
	for _, p := range status {
		resp.Providers = append(resp.Providers, QuotaEntry{ProviderStatus: p, Remaining: p.Remaining()})
		if !p.Exhausted {
			resp.AllExhausted = false
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

// ForumsResponse is the forum set currently scanned
type ForumsResponse struct {
	Configured   []string   `json:"configured"`
	Dynamic      string     `json:"dynamic,omitempty"`
	DiscoveredAt *time.Time `json:"discovered_at,omitempty"`
	Active       []string   `json:"active"`
}

// GetForums returns the forum set
// GET /api/forums
func (h *StatusHandler) GetForums(w http.ResponseWriter, r *http.Request) {
	resp := ForumsResponse{
		Configured: h.forums.Configured(),
		Dynamic:    h.forums.Dynamic(),
		Active:     h.forums.Forums(),
	}
	if at := h.forums.DiscoveredAt(); !at.IsZero() {
		resp.DiscoveredAt = &at
	}

	respondJSON(w, http.StatusOK, resp)
}

// GetJobs returns scheduler statistics
// GET /api/jobs
func (h *StatusHandler) GetJobs(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil {
		respondJSON(w, http.StatusOK, map[string]scheduler.JobStats{})
		return
	}
	respondJSON(w, http.StatusOK, h.jobs.GetJobStats())
}
