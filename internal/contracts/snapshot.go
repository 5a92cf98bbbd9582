package contracts

import (
	"strings"
	"time"
)

// TopEntity is one of the top-N tickers enriched with price and lifecycle data
type TopEntity struct {
	Rank               int         `json:"rank"`
	Ticker             string      `json:"ticker"`
	CompanyName        string      `json:"company_name"`
	Mentions           int         `json:"mentions"`
	Sentiment          float64     `json:"sentiment"`
	Quote              *PriceQuote `json:"quote,omitempty"`
	DaysActive         int         `json:"days_active"`
	PriceSinceStartPct float64     `json:"price_since_start_pct"`
	ImpactScore        float64     `json:"impact_score"`
	MemeLikelihood     float64     `json:"meme_likelihood"`
	DeclineFlag        bool        `json:"decline_flag"`
}

// Snapshot is the full per-cycle output. Published wholesale, never mutated after publish.
// ⭐ SSOT: 프레젠테이션 레이어가 보는 유일한 객체
type Snapshot struct {
	CycleID      string                 `json:"cycle_id"`
	Status       string                 `json:"status"`
	Aggregate    *AggregateResult       `json:"aggregate"`
	Quotes       map[string]*PriceQuote `json:"quotes"`
	Top          []TopEntity            `json:"top"`
	Stage        StageResult            `json:"stage"`
	Providers    []ProviderStatus       `json:"providers"`
	DynamicForum string                 `json:"dynamic_forum,omitempty"`
	GeneratedAt  time.Time              `json:"generated_at"`
	Duration     time.Duration          `json:"duration_ns"`
}

// EmptySnapshot returns the documented fallback with the given status
func EmptySnapshot(status string, now time.Time) *Snapshot {
	return &Snapshot{
		Status:    status,
		Aggregate: EmptyAggregate(),
		Quotes:    map[string]*PriceQuote{},
		Top:       []TopEntity{},
		Stage: StageResult{
			Stage:  StageStart,
			Reason: "no data / no meme candidates",
		},
		Providers:   []ProviderStatus{},
		GeneratedAt: now,
	}
}

// WithStatus returns a shallow copy carrying a different status.
// Nested values are shared; published snapshots are read-only.
func (s *Snapshot) WithStatus(status string) *Snapshot {
	cp := *s
	cp.Status = status
	return &cp
}

// IsSuccess reports whether the snapshot came from a completed cycle
func (s *Snapshot) IsSuccess() bool {
	return s != nil && s.Status == StatusSuccess
}

// IsError reports whether the status carries an error marker
func (s *Snapshot) IsError() bool {
	return s != nil && strings.HasPrefix(s.Status, StatusErrorPfx)
}

// Leader returns the rank-1 entity, if any
func (s *Snapshot) Leader() *TopEntity {
	if s == nil || len(s.Top) == 0 {
		return nil
	}
	return &s.Top[0]
}
