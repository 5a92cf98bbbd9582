package contracts

import "time"

// LifecycleAnchor is the persisted first-seen record for a ticker.
// Written once, never overwritten.
type LifecycleAnchor struct {
	FirstSeenAt    time.Time `json:"first_seen_at"`
	FirstSeenPrice float64   `json:"first_seen_price"`
}

// LifecycleView is what the tracker reports for the current cycle
type LifecycleView struct {
	DaysActive         int     `json:"days_active"`
	PriceSinceStartPct float64 `json:"price_since_start_pct"`
}
