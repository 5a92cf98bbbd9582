package contracts

import "time"

// Quote status taxonomy when every provider failed
const (
	ProviderExhausted = "exhausted"
	ProviderNoData    = "no_data_available"
)

// PriceQuote is the price ladder output for one ticker
// ⭐ SSOT: CurrentPrice == nil means "unknown", never "zero"
type PriceQuote struct {
	Ticker         string    `json:"ticker"`
	CurrentPrice   *float64  `json:"current_price"`
	PriceChangePct float64   `json:"price_change_pct"`
	Volume         int64     `json:"volume"`
	Provider       string    `json:"provider"`
	CompanyName    string    `json:"company_name"`
	Stale          bool      `json:"stale,omitempty"`
	FetchedAt      time.Time `json:"fetched_at"`
}

// HasPrice reports whether the quote carries a known price
func (q *PriceQuote) HasPrice() bool {
	return q != nil && q.CurrentPrice != nil
}

// Price returns the price and whether it is known
func (q *PriceQuote) Price() (float64, bool) {
	if !q.HasPrice() {
		return 0, false
	}
	return *q.CurrentPrice, true
}

// ProviderStatus is a read-only view of one provider's quota window
type ProviderStatus struct {
	Name       string    `json:"name"`
	CallsUsed  int       `json:"calls_used"`
	DailyLimit int       `json:"daily_limit"`
	Exhausted  bool      `json:"exhausted"`
	Configured bool      `json:"configured"`
	ResetAt    time.Time `json:"reset_at"`
}

// Remaining returns calls left in the window, -1 when unlimited
func (p ProviderStatus) Remaining() int {
	if p.DailyLimit <= 0 {
		return -1
	}
	if r := p.DailyLimit - p.CallsUsed; r > 0 {
		return r
	}
	return 0
}
