package pricing

import (
	"sync"
	"time"

	"github.com/wonny/memestock/internal/contracts"
)

// QuotaTracker counts provider calls in a fixed window.
// A provider is exhausted once its counted calls reach the ceiling,
// or immediately when marked after a rate-limit signal.
// ⭐ SSOT: 프로바이더 쿼터 상태는 여기서만
type QuotaTracker struct {
	mu       sync.Mutex
	order    []string
	limits   map[string]int
	used     map[string]int
	inflight map[string]int
	exhaust  map[string]bool
	keyless  map[string]bool // no credential; outlives window resets
	interval time.Duration
	resetAt  time.Time
}

// NewQuotaTracker creates a tracker whose first window ends at now+interval
func NewQuotaTracker(entries []Entry, interval time.Duration, now time.Time) *QuotaTracker {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	q := &QuotaTracker{
		limits:   map[string]int{},
		used:     map[string]int{},
		inflight: map[string]int{},
		exhaust:  map[string]bool{},
		keyless:  map[string]bool{},
		interval: interval,
		resetAt:  now.Add(interval),
	}
	for _, e := range entries {
		name := e.Provider.Name()
		q.order = append(q.order, name)
		q.limits[name] = e.DailyLimit
	}
	return q
}

// RecordUse counts one successful call
func (q *QuotaTracker) RecordUse(name string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.recordLocked(name)
}

func (q *QuotaTracker) recordLocked(name string) {
	q.used[name]++
	if limit := q.limits[name]; limit > 0 && q.used[name] >= limit {
		q.exhaust[name] = true
	}
}

// IsExhausted reports whether name may not be called this window
func (q *QuotaTracker) IsExhausted(name string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.exhaust[name]
}

// MarkExhausted flags name out-of-band, regardless of counted usage
func (q *QuotaTracker) MarkExhausted(name string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.exhaust[name] = true
}

// MarkUnconfigured takes name out of rotation for good: it has no credential,
// so it is neither called again nor counted by AllExhausted
func (q *QuotaTracker) MarkUnconfigured(name string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.keyless[name] = true
}

// IsConfigured reports whether name may ever be called
func (q *QuotaTracker) IsConfigured(name string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return !q.keyless[name]
}

// Reserve claims one call slot. Counted plus in-flight calls never exceed the ceiling,
// so concurrent fetches cannot overshoot it.
func (q *QuotaTracker) Reserve(name string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.exhaust[name] || q.keyless[name] {
		return false
	}
	if limit := q.limits[name]; limit > 0 && q.used[name]+q.inflight[name] >= limit {
		return false
	}
	q.inflight[name]++
	return true
}

// Commit turns a reservation into a counted call
func (q *QuotaTracker) Commit(name string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.inflight[name] > 0 {
		q.inflight[name]--
	}
	q.recordLocked(name)
}

// Release returns an unused reservation
func (q *QuotaTracker) Release(name string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.inflight[name] > 0 {
		q.inflight[name]--
	}
}

// MaybeReset clears the window once now >= resetAt and advances resetAt past now.
// Returns true when a reset happened.
func (q *QuotaTracker) MaybeReset(now time.Time) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if now.Before(q.resetAt) {
		return false
	}

	q.used = map[string]int{}
	q.exhaust = map[string]bool{}
	for !now.Before(q.resetAt) {
		q.resetAt = q.resetAt.Add(q.interval)
	}
	return true
}

// AllExhausted reports whether every configured provider is exhausted.
// False when no provider is configured at all.
func (q *QuotaTracker) AllExhausted() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	configured := 0
	for _, name := range q.order {
		if q.keyless[name] {
			continue
		}
		configured++
		if !q.exhaust[name] {
			return false
		}
	}
	return configured > 0
}

// ResetAt returns the end of the current window
func (q *QuotaTracker) ResetAt() time.Time {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.resetAt
}

// Status returns per-provider state in ladder order
func (q *QuotaTracker) Status() []contracts.ProviderStatus {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]contracts.ProviderStatus, 0, len(q.order))
	for _, name := range q.order {
		out = append(out, contracts.ProviderStatus{
			Name:       name,
			CallsUsed:  q.used[name],
			DailyLimit: q.limits[name],
			Exhausted:  q.exhaust[name],
			Configured: !q.keyless[name],
			ResetAt:    q.resetAt,
		})
	}
	return out
}
