// Package lifecycle keeps the persisted first-seen anchor per ticker and
// derives days-active and the cumulative return from it.
package lifecycle

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/wonny/memestock/internal/contracts"
	"github.com/wonny/memestock/pkg/logger"
)

// Tracker records anchors append-only: the first write per ticker wins
// ⭐ SSOT: first_seen 앵커는 한 번 기록되면 절대 덮어쓰지 않음
type Tracker struct {
	store  contracts.KVStore
	logger *logger.Logger
}

// NewTracker creates a tracker over store
func NewTracker(store contracts.KVStore, log *logger.Logger) *Tracker {
	return &Tracker{
		store:  store,
		logger: log.WithComponent("lifecycle"),
	}
}

// Observe anchors ticker on first sight and reports the view at now.
// A store failure is logged and yields a zero view; it never fails the cycle.
func (t *Tracker) Observe(ctx context.Context, ticker string, price *float64, now time.Time) contracts.LifecycleView {
	anchor, err := t.anchor(ctx, ticker, price, now)
	if err != nil {
		t.logger.WithError(err).WithField("ticker", ticker).Warn("Lifecycle anchor unavailable, reporting zero")
		return contracts.LifecycleView{}
	}
	return View(anchor, price, now)
}

// Anchor returns the stored anchor, if any
func (t *Tracker) Anchor(ctx context.Context, ticker string) (contracts.LifecycleAnchor, bool, error) {
	data, found, err := t.store.Get(ctx, contracts.NamespaceLifecycle, ticker)
	if err != nil || !found {
		return contracts.LifecycleAnchor{}, false, err
	}
	var a contracts.LifecycleAnchor
	if err := json.Unmarshal(data, &a); err != nil {
		return contracts.LifecycleAnchor{}, false, fmt.Errorf("corrupt anchor for %s: %w", ticker, err)
	}
	return a, true, nil
}

func (t *Tracker) anchor(ctx context.Context, ticker string, price *float64, now time.Time) (contracts.LifecycleAnchor, error) {
	existing, found, err := t.Anchor(ctx, ticker)
	if err != nil {
		return existing, err
	}
	if found {
		return existing, nil
	}

	fresh := contracts.LifecycleAnchor{FirstSeenAt: now.UTC()}
	if price != nil {
		fresh.FirstSeenPrice = *price
	}
	data, err := json.Marshal(fresh)
	if err != nil {
		return fresh, err
	}

	wrote, err := t.store.SetIfAbsent(ctx, contracts.NamespaceLifecycle, ticker, data)
	if err != nil {
		return fresh, err
	}
	if !wrote {
		// lost a race with another writer; theirs is the anchor
		existing, _, err = t.Anchor(ctx, ticker)
		return existing, err
	}

	t.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"price":  fresh.FirstSeenPrice,
	}).Info("New ticker anchored")
	return fresh, nil
}

// View computes days-active (whole days) and price-since-start
func View(a contracts.LifecycleAnchor, price *float64, now time.Time) contracts.LifecycleView {
	v := contracts.LifecycleView{}

	if elapsed := now.Sub(a.FirstSeenAt); elapsed > 0 {
		v.DaysActive = int(math.Floor(elapsed.Hours() / 24))
	}
	if price != nil && a.FirstSeenPrice != 0 {
		v.PriceSinceStartPct = (*price/a.FirstSeenPrice - 1) * 100
	}
	return v
}
