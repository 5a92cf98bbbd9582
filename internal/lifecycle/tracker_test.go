package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/memestock/internal/contracts"
	"github.com/wonny/memestock/internal/kvstore"
	"github.com/wonny/memestock/pkg/logger"
)

var day0 = time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

func ptr(f float64) *float64 { return &f }

func TestObserve_PriceSinceStart(t *testing.T) {
	tr := NewTracker(kvstore.NewMemory(), logger.Nop())
	ctx := context.Background()

	first := tr.Observe(ctx, "GME", ptr(100), day0)
	assert.Equal(t, 0, first.DaysActive)
	assert.Equal(t, 0.0, first.PriceSinceStartPct)

	later := tr.Observe(ctx, "GME", ptr(150), day0.Add(3*24*time.Hour+time.Hour))
	assert.Equal(t, 3, later.DaysActive)
	assert.InDelta(t, 50.0, later.PriceSinceStartPct, 1e-9)

	unknown := tr.Observe(ctx, "GME", nil, day0.Add(4*24*time.Hour))
	assert.Equal(t, 0.0, unknown.PriceSinceStartPct)
	assert.Equal(t, 4, unknown.DaysActive)
}

func TestObserve_AnchorNeverOverwritten(t *testing.T) {
	tr := NewTracker(kvstore.NewMemory(), logger.Nop())
	ctx := context.Background()

	tr.Observe(ctx, "AMC", ptr(5), day0)
	for i, p := range []float64{7, 3, 100} {
		tr.Observe(ctx, "AMC", ptr(p), day0.Add(time.Duration(i+1)*time.Hour))
	}
	// drops out of the top-N for a while, then returns
	tr.Observe(ctx, "AMC", nil, day0.Add(30*24*time.Hour))

	a, found, err := tr.Anchor(ctx, "AMC")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, a.FirstSeenAt.Equal(day0))
	assert.Equal(t, 5.0, a.FirstSeenPrice)
}

func TestObserve_UnknownFirstPrice(t *testing.T) {
	tr := NewTracker(kvstore.NewMemory(), logger.Nop())
	ctx := context.Background()

	tr.Observe(ctx, "BB", nil, day0)
	v := tr.Observe(ctx, "BB", ptr(10), day0.Add(48*time.Hour))

	assert.Equal(t, 2, v.DaysActive)
	assert.Equal(t, 0.0, v.PriceSinceStartPct, "zero first price disables the return")
}

func TestObserve_SurvivesRestart(t *testing.T) {
	store := kvstore.NewMemory()
	ctx := context.Background()

	NewTracker(store, logger.Nop()).Observe(ctx, "NOK", ptr(4), day0)

	v := NewTracker(store, logger.Nop()).Observe(ctx, "NOK", ptr(5), day0.Add(10*24*time.Hour))
	assert.Equal(t, 10, v.DaysActive)
	assert.InDelta(t, 25.0, v.PriceSinceStartPct, 1e-9)
}

type brokenStore struct{ *kvstore.Memory }

func (*brokenStore) Get(context.Context, string, string) ([]byte, bool, error) {
	return nil, false, errors.New("disk on fire")
}

func TestObserve_StoreFailureYieldsZero(t *testing.T) {
	tr := NewTracker(&brokenStore{Memory: kvstore.NewMemory()}, logger.Nop())

	v := tr.Observe(context.Background(), "GME", ptr(100), day0)
	assert.Equal(t, contracts.LifecycleView{}, v)
}

func TestObserve_CorruptAnchor(t *testing.T) {
	store := kvstore.NewMemory()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, contracts.NamespaceLifecycle, "GME", []byte(`not json`)))

	v := NewTracker(store, logger.Nop()).Observe(ctx, "GME", ptr(1), day0)
	assert.Equal(t, contracts.LifecycleView{}, v)

	raw, _, _ := store.Get(ctx, contracts.NamespaceLifecycle, "GME")
	assert.Equal(t, "not json", string(raw), "corrupt anchor is left untouched")
}

func TestView(t *testing.T) {
	a := contracts.LifecycleAnchor{FirstSeenAt: day0, FirstSeenPrice: 20}

	tests := []struct {
		name  string
		price *float64
		now   time.Time
		days  int
		pct   float64
	}{
		{"same instant", ptr(20), day0, 0, 0},
		{"23h is zero days", ptr(10), day0.Add(23 * time.Hour), 0, -50},
		{"exactly one day", ptr(30), day0.Add(24 * time.Hour), 1, 50},
		{"clock went backwards", ptr(20), day0.Add(-time.Hour), 0, 0},
		{"unknown price", nil, day0.Add(72 * time.Hour), 3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := View(a, tt.price, tt.now)
			assert.Equal(t, tt.days, v.DaysActive)
			assert.InDelta(t, tt.pct, v.PriceSinceStartPct, 1e-9)
		})
	}
}
