package pricing

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

func newTracker(limits map[string]int) *QuotaTracker {
	var entries []Entry
	for _, name := range []string{"a", "b", "c"} {
		if limit, ok := limits[name]; ok {
			entries = append(entries, Entry{Provider: newFake(name, nil), DailyLimit: limit})
		}
	}
	return NewQuotaTracker(entries, 24*time.Hour, t0)
}

func TestQuotaTracker_ExhaustsAtLimit(t *testing.T) {
	q := newTracker(map[string]int{"a": 3})

	for i := 0; i < 2; i++ {
		q.RecordUse("a")
		assert.False(t, q.IsExhausted("a"), "after %d calls", i+1)
	}
	q.RecordUse("a")
	assert.True(t, q.IsExhausted("a"))

	// stays exhausted until the window ends
	assert.False(t, q.MaybeReset(t0.Add(23*time.Hour)))
	assert.True(t, q.IsExhausted("a"))

	assert.True(t, q.MaybeReset(t0.Add(24*time.Hour)))
	assert.False(t, q.IsExhausted("a"))
	assert.Equal(t, t0.Add(48*time.Hour), q.ResetAt())
}

func TestQuotaTracker_Unlimited(t *testing.T) {
	q := newTracker(map[string]int{"a": 0})
	for i := 0; i < 10000; i++ {
		q.RecordUse("a")
	}
	assert.False(t, q.IsExhausted("a"))
	assert.Equal(t, -1, q.Status()[0].Remaining())
}

func TestQuotaTracker_MarkExhausted(t *testing.T) {
	q := newTracker(map[string]int{"a": 500, "b": 0})

	q.MarkExhausted("a")
	assert.True(t, q.IsExhausted("a"))
	assert.False(t, q.Reserve("a"))
	assert.False(t, q.AllExhausted())

	q.MarkExhausted("b")
	assert.True(t, q.AllExhausted())
}

func TestQuotaTracker_ResetSkipsMissedWindows(t *testing.T) {
	q := newTracker(map[string]int{"a": 1})
	q.RecordUse("a")

	assert.True(t, q.MaybeReset(t0.Add(73*time.Hour)))
	assert.Equal(t, t0.Add(96*time.Hour), q.ResetAt())
	assert.False(t, q.IsExhausted("a"))
}

func TestQuotaTracker_ReserveNeverOvershoots(t *testing.T) {
	q := newTracker(map[string]int{"a": 5})

	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if q.Reserve("a") {
				mu.Lock()
				granted++
				mu.Unlock()
				q.Commit("a")
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, granted)
	assert.True(t, q.IsExhausted("a"))
}

func TestQuotaTracker_ReleaseFreesSlot(t *testing.T) {
	q := newTracker(map[string]int{"a": 1})

	require.True(t, q.Reserve("a"))
	assert.False(t, q.Reserve("a"), "in-flight call holds the only slot")

	q.Release("a")
	assert.True(t, q.Reserve("a"))
	assert.False(t, q.IsExhausted("a"))
}

func TestQuotaTracker_Status(t *testing.T) {
	q := newTracker(map[string]int{"a": 0, "b": 500, "c": 5000})
	q.RecordUse("b")
	q.RecordUse("b")

	st := q.Status()
	require.Len(t, st, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{st[0].Name, st[1].Name, st[2].Name})
	assert.Equal(t, 2, st[1].CallsUsed)
	assert.Equal(t, 498, st[1].Remaining())
	assert.Equal(t, t0.Add(24*time.Hour), st[2].ResetAt)
}

func TestQuotaTracker_UnconfiguredIgnoredByAllExhausted(t *testing.T) {
	q := newTracker(map[string]int{"a": 1, "b": 25, "c": 5})

	q.MarkUnconfigured("b")
	q.MarkUnconfigured("c")
	assert.False(t, q.Reserve("b"))
	assert.False(t, q.AllExhausted())

	q.RecordUse("a")
	assert.True(t, q.AllExhausted())

	// a window reset does not bring a keyless provider back
	require.True(t, q.MaybeReset(t0.Add(24*time.Hour)))
	assert.False(t, q.IsConfigured("b"))
	assert.False(t, q.AllExhausted())
}

func TestQuotaTracker_NothingConfigured(t *testing.T) {
	q := newTracker(map[string]int{"a": 1})
	q.MarkUnconfigured("a")
	assert.False(t, q.AllExhausted())
}
