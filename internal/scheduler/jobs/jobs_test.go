package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/memestock/internal/contracts"
	"github.com/wonny/memestock/pkg/logger"
)

type stubRefresher struct {
	snap  *contracts.Snapshot
	calls int
}

func (r *stubRefresher) Refresh(ctx context.Context) *contracts.Snapshot {
	r.calls++
	return r.snap
}

type stubDiscoverer struct {
	added string
	err   error
}

func (d *stubDiscoverer) Discover(ctx context.Context) (string, error) {
	return d.added, d.err
}

type stubCleaner struct {
	removed int
	at      time.Time
}

func (c *stubCleaner) CleanStale(now time.Time) int {
	c.at = now
	return c.removed
}

func TestRefreshJob(t *testing.T) {
	now := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		snap    *contracts.Snapshot
		wantErr bool
	}{
		{"success", &contracts.Snapshot{Status: contracts.StatusSuccess}, false},
		{"starting", contracts.EmptySnapshot(contracts.StatusStarting, now), false},
		{"timeout", contracts.EmptySnapshot(contracts.StatusTimeout, now), true},
		{"error", contracts.EmptySnapshot("error: boom", now), true},
		{"nil", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &stubRefresher{snap: tt.snap}
			job := NewRefreshJob(r, 5*time.Minute, logger.Nop())

			err := job.Run(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, 1, r.calls)
		})
	}
}

func TestRefreshJob_Schedule(t *testing.T) {
	job := NewRefreshJob(&stubRefresher{}, 5*time.Minute, logger.Nop())
	assert.Equal(t, "refresh", job.Name())
	assert.Equal(t, "@every 5m0s", job.Schedule())
}

func TestDiscoveryJob(t *testing.T) {
	job := NewDiscoveryJob(&stubDiscoverer{added: "superstonk"}, 168*time.Hour, logger.Nop())
	assert.Equal(t, "@every 168h0m0s", job.Schedule())
	assert.NoError(t, job.Run(context.Background()))

	job = NewDiscoveryJob(&stubDiscoverer{}, time.Hour, logger.Nop())
	assert.NoError(t, job.Run(context.Background()))

	cause := errors.New("listing failed")
	job = NewDiscoveryJob(&stubDiscoverer{err: cause}, time.Hour, logger.Nop())
	err := job.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
}

func TestCacheCleanupJob(t *testing.T) {
	now := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)
	c := &stubCleaner{removed: 3}
	job := NewCacheCleanupJob(c, logger.Nop())
	job.now = func() time.Time { return now }

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, now, c.at)
	assert.Equal(t, "quote_cache_cleanup", job.Name())
}
