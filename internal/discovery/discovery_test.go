package discovery

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/memestock/internal/forum"
	"github.com/wonny/memestock/internal/kvstore"
	"github.com/wonny/memestock/pkg/logger"
)

func topPosts(forums ...string) []forum.Post {
	out := make([]forum.Post, 0, len(forums))
	for _, f := range forums {
		out = append(out, forum.Post{Forum: f, Title: "x"})
	}
	return out
}

func TestLeader(t *testing.T) {
	tests := []struct {
		name  string
		posts []forum.Post
		want  string
		count int
	}{
		{"empty", nil, "", 0},
		{"clear winner", topPosts("pics", "Superstonk", "superstonk", "pics", "Superstonk"), "Superstonk", 3},
		{"tie goes to first seen", topPosts("funny", "pics", "pics", "funny"), "funny", 2},
		{"blank forums ignored", topPosts("", " ", "news"), "news", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n := Leader(tt.posts)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.count, n)
		})
	}
}

func TestDiscover_AddsNewLeader(t *testing.T) {
	store := kvstore.NewMemory()
	set := NewForumSet([]string{"wallstreetbets", "stocks"}, store, logger.Nop())
	client := forum.NewStatic().AddTop(forum.AllForums, topPosts("Superstonk", "Superstonk", "pics")...)
	d := NewDiscoverer(client, set, 0, logger.Nop())

	added, err := d.Discover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Superstonk", added)
	assert.Equal(t, []string{"wallstreetbets", "stocks", "Superstonk"}, set.Forums())

	// persisted for the next process
	restored := NewForumSet([]string{"wallstreetbets", "stocks"}, store, logger.Nop())
	require.NoError(t, restored.Load(context.Background()))
	assert.Equal(t, "Superstonk", restored.Dynamic())
}

func TestDiscover_LeaderAlreadyConfigured(t *testing.T) {
	set := NewForumSet([]string{"wallstreetbets"}, kvstore.NewMemory(), logger.Nop())
	client := forum.NewStatic().AddTop(forum.AllForums, topPosts("WallStreetBets", "pics")...)

	added, err := NewDiscoverer(client, set, 0, logger.Nop()).Discover(context.Background())
	require.NoError(t, err)
	assert.Empty(t, added)
	assert.Empty(t, set.Dynamic())
	assert.Equal(t, []string{"wallstreetbets"}, set.Forums())
}

func TestDiscover_ReplacesPreviousDynamic(t *testing.T) {
	set := NewForumSet([]string{"stocks"}, nil, logger.Nop())
	require.NoError(t, set.SetDynamic(context.Background(), "pennystocks", time.Now()))

	client := forum.NewStatic().AddTop(forum.AllForums, topPosts("Superstonk")...)
	added, err := NewDiscoverer(client, set, 0, logger.Nop()).Discover(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Superstonk", added)
	assert.Equal(t, []string{"stocks", "Superstonk"}, set.Forums())
}

func TestDiscover_FailureLeavesSetUntouched(t *testing.T) {
	set := NewForumSet([]string{"stocks"}, nil, logger.Nop())
	client := forum.NewStatic().FailForum(forum.AllForums, errors.New("503"))

	added, err := NewDiscoverer(client, set, 0, logger.Nop()).Discover(context.Background())
	assert.Error(t, err)
	assert.Empty(t, added)
	assert.Equal(t, []string{"stocks"}, set.Forums())
}

func TestForumSet_DynamicDuplicateOfConfigured(t *testing.T) {
	set := NewForumSet([]string{"stocks"}, nil, logger.Nop())
	require.NoError(t, set.SetDynamic(context.Background(), "STOCKS", time.Now()))

	assert.Equal(t, []string{"stocks"}, set.Forums())
	assert.True(t, set.Contains("Stocks"))
}

func TestForumSet_LoadWithoutRecord(t *testing.T) {
	set := NewForumSet([]string{"stocks"}, kvstore.NewMemory(), logger.Nop())
	require.NoError(t, set.Load(context.Background()))
	assert.Empty(t, set.Dynamic())
	assert.True(t, set.DiscoveredAt().IsZero())
}

func TestForumSet_LimitKeepsDynamicSlot(t *testing.T) {
	configured := []string{"a", "b", "c", "d", "e"}
	tests := []struct {
		name    string
		limit   int
		dynamic string
		want    []string
	}{
		{"no limit", 0, "new", []string{"a", "b", "c", "d", "e", "new"}},
		{"limit without dynamic", 5, "", []string{"a", "b", "c", "d", "e"}},
		{"limit with dynamic", 5, "new", []string{"a", "b", "c", "d", "new"}},
		{"limit of one", 1, "new", []string{"new"}},
		{"dynamic already configured", 5, "C", []string{"a", "b", "c", "d", "e"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := NewForumSet(configured, nil, logger.Nop()).WithLimit(tt.limit)
			if tt.dynamic != "" {
				require.NoError(t, set.SetDynamic(context.Background(), tt.dynamic, time.Now()))
			}
			assert.Equal(t, tt.want, set.Forums())
		})
	}
}

func TestForumSet_ContainsCappedConfigured(t *testing.T) {
	set := NewForumSet([]string{"a", "b", "c"}, nil, logger.Nop()).WithLimit(2)
	require.NoError(t, set.SetDynamic(context.Background(), "new", time.Now()))

	assert.NotContains(t, set.Forums(), "b")
	assert.True(t, set.Contains("B"), "capped out of the cycle but still configured")
	assert.True(t, set.Contains("new"))
	assert.False(t, set.Contains("other"))
}
