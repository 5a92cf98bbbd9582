package discovery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wonny/memestock/internal/contracts"
	"github.com/wonny/memestock/internal/forum"
	"github.com/wonny/memestock/pkg/logger"
)

// DefaultListingSize is how many weekly top posts are tallied
const DefaultListingSize = 100

// Discoverer tallies the weekly site-wide top listing by forum
type Discoverer struct {
	client forum.Client
	set    *ForumSet
	limit  int
	now    func() time.Time
	logger *logger.Logger
}

var _ contracts.Discoverer = (*Discoverer)(nil)

// NewDiscoverer creates a discoverer that updates set
func NewDiscoverer(client forum.Client, set *ForumSet, limit int, log *logger.Logger) *Discoverer {
	if limit <= 0 {
		limit = DefaultListingSize
	}
	return &Discoverer{
		client: client,
		set:    set,
		limit:  limit,
		now:    time.Now,
		logger: log.WithComponent("discovery"),
	}
}

// Discover runs one pass. It returns the forum it added, or "" when the
// leader is already scanned. Errors are for the caller to log; the forum set
// is left untouched on failure.
func (d *Discoverer) Discover(ctx context.Context) (string, error) {
	posts, err := d.client.ListTop(ctx, forum.AllForums, d.limit, forum.WindowWeek)
	if err != nil {
		return "", fmt.Errorf("top listing failed: %w", err)
	}

	leader, count := Leader(posts)
	log := d.logger.WithFields(map[string]interface{}{
		"posts":  len(posts),
		"leader": leader,
		"count":  count,
	})

	if leader == "" {
		log.Debug("No forum in weekly listing")
		return "", nil
	}
	if d.set.Contains(leader) {
		log.Debug("Weekly leader already scanned")
		return "", nil
	}

	if err := d.set.SetDynamic(ctx, leader, d.now()); err != nil {
		return "", err
	}
	log.Info("Added dynamic forum")
	return leader, nil
}

// Leader returns the most frequent forum in posts; ties go to the first seen
func Leader(posts []forum.Post) (string, int) {
	counts := map[string]int{}
	display := map[string]string{}
	var order []string

	for _, p := range posts {
		name := strings.TrimSpace(p.Forum)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, ok := counts[key]; !ok {
			order = append(order, key)
			display[key] = name
		}
		counts[key]++
	}

	best, bestN := "", 0
	for _, key := range order {
		if counts[key] > bestN {
			best, bestN = key, counts[key]
		}
	}
	if best == "" {
		return "", 0
	}
	return display[best], bestN
}
