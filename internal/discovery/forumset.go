// Package discovery keeps the scanned forum set and periodically adds the
// forum most represented in the site-wide weekly top listing.
package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wonny/memestock/internal/contracts"
	"github.com/wonny/memestock/pkg/logger"
)

const dynamicKey = "dynamic_forum"

type dynamicRecord struct {
	Forum        string    `json:"forum"`
	DiscoveredAt time.Time `json:"discovered_at"`
}

// ForumSet is the configured forums plus at most one discovered forum
// ⭐ SSOT: 사이클마다 스캔할 포럼 목록은 여기서만
type ForumSet struct {
	mu         sync.RWMutex
	configured []string
	dynamic    dynamicRecord
	limit      int // total forums per cycle, 0 = unbounded

	store  contracts.KVStore
	logger *logger.Logger
}

// NewForumSet creates a set over the configured forums. store may be nil.
func NewForumSet(configured []string, store contracts.KVStore, log *logger.Logger) *ForumSet {
	return &ForumSet{
		configured: append([]string(nil), configured...),
		store:      store,
		logger:     log.WithComponent("discovery"),
	}
}

// WithLimit caps Forums at n entries. The dynamic forum always keeps a slot.
func (s *ForumSet) WithLimit(n int) *ForumSet {
	s.mu.Lock()
	s.limit = n
	s.mu.Unlock()
	return s
}

// Load restores the persisted dynamic forum
func (s *ForumSet) Load(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	data, found, err := s.store.Get(ctx, contracts.NamespaceDiscovery, dynamicKey)
	if err != nil {
		return fmt.Errorf("failed to load dynamic forum: %w", err)
	}
	if !found {
		return nil
	}

	var rec dynamicRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("corrupt dynamic forum record: %w", err)
	}

	s.mu.Lock()
	s.dynamic = rec
	s.mu.Unlock()

	s.logger.WithField("forum", rec.Forum).Info("Restored dynamic forum")
	return nil
}

// Forums returns the configured forums followed by the dynamic one.
// Under a limit the configured list gives up its tail so the dynamic forum is scanned.
func (s *ForumSet) Forums() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dynamic := s.dynamic.Forum
	if dynamic != "" && containsFold(s.configured, dynamic) {
		dynamic = ""
	}

	room := s.limit
	if dynamic != "" {
		room--
	}

	out := make([]string, 0, len(s.configured)+1)
	for _, f := range s.configured {
		if s.limit > 0 && len(out) >= room {
			break
		}
		if containsFold(out, f) {
			continue
		}
		out = append(out, f)
	}
	if dynamic != "" {
		out = append(out, dynamic)
	}
	return out
}

// Configured returns the configured forums only
func (s *ForumSet) Configured() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.configured...)
}

// Dynamic returns the discovered forum, empty when none
func (s *ForumSet) Dynamic() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dynamic.Forum
}

// DiscoveredAt returns when the dynamic forum was chosen
func (s *ForumSet) DiscoveredAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dynamic.DiscoveredAt
}

// Contains reports whether name is configured or already discovered (case-insensitive)
func (s *ForumSet) Contains(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return containsFold(s.configured, name) || strings.EqualFold(s.dynamic.Forum, name)
}

// SetDynamic replaces the dynamic forum and persists the choice
func (s *ForumSet) SetDynamic(ctx context.Context, name string, now time.Time) error {
	rec := dynamicRecord{Forum: name, DiscoveredAt: now.UTC()}

	if s.store != nil {
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if err := s.store.Set(ctx, contracts.NamespaceDiscovery, dynamicKey, data); err != nil {
			return fmt.Errorf("failed to persist dynamic forum: %w", err)
		}
	}

	s.mu.Lock()
	s.dynamic = rec
	s.mu.Unlock()
	return nil
}

func containsFold(list []string, name string) bool {
	for _, f := range list {
		if strings.EqualFold(f, name) {
			return true
		}
	}
	return false
}
