package pricing

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/wonny/memestock/internal/contracts"
	"github.com/wonny/memestock/pkg/logger"
)

// QuoteCache keeps the last good quote per ticker.
// An optional KV store mirrors entries so they survive restarts.
// ⭐ SSOT: last-good 가격 캐싱은 이 구조체에서만
type QuoteCache struct {
	mu     sync.RWMutex
	quotes map[string]*contracts.PriceQuote
	ttl    time.Duration
	store  contracts.KVStore
	logger *logger.Logger
}

// NewQuoteCache creates a cache; entries older than ttl are not served
func NewQuoteCache(ttl time.Duration, store contracts.KVStore, log *logger.Logger) *QuoteCache {
	return &QuoteCache{
		quotes: make(map[string]*contracts.PriceQuote),
		ttl:    ttl,
		store:  store,
		logger: log.WithComponent("quote_cache"),
	}
}

// Put stores a copy of a priced quote. Unpriced quotes are ignored.
func (c *QuoteCache) Put(ctx context.Context, q *contracts.PriceQuote) {
	if !q.HasPrice() {
		return
	}
	cp := *q
	cp.Stale = false

	c.mu.Lock()
	existing, ok := c.quotes[q.Ticker]
	if ok && cp.FetchedAt.Before(existing.FetchedAt) {
		c.mu.Unlock()
		return
	}
	c.quotes[q.Ticker] = &cp
	c.mu.Unlock()

	if c.store == nil {
		return
	}
	data, err := json.Marshal(&cp)
	if err != nil {
		return
	}
	if err := c.store.Set(ctx, contracts.NamespaceQuotes, q.Ticker, data); err != nil {
		c.logger.WithError(err).WithField("ticker", q.Ticker).Warn("Quote mirror write failed")
	}
}

// Get returns a copy of the cached quote when younger than the TTL at now
func (c *QuoteCache) Get(ctx context.Context, ticker string, now time.Time) (*contracts.PriceQuote, bool) {
	c.mu.RLock()
	q, ok := c.quotes[ticker]
	c.mu.RUnlock()

	if !ok && c.store != nil {
		q, ok = c.load(ctx, ticker)
	}
	if !ok || c.expired(q, now) {
		return nil, false
	}

	cp := *q
	return &cp, true
}

func (c *QuoteCache) load(ctx context.Context, ticker string) (*contracts.PriceQuote, bool) {
	data, found, err := c.store.Get(ctx, contracts.NamespaceQuotes, ticker)
	if err != nil {
		c.logger.WithError(err).WithField("ticker", ticker).Debug("Quote mirror read failed")
		return nil, false
	}
	if !found {
		return nil, false
	}
	var q contracts.PriceQuote
	if err := json.Unmarshal(data, &q); err != nil || !q.HasPrice() {
		return nil, false
	}

	c.mu.Lock()
	if _, exists := c.quotes[ticker]; !exists {
		c.quotes[ticker] = &q
	}
	c.mu.Unlock()
	return &q, true
}

func (c *QuoteCache) expired(q *contracts.PriceQuote, now time.Time) bool {
	return c.ttl > 0 && now.Sub(q.FetchedAt) > c.ttl
}

// Len returns the number of in-memory entries
func (c *QuoteCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.quotes)
}

// CleanStale drops in-memory entries older than the TTL
func (c *QuoteCache) CleanStale(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for ticker, q := range c.quotes {
		if c.expired(q, now) {
			delete(c.quotes, ticker)
			count++
		}
	}

	if count > 0 {
		c.logger.WithField("count", count).Info("Cleaned stale quotes from cache")
	}
	return count
}
