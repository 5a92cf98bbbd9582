package pricing

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/memestock/internal/contracts"
	"github.com/wonny/memestock/pkg/logger"
)

// DefaultMaxTickers bounds price lookups per cycle
const DefaultMaxTickers = 10

// Ladder tries providers in a fixed order per ticker; first success wins.
// ⭐ SSOT: 가격 조회는 이 래더를 통해서만
type Ladder struct {
	entries []Entry
	quota   *QuotaTracker
	cache   *QuoteCache
	names   func(string) string
	workers int
	now     func() time.Time
	logger  *logger.Logger
}

// NewLadder creates a ladder. cache and names may be nil.
func NewLadder(entries []Entry, quota *QuotaTracker, cache *QuoteCache, names func(string) string, workers int, log *logger.Logger) *Ladder {
	if workers <= 0 {
		workers = 4
	}
	return &Ladder{
		entries: entries,
		quota:   quota,
		cache:   cache,
		names:   names,
		workers: workers,
		now:     time.Now,
		logger:  log.WithComponent("pricing"),
	}
}

// Quota returns the tracker owned by this ladder
func (l *Ladder) Quota() *QuotaTracker {
	return l.quota
}

// Status returns per-provider quota state in ladder order
func (l *Ladder) Status() []contracts.ProviderStatus {
	return l.quota.Status()
}

// Cache returns the last-good cache, nil when disabled
func (l *Ladder) Cache() *QuoteCache {
	return l.cache
}

// FetchQuotes returns one quote per ticker for the first maxTickers distinct
// tickers in priority order. Every returned ticker has an entry; unknown
// prices carry a status provider name.
func (l *Ladder) FetchQuotes(ctx context.Context, tickers []string, maxTickers int) map[string]*contracts.PriceQuote {
	if maxTickers <= 0 {
		maxTickers = DefaultMaxTickers
	}
	tickers = limitTickers(tickers, maxTickers)

	l.quota.MaybeReset(l.now())

	var mu sync.Mutex
	out := make(map[string]*contracts.PriceQuote, len(tickers))

	// collect-all: workers never return an error, so siblings are never cancelled
	g := new(errgroup.Group)
	g.SetLimit(l.workers)
	for _, t := range tickers {
		t := t
		g.Go(func() error {
			q := l.FetchQuote(ctx, t)
			mu.Lock()
			out[t] = q
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	priced := 0
	for _, q := range out {
		if q.HasPrice() {
			priced++
		}
	}
	l.logger.WithFields(map[string]interface{}{
		"requested": len(tickers),
		"priced":    priced,
	}).Info("Quotes fetched")

	return out
}

// FetchQuote walks the ladder for a single ticker
func (l *Ladder) FetchQuote(ctx context.Context, ticker string) *contracts.PriceQuote {
	for _, e := range l.entries {
		if ctx.Err() != nil {
			break
		}
		name := e.Provider.Name()
		log := l.logger.WithFields(map[string]interface{}{"provider": name, "ticker": ticker})

		if !l.quota.Reserve(name) {
			log.Debug("Provider exhausted, skipping")
			continue
		}

		res := e.Provider.FetchQuote(ctx, ticker)
		switch res.Outcome {
		case OutcomeOK:
			l.quota.Commit(name)
			q := l.toQuote(ticker, name, res.Quote)
			if l.cache != nil {
				l.cache.Put(ctx, q)
			}
			return q

		case OutcomeRateLimited:
			l.quota.Release(name)
			l.quota.MarkExhausted(name)
			log.WithError(res.Err).Warn("Provider rate limited, marked exhausted")

		default:
			l.quota.Release(name)
			if errors.Is(res.Err, ErrMissingCredential) {
				l.quota.MarkUnconfigured(name)
				log.Info("Provider has no credential, removed from rotation")
				continue
			}
			log.WithError(res.Err).Debug("Provider unavailable")
		}
	}

	return l.fallback(ctx, ticker)
}

func (l *Ladder) fallback(ctx context.Context, ticker string) *contracts.PriceQuote {
	now := l.now()
	if l.cache != nil {
		if q, ok := l.cache.Get(ctx, ticker, now); ok {
			q.Stale = true
			l.logger.WithField("ticker", ticker).Info("Serving last-good quote")
			return q
		}
	}

	status := contracts.ProviderNoData
	if l.quota.AllExhausted() {
		status = contracts.ProviderExhausted
	}
	return &contracts.PriceQuote{
		Ticker:      ticker,
		Provider:    status,
		CompanyName: l.companyName(ticker, ""),
		FetchedAt:   now,
	}
}

func (l *Ladder) toQuote(ticker, provider string, raw RawQuote) *contracts.PriceQuote {
	price := raw.Current
	return &contracts.PriceQuote{
		Ticker:         ticker,
		CurrentPrice:   &price,
		PriceChangePct: raw.ChangePct(),
		Volume:         raw.Volume,
		Provider:       provider,
		CompanyName:    l.companyName(ticker, raw.CompanyName),
		FetchedAt:      l.now(),
	}
}

func (l *Ladder) companyName(ticker, reported string) string {
	if reported != "" {
		return reported
	}
	if l.names != nil {
		if n := l.names(ticker); n != "" {
			return n
		}
	}
	return ticker
}

// limitTickers upper-cases, dedupes and truncates while keeping priority order
func limitTickers(tickers []string, limit int) []string {
	seen := map[string]bool{}
	out := make([]string, 0, limit)
	for _, t := range tickers {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
		if len(out) >= limit {
			break
		}
	}
	return out
}
