package insight

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wonny/memestock/internal/contracts"
)

type fakeMentions struct {
	fn func(ctx context.Context, forums []string) (*contracts.AggregateResult, error)

	calls       atomic.Int32
	inflight    atomic.Int32
	maxInflight atomic.Int32
}

func (f *fakeMentions) Aggregate(ctx context.Context, forums []string) (*contracts.AggregateResult, error) {
	f.calls.Add(1)
	n := f.inflight.Add(1)
	defer f.inflight.Add(-1)
	for {
		m := f.maxInflight.Load()
		if n <= m || f.maxInflight.CompareAndSwap(m, n) {
			break
		}
	}
	return f.fn(ctx, forums)
}

type fakeQuotes struct {
	mu     sync.Mutex
	quotes map[string]*contracts.PriceQuote
	block  bool
	asked  []string
}

func (f *fakeQuotes) FetchQuotes(ctx context.Context, tickers []string, maxTickers int) map[string]*contracts.PriceQuote {
	f.mu.Lock()
	f.asked = append(f.asked, tickers...)
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return nil
	}
	out := map[string]*contracts.PriceQuote{}
	for _, t := range tickers {
		if q, ok := f.quotes[t]; ok {
			out[t] = q
		} else {
			out[t] = &contracts.PriceQuote{Ticker: t, Provider: contracts.ProviderNoData}
		}
	}
	return out
}

func (f *fakeQuotes) Status() []contracts.ProviderStatus {
	return []contracts.ProviderStatus{{Name: "yahoo"}}
}

type fakeForums struct {
	forums  []string
	dynamic string
}

func (f fakeForums) Forums() []string { return f.forums }
func (f fakeForums) Dynamic() string  { return f.dynamic }

type fakeLifecycle struct{}

func (fakeLifecycle) Observe(context.Context, string, *float64, time.Time) contracts.LifecycleView {
	return contracts.LifecycleView{DaysActive: 2, PriceSinceStartPct: 5}
}

type recordingReporter struct {
	mu   sync.Mutex
	errs []error
}

func (r *recordingReporter) Report(err error, _ map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *recordingReporter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errs)
}

func price(p, pct float64) *contracts.PriceQuote {
	return &contracts.PriceQuote{CurrentPrice: &p, PriceChangePct: pct, Provider: "yahoo", CompanyName: "GameStop Corp", Volume: 1234567}
}

func aggregateOf(counts ...contracts.TickerCount) *contracts.AggregateResult {
	agg := contracts.EmptyAggregate()
	for _, tc := range counts {
		agg.MentionsByTicker[tc.Ticker] = tc.Mentions
		agg.TotalMentions += tc.Mentions
		agg.Ranked = append(agg.Ranked, tc)
		agg.Trending = append(agg.Trending, tc)
		agg.SentimentByTicker[tc.Ticker] = 0.5
	}
	agg.AverageSentiment = 0.4
	return agg
}
