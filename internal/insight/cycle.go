package insight

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/memestock/internal/classifier"
	"github.com/wonny/memestock/internal/contracts"
)

// runCycle is the happy path: mentions, prices, then classification.
// Each stage starts only after the previous one has returned.
func (o *Orchestrator) runCycle(ctx context.Context, cycleID string, gen uint64) (*contracts.Snapshot, error) {
	o.setStateFor(gen, contracts.CycleFetchingMentions)
	agg, err := o.fetchMentions(ctx)
	if err != nil {
		return nil, err
	}

	o.setStateFor(gen, contracts.CycleFetchingPrices)
	trending := agg.Trending
	tickers := make([]string, 0, len(trending))
	for _, tc := range trending {
		tickers = append(tickers, tc.Ticker)
	}
	quotes, err := o.fetchPrices(ctx, tickers)
	if err != nil {
		return nil, err
	}

	o.setStateFor(gen, contracts.CycleClassifying)
	now := o.now()
	top := o.buildTop(ctx, agg, quotes, now)
	stage := classifier.Classify(classifier.InputFor(leader(top), agg.AverageSentiment), o.opts.Thresholds)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &contracts.Snapshot{
		CycleID:      cycleID,
		Aggregate:    agg,
		Quotes:       quotes,
		Top:          top,
		Stage:        stage,
		Providers:    o.quotes.Status(),
		DynamicForum: o.forums.Dynamic(),
		GeneratedAt:  now,
	}, nil
}

func (o *Orchestrator) fetchMentions(ctx context.Context) (*contracts.AggregateResult, error) {
	mctx, cancel := withOptionalTimeout(ctx, o.opts.MentionTimeout)
	defer cancel()

	agg, err := o.mentions.Aggregate(mctx, o.forums.Forums())
	if err != nil {
		return nil, fmt.Errorf("mention stage: %w", err)
	}
	if agg == nil {
		return contracts.EmptyAggregate(), nil
	}
	return agg, nil
}

// fetchPrices treats a stage timeout as a cycle failure: a snapshot is never
// published from partially priced data
func (o *Orchestrator) fetchPrices(ctx context.Context, tickers []string) (map[string]*contracts.PriceQuote, error) {
	if len(tickers) == 0 {
		return map[string]*contracts.PriceQuote{}, nil
	}

	pctx, cancel := withOptionalTimeout(ctx, o.opts.PriceTimeout)
	defer cancel()

	quotes := o.quotes.FetchQuotes(pctx, tickers, o.opts.MaxPriceTickers)
	if err := pctx.Err(); err != nil {
		return nil, fmt.Errorf("price stage: %w", err)
	}
	if quotes == nil {
		quotes = map[string]*contracts.PriceQuote{}
	}
	return quotes, nil
}

func (o *Orchestrator) buildTop(ctx context.Context, agg *contracts.AggregateResult, quotes map[string]*contracts.PriceQuote, now time.Time) []contracts.TopEntity {
	n := o.opts.TopN
	if n > len(agg.Trending) {
		n = len(agg.Trending)
	}

	top := make([]contracts.TopEntity, 0, n)
	for i, tc := range agg.Trending[:n] {
		q := quotes[tc.Ticker]
		sentiment := agg.SentimentByTicker[tc.Ticker]

		var price *float64
		change := 0.0
		name := tc.Ticker
		if q != nil {
			price = q.CurrentPrice
			change = q.PriceChangePct
			if q.CompanyName != "" {
				name = q.CompanyName
			}
		}

		view := o.lifecycle.Observe(ctx, tc.Ticker, price, now)
		scores := classifier.Score(tc.Mentions, sentiment, change, o.opts.Weights)

		top = append(top, contracts.TopEntity{
			Rank:               i + 1,
			Ticker:             tc.Ticker,
			CompanyName:        name,
			Mentions:           tc.Mentions,
			Sentiment:          sentiment,
			Quote:              q,
			DaysActive:         view.DaysActive,
			PriceSinceStartPct: view.PriceSinceStartPct,
			ImpactScore:        scores.ImpactScore,
			MemeLikelihood:     scores.MemeLikelihood,
			DeclineFlag:        scores.DeclineFlag,
		})
	}
	return top
}

func leader(top []contracts.TopEntity) *contracts.TopEntity {
	if len(top) == 0 {
		return nil
	}
	return &top[0]
}

func withOptionalTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
