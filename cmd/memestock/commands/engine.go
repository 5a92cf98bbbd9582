package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/wonny/memestock/internal/contracts"
	"github.com/wonny/memestock/internal/discovery"
	"github.com/wonny/memestock/internal/external/alphavantage"
	"github.com/wonny/memestock/internal/external/polygon"
	"github.com/wonny/memestock/internal/external/reddit"
	"github.com/wonny/memestock/internal/external/yahoo"
	"github.com/wonny/memestock/internal/insight"
	"github.com/wonny/memestock/internal/kvstore"
	"github.com/wonny/memestock/internal/lexicon"
	"github.com/wonny/memestock/internal/lifecycle"
	"github.com/wonny/memestock/internal/mentions"
	"github.com/wonny/memestock/internal/pricing"
	"github.com/wonny/memestock/pkg/config"
	"github.com/wonny/memestock/pkg/httputil"
	"github.com/wonny/memestock/pkg/logger"
)

// engine is the fully wired insight pipeline shared by every command
type engine struct {
	cfg *config.Config
	log *logger.Logger

	store        contracts.KVStore
	lex          *lexicon.Lexicon
	forums       *discovery.ForumSet
	reddit       *reddit.Client
	ladder       *pricing.Ladder
	tracker      *lifecycle.Tracker
	aggregator   *mentions.Aggregator
	orchestrator *insight.Orchestrator
	discoverer   *discovery.Discoverer

	sentry bool
}

// loadConfig loads config and builds the process logger
func loadConfig() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, logger.New(cfg), nil
}

// buildEngine wires every component from cfg
func buildEngine(ctx context.Context, cfg *config.Config, log *logger.Logger) (*engine, error) {
	e := &engine{cfg: cfg, log: log}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Env,
		}); err != nil {
			log.WithError(err).Warn("Sentry init failed; continuing without error reporting")
		} else {
			e.sentry = true
		}
	}

	// 1. Lexicon
	lex, err := lexicon.LoadOrDefault(cfg.Insight.LexiconFile)
	if err != nil {
		return nil, fmt.Errorf("load lexicon: %w", err)
	}
	e.lex = lex

	// 2. Store
	store, err := kvstore.Open(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	e.store = store

	// 3. Forum set (configured + persisted dynamic forum)
	e.forums = discovery.NewForumSet(cfg.Insight.Forums, store, log).WithLimit(cfg.Insight.MaxForums)
	if err := e.forums.Load(ctx); err != nil {
		log.WithError(err).Warn("Dynamic forum not restored")
	}

	// 4. Reddit
	redditHTTP := httputil.New(log).
		WithUserAgent(cfg.Reddit.UserAgent).
		WithRateLimit(1.5, 5)
	e.reddit = reddit.NewClient(redditHTTP, cfg.Reddit, log)

	// 5. Price ladder
	e.ladder = newLadder(cfg, store, lex, log)

	// 6. Lifecycle, aggregation, orchestration
	e.tracker = lifecycle.NewTracker(store, log)
	e.aggregator = mentions.NewAggregator(e.reddit, lex, mentions.Config{
		MaxForums:       cfg.Insight.MaxForums,
		PostsPerForum:   cfg.Insight.PostsPerForum,
		MaxPosts:        cfg.Insight.MaxPosts,
		CommentsPerPost: cfg.Insight.CommentsPerPost,
		MinKarma:        cfg.Insight.MinKarma,
		MinTrending:     cfg.Insight.MinTrendingMentions,
		MaxTrending:     cfg.Insight.MaxTrending,
		Workers:         cfg.Insight.ForumWorkers,
	}, log)

	e.orchestrator = insight.NewOrchestrator(
		e.aggregator,
		e.ladder,
		e.tracker,
		e.forums,
		insight.OptionsFromConfig(cfg),
		log,
	)
	if e.sentry {
		e.orchestrator.WithReporter(insight.SentryReporter{})
	}

	e.discoverer = discovery.NewDiscoverer(e.reddit, e.forums, discovery.DefaultListingSize, log)

	return e, nil
}

// newLadder builds yahoo -> alpha_vantage -> polygon, each behind a breaker
func newLadder(cfg *config.Config, store contracts.KVStore, lex *lexicon.Lexicon, log *logger.Logger) *pricing.Ladder {
	p := cfg.Providers
	priceHTTP := httputil.NewWithTimeout(log, 10*time.Second).
		WithRetry(1, 500*time.Millisecond).
		WithRateLimit(5, 5)

	providers := []struct {
		provider pricing.Provider
		limit    int
	}{
		{yahoo.NewClient(priceHTTP, p.YahooBaseURL, log), p.YahooDailyLimit},
		{alphavantage.NewClient(priceHTTP, p.AlphaVantageBaseURL, p.AlphaVantageKey, log), p.AlphaVantageDailyLimit},
		{polygon.NewClient(priceHTTP, p.PolygonBaseURL, p.PolygonKey, log), p.PolygonDailyLimit},
	}

	entries := make([]pricing.Entry, 0, len(providers))
	for _, pr := range providers {
		entries = append(entries, pricing.Entry{
			Provider:   pricing.WithBreaker(pr.provider, pricing.BreakerSettings(pr.provider.Name())),
			DailyLimit: pr.limit,
		})
	}

	quota := pricing.NewQuotaTracker(entries, cfg.Insight.QuotaResetInterval, time.Now())
	cache := pricing.NewQuoteCache(p.QuoteCacheTTL, store, log)
	return pricing.NewLadder(entries, quota, cache, lex.CompanyName, p.Workers, log)
}

// Close releases the store and flushes error reporting
func (e *engine) Close() {
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			e.log.WithError(err).Warn("Store close failed")
		}
	}
	if e.sentry {
		sentry.Flush(2 * time.Second)
	}
}
