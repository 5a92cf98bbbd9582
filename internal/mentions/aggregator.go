// Package mentions scans forum posts and folds ticker hits and sentiment
// samples into one AggregateResult per cycle.
package mentions

import (
	"context"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/memestock/internal/contracts"
	"github.com/wonny/memestock/internal/forum"
	"github.com/wonny/memestock/internal/lexicon"
	"github.com/wonny/memestock/pkg/logger"
)

// Config bounds the external calls of one aggregation
type Config struct {
	MaxForums       int
	PostsPerForum   int
	MaxPosts        int // across all forums per cycle, 0 = unbounded
	CommentsPerPost int
	MinKarma        int
	MinTrending     int
	MaxTrending     int
	Workers         int
	BodyLimit       int // post body scanned up to this many characters
	MaxCommentLen   int // comments of this many characters or more are skipped
}

// DefaultConfig returns the stock limits
func DefaultConfig() Config {
	return Config{
		MaxForums:       5,
		PostsPerForum:   30,
		MaxPosts:        100,
		CommentsPerPost: 10,
		MinKarma:        0,
		MinTrending:     2,
		MaxTrending:     15,
		Workers:         3,
		BodyLimit:       1000,
		MaxCommentLen:   1000,
	}
}

// Aggregator turns forum listings into an AggregateResult
// ⭐ SSOT: 멘션 집계는 여기서만
type Aggregator struct {
	client forum.Client
	lex    *lexicon.Lexicon
	cfg    Config
	logger *logger.Logger
}

// NewAggregator creates a new aggregator
func NewAggregator(client forum.Client, lex *lexicon.Lexicon, cfg Config, log *logger.Logger) *Aggregator {
	def := DefaultConfig()
	if cfg.MaxForums <= 0 {
		cfg.MaxForums = def.MaxForums
	}
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.BodyLimit <= 0 {
		cfg.BodyLimit = def.BodyLimit
	}
	if cfg.MaxCommentLen <= 0 {
		cfg.MaxCommentLen = def.MaxCommentLen
	}
	if cfg.MaxTrending <= 0 {
		cfg.MaxTrending = def.MaxTrending
	}
	return &Aggregator{
		client: client,
		lex:    lex,
		cfg:    cfg,
		logger: log.WithComponent("mentions"),
	}
}

// Aggregate scans forums (configured order, capped) and returns the merged result.
// Per-forum failures are logged and skipped; only ctx cancellation is returned.
func (a *Aggregator) Aggregate(ctx context.Context, forums []string) (*contracts.AggregateResult, error) {
	forums = normalizeForums(forums, a.cfg.MaxForums)

	listings := make([]*listing, len(forums))
	g := new(errgroup.Group)
	g.SetLimit(a.cfg.Workers)
	for i, name := range forums {
		i, name := i, name
		g.Go(func() error {
			listings[i] = a.list(ctx, name)
			return nil
		})
	}
	_ = g.Wait()

	budgetPosts(listings, a.cfg.MaxPosts)

	partials := make([]*partial, len(forums))
	g = new(errgroup.Group)
	g.SetLimit(a.cfg.Workers)
	for i, l := range listings {
		i, l := i, l
		g.Go(func() error {
			partials[i] = a.scanForum(ctx, l)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := merge(partials, a.cfg.MinTrending, a.cfg.MaxTrending)

	a.logger.WithFields(map[string]interface{}{
		"forums":         len(result.ForumsProcessed),
		"failed":         len(result.FailedForums),
		"posts":          result.PostsProcessed,
		"total_mentions": result.TotalMentions,
		"trending":       len(result.Trending),
	}).Info("Mentions aggregated")

	return result, nil
}

// listing is one forum's hot posts after the karma filter
type listing struct {
	forum   string
	posts   []forum.Post
	failure string
	err     error
}

func (a *Aggregator) list(ctx context.Context, name string) *listing {
	l := &listing{forum: name}
	posts, err := a.client.ListHot(ctx, name, a.cfg.PostsPerForum)
	if err != nil {
		l.err = err
		l.failure = forum.FailureKind(err)
		return l
	}
	for _, post := range posts {
		if post.Score < a.cfg.MinKarma {
			continue
		}
		l.posts = append(l.posts, post)
	}
	return l
}

// budgetPosts trims listings in forum order so at most maxPosts are scanned in total
func budgetPosts(listings []*listing, maxPosts int) {
	if maxPosts <= 0 {
		return
	}
	remaining := maxPosts
	for _, l := range listings {
		if l == nil || l.err != nil {
			continue
		}
		if len(l.posts) > remaining {
			l.posts = l.posts[:remaining]
		}
		remaining -= len(l.posts)
	}
}

// scanForum never fails: errors are recorded on the partial
func (a *Aggregator) scanForum(ctx context.Context, l *listing) *partial {
	p := newPartial(l.forum)
	log := a.logger.WithField("forum", l.forum)

	if l.err != nil {
		p.failure = l.failure
		log.WithError(l.err).WithField("kind", p.failure).Warn("Skipping forum")
		return p
	}

	for _, post := range l.posts {
		if ctx.Err() != nil {
			break
		}

		ts := post.CreatedAt
		p.scan(a.lex, post.Title, ts)
		p.scan(a.lex, truncate(post.Body, a.cfg.BodyLimit), ts)
		p.posts++

		if a.cfg.CommentsPerPost <= 0 {
			continue
		}
		comments, err := a.client.Comments(ctx, post, a.cfg.CommentsPerPost)
		if err != nil {
			log.WithError(err).WithField("post", post.ID).Debug("Comments unavailable")
			continue
		}
		for _, c := range comments {
			if utf8.RuneCountInString(c.Body) >= a.cfg.MaxCommentLen {
				continue
			}
			p.scan(a.lex, c.Body, ts)
		}
	}

	p.ok = true
	log.WithFields(map[string]interface{}{
		"posts":    p.posts,
		"mentions": p.total(),
	}).Debug("Forum scanned")
	return p
}

// partial is one forum's contribution
type partial struct {
	forum   string
	ok      bool
	failure string
	posts   int

	order   []string // first-encounter order
	counts  map[string]int
	samples []float64

	tickerSentiment map[string]*runningMean
}

type runningMean struct {
	sum float64
	n   int
}

func (m *runningMean) mean() float64 {
	if m.n == 0 {
		return 0
	}
	return m.sum / float64(m.n)
}

func newPartial(forumName string) *partial {
	return &partial{
		forum:           forumName,
		counts:          map[string]int{},
		tickerSentiment: map[string]*runningMean{},
	}
}

func (p *partial) scan(lex *lexicon.Lexicon, text string, ts time.Time) {
	res := lex.Scan(text)

	seen := map[string]bool{}
	for _, t := range res.Hits {
		if _, ok := p.counts[t]; !ok {
			p.order = append(p.order, t)
		}
		p.counts[t]++
		seen[t] = true
	}

	if !res.HasSentiment {
		return
	}
	p.samples = append(p.samples, res.Sentiment)
	for t := range seen {
		p.addSample(contracts.MentionSample{Ticker: t, Forum: p.forum, Sentiment: res.Sentiment, Timestamp: ts})
	}
}

func (p *partial) addSample(s contracts.MentionSample) {
	m, ok := p.tickerSentiment[s.Ticker]
	if !ok {
		m = &runningMean{}
		p.tickerSentiment[s.Ticker] = m
	}
	m.sum += s.Sentiment
	m.n++
}

func (p *partial) total() int {
	n := 0
	for _, c := range p.counts {
		n += c
	}
	return n
}

// merge folds partials in configured forum order so rank ties are deterministic
func merge(partials []*partial, minTrending, maxTrending int) *contracts.AggregateResult {
	res := contracts.EmptyAggregate()

	var order []string
	var samples []float64
	tickerSentiment := map[string]*runningMean{}

	for _, p := range partials {
		if p == nil {
			continue
		}
		if !p.ok {
			res.FailedForums[p.forum] = p.failure
			continue
		}
		res.ForumsProcessed = append(res.ForumsProcessed, p.forum)
		res.PostsProcessed += p.posts

		for _, t := range p.order {
			if _, ok := res.MentionsByTicker[t]; !ok {
				order = append(order, t)
			}
			res.MentionsByTicker[t] += p.counts[t]
			res.TotalMentions += p.counts[t]
		}
		samples = append(samples, p.samples...)
		for t, m := range p.tickerSentiment {
			agg, ok := tickerSentiment[t]
			if !ok {
				agg = &runningMean{}
				tickerSentiment[t] = agg
			}
			agg.sum += m.sum
			agg.n += m.n
		}
	}

	res.AverageSentiment = mean(samples)
	res.SentimentDistribution = distribution(samples)
	for t, m := range tickerSentiment {
		res.SentimentByTicker[t] = m.mean()
	}

	res.Ranked = rank(order, res.MentionsByTicker)
	res.Trending = trending(res.Ranked, minTrending, maxTrending)

	return res
}

// rank sorts by count descending; ties keep encounter order
func rank(order []string, counts map[string]int) []contracts.TickerCount {
	out := make([]contracts.TickerCount, 0, len(order))
	for _, t := range order {
		out = append(out, contracts.TickerCount{Ticker: t, Mentions: counts[t]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Mentions > out[j].Mentions
	})
	return out
}

func trending(ranked []contracts.TickerCount, minMentions, limit int) []contracts.TickerCount {
	out := []contracts.TickerCount{}
	for _, tc := range ranked {
		if tc.Mentions < minMentions {
			break
		}
		out = append(out, tc)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func distribution(samples []float64) contracts.SentimentDistribution {
	var d contracts.SentimentDistribution
	for _, s := range samples {
		switch {
		case s > 0.1:
			d.Positive++
		case s < -0.1:
			d.Negative++
		default:
			d.Neutral++
		}
	}
	return d
}

// normalizeForums trims, drops case-insensitive duplicates and caps the list
func normalizeForums(forums []string, limit int) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(forums))
	for _, f := range forums {
		f = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(f), "r/"))
		key := strings.ToLower(f)
		if f == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, f)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// truncate keeps the first n characters of s
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
