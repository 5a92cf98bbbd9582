package contracts

import "time"

// MentionSample is one ticker hit from one scanned text.
// Aggregated immediately, never retained past the cycle.
type MentionSample struct {
	Ticker    string    `json:"ticker"`
	Forum     string    `json:"forum"`
	Sentiment float64   `json:"sentiment"`
	Timestamp time.Time `json:"timestamp"`
}

// TickerCount is one row of a ranked mention list
type TickerCount struct {
	Ticker   string `json:"ticker"`
	Mentions int    `json:"mentions"`
}

// SentimentDistribution buckets sentiment samples
// positive > 0.1, negative < -0.1, neutral otherwise
type SentimentDistribution struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
}

// Total returns the number of samples counted
func (d SentimentDistribution) Total() int {
	return d.Positive + d.Neutral + d.Negative
}

// AggregateResult is the per-cycle output of mention aggregation
// ⭐ SSOT: TotalMentions == sum(MentionsByTicker)
type AggregateResult struct {
	TotalMentions         int                   `json:"total_mentions"`
	AverageSentiment      float64               `json:"average_sentiment"`
	MentionsByTicker      map[string]int        `json:"mentions_by_ticker"`
	SentimentDistribution SentimentDistribution `json:"sentiment_distribution"`

	// Ranked holds every ticker in descending mention order (stable by first encounter)
	Ranked []TickerCount `json:"ranked"`

	// Trending is Ranked filtered by the minimum and truncated to the maximum
	Trending []TickerCount `json:"trending"`

	// SentimentByTicker is the mean sample of texts mentioning the ticker
	SentimentByTicker map[string]float64 `json:"sentiment_by_ticker"`

	PostsProcessed  int      `json:"posts_processed"`
	ForumsProcessed []string `json:"forums_processed"`

	// FailedForums maps a skipped forum to its failure kind
	FailedForums map[string]string `json:"failed_forums,omitempty"`
}

// EmptyAggregate returns a zero result with initialised maps
func EmptyAggregate() *AggregateResult {
	return &AggregateResult{
		MentionsByTicker:  map[string]int{},
		SentimentByTicker: map[string]float64{},
		Ranked:            []TickerCount{},
		Trending:          []TickerCount{},
		ForumsProcessed:   []string{},
		FailedForums:      map[string]string{},
	}
}

// IsConsistent checks the total/sum invariant
func (a *AggregateResult) IsConsistent() bool {
	sum := 0
	for _, n := range a.MentionsByTicker {
		sum += n
	}
	return sum == a.TotalMentions
}

// TopTickers returns up to n tickers in rank order
func (a *AggregateResult) TopTickers(n int) []string {
	if n > len(a.Ranked) {
		n = len(a.Ranked)
	}
	out := make([]string, 0, n)
	for _, tc := range a.Ranked[:n] {
		out = append(out, tc.Ticker)
	}
	return out
}
