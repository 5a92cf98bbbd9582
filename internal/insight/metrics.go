package insight

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"

	"github.com/wonny/memestock/internal/contracts"
)

// Metric is one named, externally visible value
type Metric struct {
	Name       string                 `json:"name"`
	Value      interface{}            `json:"value"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

// Metric names
const (
	MetricTotalMentions     = "total_mentions"
	MetricAverageSentiment  = "average_sentiment"
	MetricTrendingCount     = "trending_count"
	MetricStage             = "stage"
	MetricDaysActive        = "days_active"
	MetricPriceSinceStart   = "price_since_start_pct"
	MetricProviders         = "providers"
	MetricStatus            = "status"
	MetricLastUpdateSuccess = "last_update_success"
	MetricDynamicForum      = "dynamic_forum"
)

// NoData is shown for an empty top-N slot
const NoData = "No data"

var stageDescriptions = map[contracts.Stage]string{
	contracts.StageStart:          "Early phase - limited activity and mentions",
	contracts.StageRisingInterest: "Growing interest - increased mentions and social activity",
	contracts.StageStockRising:    "Momentum building - price rising with strong volume",
	contracts.StagePeak:           "Near peak - high activity, consider taking profits",
	contracts.StageDoNotBuy:       "Danger zone - avoid buying, consider selling",
	contracts.StageDropping:       "Declining phase - falling prices and sentiment",
}

// MemeMetricName returns the name of the rank-th top-N slot (1-based)
func MemeMetricName(rank int) string {
	return fmt.Sprintf("meme_%d", rank)
}

// BuildMetrics maps a snapshot onto the named metrics. topN slots are always
// present, filled with NoData when the snapshot has fewer entities.
func BuildMetrics(s *contracts.Snapshot, lastUpdateSuccess bool, topN int) []Metric {
	common := map[string]interface{}{
		"status":       s.Status,
		"last_updated": s.GeneratedAt,
	}

	agg := s.Aggregate
	if agg == nil {
		agg = contracts.EmptyAggregate()
	}

	metrics := []Metric{
		{
			Name:  MetricTotalMentions,
			Value: agg.TotalMentions,
			Attributes: merge(common, map[string]interface{}{
				"mentions_by_ticker": agg.MentionsByTicker,
				"posts_processed":    agg.PostsProcessed,
				"forums_processed":   agg.ForumsProcessed,
				"failed_forums":      agg.FailedForums,
			}),
		},
		{
			Name:  MetricAverageSentiment,
			Value: round(agg.AverageSentiment, 3),
			Attributes: merge(common, map[string]interface{}{
				"sentiment_distribution": agg.SentimentDistribution,
			}),
		},
		{
			Name:  MetricTrendingCount,
			Value: len(agg.Trending),
			Attributes: merge(common, map[string]interface{}{
				"trending": agg.Trending,
			}),
		},
	}

	for rank := 1; rank <= topN; rank++ {
		metrics = append(metrics, memeMetric(s, rank, common))
	}

	lead := s.Leader()
	leadTicker := ""
	days, since := 0, 0.0
	if lead != nil {
		leadTicker = lead.Ticker
		days = lead.DaysActive
		since = round(lead.PriceSinceStartPct, 2)
	}

	metrics = append(metrics,
		Metric{
			Name:  MetricStage,
			Value: s.Stage.Stage.Label(),
			Attributes: merge(common, map[string]interface{}{
				"stage_key":         string(s.Stage.Stage),
				"stage_reason":      s.Stage.Reason,
				"stage_description": stageDescriptions[s.Stage.Stage],
				"top_ticker":        leadTicker,
			}),
		},
		Metric{Name: MetricDaysActive, Value: days, Attributes: map[string]interface{}{"ticker": leadTicker}},
		Metric{Name: MetricPriceSinceStart, Value: since, Attributes: map[string]interface{}{"ticker": leadTicker}},
		providersMetric(s.Providers),
		Metric{
			Name:  MetricStatus,
			Value: s.Status,
			Attributes: map[string]interface{}{
				"cycle_id":     s.CycleID,
				"last_updated": s.GeneratedAt,
				"updated":      humanize.Time(s.GeneratedAt),
				"duration":     s.Duration.String(),
			},
		},
		Metric{Name: MetricLastUpdateSuccess, Value: lastUpdateSuccess},
		Metric{Name: MetricDynamicForum, Value: s.DynamicForum},
	)

	return metrics
}

func memeMetric(s *contracts.Snapshot, rank int, common map[string]interface{}) Metric {
	m := Metric{Name: MemeMetricName(rank), Value: NoData}
	if rank > len(s.Top) {
		m.Attributes = merge(common, map[string]interface{}{"rank": rank})
		return m
	}

	e := s.Top[rank-1]
	m.Value = DisplayName(e)

	attrs := map[string]interface{}{
		"rank":                  rank,
		"ticker":                e.Ticker,
		"company_name":          e.CompanyName,
		"mentions":              e.Mentions,
		"sentiment":             round(e.Sentiment, 3),
		"impact_score":          e.ImpactScore,
		"meme_likelihood":       e.MemeLikelihood,
		"decline_flag":          e.DeclineFlag,
		"days_active":           e.DaysActive,
		"price_since_start_pct": round(e.PriceSinceStartPct, 2),
		"current_price":         nil,
		"price_change_pct":      0.0,
		"volume":                int64(0),
		"provider":              "",
	}
	if e.Quote != nil {
		if p, ok := e.Quote.Price(); ok {
			attrs["current_price"] = round(p, 2)
		}
		attrs["price_change_pct"] = round(e.Quote.PriceChangePct, 2)
		attrs["volume"] = e.Quote.Volume
		attrs["provider"] = e.Quote.Provider
		attrs["stale"] = e.Quote.Stale
	}
	m.Attributes = merge(common, attrs)
	return m
}

// DisplayName renders "GME - GameStop Corp ($27.50, +3.10%, vol 1,234,567)"
func DisplayName(e contracts.TopEntity) string {
	head := e.Ticker
	if e.CompanyName != "" && e.CompanyName != e.Ticker {
		head = fmt.Sprintf("%s - %s", e.Ticker, e.CompanyName)
	}

	p, ok := e.Quote.Price()
	if !ok {
		return fmt.Sprintf("%s (%d mentions)", head, e.Mentions)
	}
	return fmt.Sprintf("%s ($%.2f, %+.2f%%, vol %s)", head, p, e.Quote.PriceChangePct, humanize.Comma(e.Quote.Volume))
}

func providersMetric(providers []contracts.ProviderStatus) Metric {
	attrs := map[string]interface{}{}
	available := 0
	for _, p := range providers {
		if !p.Exhausted {
			available++
		}
		attrs[p.Name] = map[string]interface{}{
			"calls_used":  p.CallsUsed,
			"daily_limit": p.DailyLimit,
			"remaining":   p.Remaining(),
			"exhausted":   p.Exhausted,
			"reset_at":    p.ResetAt,
		}
	}
	return Metric{Name: MetricProviders, Value: available, Attributes: attrs}
}

func merge(a, b map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
