// Package metrics exports snapshot values as Prometheus series.
package metrics

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wonny/memestock/internal/contracts"
)

const namespace = "memestock"

// Exporter holds all Prometheus metrics for the insight engine
// ⭐ SSOT: 프로메테우스 지표 정의는 여기서만
type Exporter struct {
	registry *prometheus.Registry

	// Mentions
	TotalMentions    prometheus.Gauge
	AverageSentiment prometheus.Gauge
	TrendingCount    prometheus.Gauge
	TickerMentions   *prometheus.GaugeVec

	// Leader
	Stage              *prometheus.GaugeVec
	DaysActive         prometheus.Gauge
	PriceSinceStartPct prometheus.Gauge
	ImpactScore        *prometheus.GaugeVec
	MemeLikelihood     *prometheus.GaugeVec

	// Providers
	ProviderCalls     *prometheus.GaugeVec
	ProviderExhausted *prometheus.GaugeVec

	// Cycles
	Cycles            *prometheus.CounterVec
	CycleDuration     prometheus.Histogram
	LastUpdateSuccess prometheus.Gauge
	FailedForums      prometheus.Gauge
}

// New creates an exporter on a private registry
func New() *Exporter {
	e := &Exporter{
		registry: prometheus.NewRegistry(),

		TotalMentions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "total_mentions",
			Help:      "Ticker mentions counted in the last published snapshot",
		}),
		AverageSentiment: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "average_sentiment",
			Help:      "Mean sentiment over all scored texts (-1 to 1)",
		}),
		TrendingCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "trending_count",
			Help:      "Tickers above the trending mention threshold",
		}),
		TickerMentions: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ticker_mentions",
			Help:      "Mentions per top-N ticker",
		}, []string{"ticker", "rank"}),

		Stage: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage",
			Help:      "1 for the current lifecycle stage of the leader, 0 otherwise",
		}, []string{"stage"}),
		DaysActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "days_active",
			Help:      "Days since the leader was first seen",
		}),
		PriceSinceStartPct: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "price_since_start_pct",
			Help:      "Leader price change since first seen, in percent",
		}),
		ImpactScore: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "impact_score",
			Help:      "Composite impact score per top-N ticker (0 to 100)",
		}, []string{"ticker"}),
		MemeLikelihood: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "meme_likelihood",
			Help:      "Meme likelihood per top-N ticker (0 to 100)",
		}, []string{"ticker"}),

		ProviderCalls: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "provider_calls_used",
			Help:      "Price provider calls used in the current quota window",
		}, []string{"provider"}),
		ProviderExhausted: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "provider_exhausted",
			Help:      "1 when the provider's daily quota is exhausted",
		}, []string{"provider"}),

		Cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_cycles_total",
			Help:      "Published snapshots by outcome",
		}, []string{"result"}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_cycle_duration_seconds",
			Help:      "Duration of successful refresh cycles",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 90},
		}),
		LastUpdateSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_update_success",
			Help:      "1 when the most recent cycle succeeded",
		}),
		FailedForums: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "failed_forums",
			Help:      "Forums skipped in the last successful cycle",
		}),
	}

	e.registry.MustRegister(
		e.TotalMentions, e.AverageSentiment, e.TrendingCount, e.TickerMentions,
		e.Stage, e.DaysActive, e.PriceSinceStartPct, e.ImpactScore, e.MemeLikelihood,
		e.ProviderCalls, e.ProviderExhausted,
		e.Cycles, e.CycleDuration, e.LastUpdateSuccess, e.FailedForums,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return e
}

// Registry exposes the private registry (tests, extra collectors)
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

// Handler serves the registry in the Prometheus text format
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// Observe updates every series from a published snapshot
func (e *Exporter) Observe(s *contracts.Snapshot) {
	if s == nil {
		return
	}

	e.Cycles.WithLabelValues(resultLabel(s.Status)).Inc()
	success := s.IsSuccess()
	if success {
		e.LastUpdateSuccess.Set(1)
		e.CycleDuration.Observe(s.Duration.Seconds())
	} else {
		e.LastUpdateSuccess.Set(0)
	}

	for _, p := range s.Providers {
		e.ProviderCalls.WithLabelValues(p.Name).Set(float64(p.CallsUsed))
		e.ProviderExhausted.WithLabelValues(p.Name).Set(boolGauge(p.Exhausted))
	}

	// fallback snapshots keep the last good values on the data series
	if !success && s.Status != contracts.StatusStarting {
		return
	}

	agg := s.Aggregate
	if agg == nil {
		agg = contracts.EmptyAggregate()
	}
	e.TotalMentions.Set(float64(agg.TotalMentions))
	e.AverageSentiment.Set(agg.AverageSentiment)
	e.TrendingCount.Set(float64(len(agg.Trending)))
	e.FailedForums.Set(float64(len(agg.FailedForums)))

	for _, st := range contracts.AllStages() {
		e.Stage.WithLabelValues(st.String()).Set(boolGauge(st == s.Stage.Stage))
	}

	e.TickerMentions.Reset()
	e.ImpactScore.Reset()
	e.MemeLikelihood.Reset()
	for _, ent := range s.Top {
		e.TickerMentions.WithLabelValues(ent.Ticker, strconv.Itoa(ent.Rank)).Set(float64(ent.Mentions))
		e.ImpactScore.WithLabelValues(ent.Ticker).Set(ent.ImpactScore)
		e.MemeLikelihood.WithLabelValues(ent.Ticker).Set(ent.MemeLikelihood)
	}

	if leader := s.Leader(); leader != nil {
		e.DaysActive.Set(float64(leader.DaysActive))
		e.PriceSinceStartPct.Set(leader.PriceSinceStartPct)
	} else {
		e.DaysActive.Set(0)
		e.PriceSinceStartPct.Set(0)
	}
}

func resultLabel(status string) string {
	switch {
	case status == contracts.StatusSuccess:
		return "success"
	case status == contracts.StatusStarting:
		return "starting"
	case status == contracts.StatusTimeout:
		return "timeout"
	case strings.HasPrefix(status, contracts.StatusErrorPfx):
		return "error"
	default:
		return "other"
	}
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
