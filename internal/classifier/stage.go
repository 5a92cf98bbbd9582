// Package classifier turns the enriched top-ranked ticker into a lifecycle
// stage and computes the per-ticker composite scores. Everything here is pure.
package classifier

import (
	"fmt"

	"github.com/wonny/memestock/internal/contracts"
	"github.com/wonny/memestock/pkg/config"
)

// Thresholds are the tunable stage boundaries
type Thresholds struct {
	MinMentions       int
	PeakPct           float64
	RisingPct         float64
	EarlyWindowDays   int
	DroppingPct       float64
	SevereDropPct     float64
	NegativeSentiment float64
}

// DefaultThresholds returns the stock boundaries
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinMentions:       5,
		PeakPct:           10,
		RisingPct:         5,
		EarlyWindowDays:   14,
		DroppingPct:       -5,
		SevereDropPct:     -15,
		NegativeSentiment: -0.1,
	}
}

// ThresholdsFromConfig copies the configured boundaries
func ThresholdsFromConfig(c config.ThresholdsConfig) Thresholds {
	return Thresholds(c)
}

// Input is the classifier view of the top entity
type Input struct {
	Ticker         string
	Mentions       int
	PriceKnown     bool
	PriceChangePct float64
	DaysActive     int
	Sentiment      float64 // overall average sentiment of the cycle
}

// InputFor builds an Input from a top entity and the cycle's average sentiment
func InputFor(e *contracts.TopEntity, avgSentiment float64) *Input {
	if e == nil {
		return nil
	}
	in := &Input{
		Ticker:     e.Ticker,
		Mentions:   e.Mentions,
		DaysActive: e.DaysActive,
		Sentiment:  avgSentiment,
	}
	if e.Quote.HasPrice() {
		in.PriceKnown = true
		in.PriceChangePct = e.Quote.PriceChangePct
	}
	return in
}

// Classify evaluates the rules in a fixed order; the first match wins.
// nil input means there is no top entity this cycle.
func Classify(in *Input, th Thresholds) contracts.StageResult {
	switch {
	case in == nil || !in.PriceKnown:
		return result(contracts.StageStart, "no data / no meme candidates")

	case in.Mentions < th.MinMentions:
		return result(contracts.StageStart,
			fmt.Sprintf("%s has %d mentions, below the minimum of %d", in.Ticker, in.Mentions, th.MinMentions))

	case in.PriceChangePct > th.PeakPct:
		return result(contracts.StagePeak,
			fmt.Sprintf("%s up %.1f%%, above the %.1f%% peak threshold", in.Ticker, in.PriceChangePct, th.PeakPct))

	case in.PriceChangePct > th.RisingPct && in.DaysActive < th.EarlyWindowDays:
		return result(contracts.StageStockRising,
			fmt.Sprintf("%s up %.1f%% within %d days of first sighting", in.Ticker, in.PriceChangePct, in.DaysActive))

	case in.PriceChangePct < th.DroppingPct:
		if in.PriceChangePct < th.SevereDropPct && in.Sentiment < th.NegativeSentiment {
			return result(contracts.StageDoNotBuy,
				fmt.Sprintf("%s down %.1f%% with negative sentiment %.2f", in.Ticker, in.PriceChangePct, in.Sentiment))
		}
		return result(contracts.StageDropping,
			fmt.Sprintf("%s down %.1f%%", in.Ticker, in.PriceChangePct))

	default:
		return result(contracts.StageRisingInterest,
			fmt.Sprintf("%s discussed %d times, price change %.1f%%", in.Ticker, in.Mentions, in.PriceChangePct))
	}
}

func result(s contracts.Stage, reason string) contracts.StageResult {
	return contracts.StageResult{Stage: s, Reason: reason}
}
