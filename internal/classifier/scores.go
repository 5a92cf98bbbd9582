package classifier

import (
	"math"

	"github.com/wonny/memestock/pkg/config"
)

// Weights blend the impact score components; they sum to 1.0
type Weights struct {
	Volume    float64
	Sentiment float64
	Momentum  float64
}

// DefaultWeights returns 0.5 / 0.3 / 0.2
func DefaultWeights() Weights {
	return Weights{Volume: 0.5, Sentiment: 0.3, Momentum: 0.2}
}

// WeightsFromConfig copies the configured weights
func WeightsFromConfig(c config.WeightsConfig) Weights {
	return Weights(c)
}

// Scores are the per-ticker composite values
type Scores struct {
	Volume         float64 // [0,1]
	Momentum       float64 // [0,1], 0.5 = flat
	ImpactScore    float64 // [0,100]
	MemeLikelihood float64 // [0,100]
	DeclineFlag    bool
}

// meme likelihood blend
const (
	baseRate        = 0.1
	likelihoodScale = 0.9
	lVolume         = 0.4
	lSentiment      = 0.4
	lMomentum       = 0.2
)

// Score computes the composite scores for one ticker.
// Only positive sentiment lifts the scores.
func Score(mentions int, sentiment, priceChangePct float64, w Weights) Scores {
	vol := VolumeScore(mentions)
	mom := MomentumScore(priceChangePct)
	pos := math.Max(0, sentiment)

	impact := (w.Volume*vol + w.Sentiment*pos + w.Momentum*mom) * 100
	likelihood := (baseRate + (lVolume*vol+lSentiment*pos+lMomentum*mom)*likelihoodScale) * 100

	return Scores{
		Volume:         vol,
		Momentum:       mom,
		ImpactScore:    round2(clamp(impact, 0, 100)),
		MemeLikelihood: round2(clamp(likelihood, 0, 100)),
		DeclineFlag:    sentiment < 0 && mom < 0.4,
	}
}

// VolumeScore scales mentions linearly, saturating at 10
func VolumeScore(mentions int) float64 {
	return clamp(float64(mentions)/10, 0, 1)
}

// MomentumScore maps -10%..+10% onto 0..1
func MomentumScore(pct float64) float64 {
	return clamp((pct+10)/20, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
