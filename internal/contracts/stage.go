package contracts

// Stage is the meme-stock lifecycle label for the top-ranked ticker
type Stage string

const (
	StageStart          Stage = "start"
	StageRisingInterest Stage = "rising_interest"
	StageStockRising    Stage = "stock_rising"
	StagePeak           Stage = "within_estimated_peak"
	StageDoNotBuy       Stage = "do_not_buy"
	StageDropping       Stage = "dropping"
)

// String returns the stage key
func (s Stage) String() string {
	return string(s)
}

// Label returns the display label
func (s Stage) Label() string {
	switch s {
	case StageStart:
		return "Start"
	case StageRisingInterest:
		return "Rising Interest"
	case StageStockRising:
		return "Stock Rising"
	case StagePeak:
		return "Within Estimated Peak"
	case StageDoNotBuy:
		return "DO NOT BUY"
	case StageDropping:
		return "Dropping"
	default:
		return "Unknown"
	}
}

// AllStages returns every stage in classifier evaluation order
func AllStages() []Stage {
	return []Stage{
		StageStart,
		StagePeak,
		StageStockRising,
		StageDropping,
		StageDoNotBuy,
		StageRisingInterest,
	}
}

// IsValidStage checks if a stage string is valid
func IsValidStage(s string) bool {
	for _, stage := range AllStages() {
		if string(stage) == s {
			return true
		}
	}
	return false
}

// StageResult is the classifier output
type StageResult struct {
	Stage  Stage  `json:"stage"`
	Reason string `json:"reason"`
}
