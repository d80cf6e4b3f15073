package domain

// ManufacturerAuto asks the pipeline to detect the manufacturer instead
// of trusting a caller-supplied name.
const ManufacturerAuto = "auto"

// SignalSource identifies where a manufacturer detection signal came from.
type SignalSource string

// Signal sources, ordered by weight.
const (
	SignalFilename SignalSource = "filename"
	SignalAuthor   SignalSource = "author"
	SignalTitle    SignalSource = "title"
	SignalMentions SignalSource = "text_mentions"
)

// Signal is one weighted piece of evidence for a candidate manufacturer.
type Signal struct {
	Source    SignalSource
	Candidate string
	Weight    float64
}

// ManufacturerDetection is the aggregated result of scoring all signals.
// Tier is surfaced for logging only and carries no behavioural effect.
type ManufacturerDetection struct {
	Name    string
	Score   float64
	Tier    string
	Signals []Signal
}

// Detection tiers.
const (
	TierExcellent = "excellent"
	TierVeryHigh  = "very_high"
	TierHigh      = "high"
	TierMedium    = "medium"
	TierLow       = "low"
)
