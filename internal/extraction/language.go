package extraction

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

// languages covered by the corpus of service manuals we process.
var detectorLanguages = []lingua.Language{
	lingua.English,
	lingua.German,
	lingua.French,
	lingua.Spanish,
	lingua.Italian,
	lingua.Portuguese,
	lingua.Dutch,
	lingua.Polish,
}

// LanguageDetector wraps the probabilistic detector. Results below the
// minimum confidence are reported as "unknown" rather than returned as a
// low-confidence guess.
type LanguageDetector struct {
	detector      lingua.LanguageDetector
	minConfidence float64
}

// NewLanguageDetector builds the detector once; construction is
// expensive because language models are loaded eagerly.
func NewLanguageDetector(minConfidence float64) *LanguageDetector {
	return &LanguageDetector{
		detector: lingua.NewLanguageDetectorBuilder().
			FromLanguages(detectorLanguages...).
			Build(),
		minConfidence: minConfidence,
	}
}

// Detect returns the ISO 639-1 code and confidence for the sample.
func (d *LanguageDetector) Detect(sample string) (string, float64) {
	sample = strings.TrimSpace(sample)
	if sample == "" {
		return "unknown", 0
	}

	lang, ok := d.detector.DetectLanguageOf(sample)
	if !ok {
		return "unknown", 0
	}
	confidence := d.detector.ComputeLanguageConfidence(sample, lang)
	if confidence < d.minConfidence {
		return "unknown", confidence
	}
	return strings.ToLower(lang.IsoCode639_1().String()), confidence
}
