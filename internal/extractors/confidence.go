package extractors

import (
	"strings"

	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/config"
)

// scoreInput carries the signals collected for one candidate entity.
type scoreInput struct {
	validFormat        bool
	description        string
	solution           string
	solutionStructured bool
	window             string
	occurrences        int
}

// scoreEntity combines the additive confidence signals and clamps the
// result to [0, 1]. Weights come from configuration so individual
// manufacturers can be recalibrated without a rebuild.
func scoreEntity(cfg config.Confidence, in scoreInput) float64 {
	var score float64

	if in.validFormat {
		score += cfg.ValidFormat
	}
	if len(in.description) >= 10 {
		score += cfg.Description
	}
	if len(in.description) >= 40 {
		score += cfg.DescriptionLong
	}
	if in.solution != "" {
		score += cfg.Solution
	}
	if in.solutionStructured {
		score += cfg.SolutionSteps
	}

	terms := countTechnicalTerms(in.window)
	termBonus := float64(terms) * cfg.TechnicalTerm
	if termBonus > cfg.TechnicalTermCap {
		termBonus = cfg.TechnicalTermCap
	}
	score += termBonus

	if in.occurrences > 1 {
		score += cfg.RepeatedCode
	}

	if n := len(strings.TrimSpace(in.window)); n >= 100 && n <= 600 {
		score += cfg.ContextLength
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
