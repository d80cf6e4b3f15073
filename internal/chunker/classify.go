package chunker

import (
	"regexp"
	"strings"

	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/core/domain"
)

var (
	codeShapeRe = regexp.MustCompile(`\b(?:\d{2}\.[0-9A-Z]{2,4}(?:\.[0-9A-Z]{2})?|[CEJ]-?\d{3,4}|\d{2}-\d{4})\b`)
	stepLineRe  = regexp.MustCompile(`(?m)^\s*\d{1,2}[.)]\s+\S`)

	specTerms = []string{
		"specification", "dimensions", "weight", "voltage",
		"power consumption", "capacity", "resolution", "duty cycle",
	}
	introTerms = []string{
		"introduction", "about this manual", "overview",
		"how to use this", "intended audience",
	}
)

// classify assigns the dominant content type by keyword and shape
// heuristics. Order matters: troubleshooting prose often contains
// error codes, and procedures often appear inside troubleshooting
// sections, so the most specific signals win.
func classify(text string) domain.ChunkType {
	lower := strings.ToLower(text)

	hasCode := codeShapeRe.MatchString(text) &&
		(strings.Contains(lower, "error") || strings.Contains(lower, "code") || strings.Contains(lower, "fault"))
	steps := len(stepLineRe.FindAllString(text, 3))

	switch {
	case hasCode && steps >= 2:
		return domain.ChunkTypeTroubleshooting
	case hasCode:
		return domain.ChunkTypeErrorCode
	case steps >= 2, strings.Contains(lower, "procedure"):
		return domain.ChunkTypeProcedure
	case strings.Contains(lower, "troubleshoot"):
		return domain.ChunkTypeTroubleshooting
	case containsAny(lower, specTerms):
		return domain.ChunkTypeSpecification
	case containsAny(lower, introTerms):
		return domain.ChunkTypeIntroduction
	default:
		return domain.ChunkTypeText
	}
}

func containsAny(lower string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}
