package extractors

import "strings"

// contextRadius bounds the window extracted around a match; the full
// window is roughly twice this.
const contextRadius = 250

// contextWindow returns the bounded text surrounding [start,end),
// snapped outward to rune boundaries.
func contextWindow(text string, start, end int) string {
	lo := start - contextRadius
	if lo < 0 {
		lo = 0
	}
	hi := end + contextRadius
	if hi > len(text) {
		hi = len(text)
	}
	// Avoid splitting multi-byte runes at the window edges.
	for lo > 0 && lo < len(text) && !isASCIIBoundary(text[lo]) {
		lo--
	}
	for hi < len(text) && !isASCIIBoundary(text[hi-1]) {
		hi++
	}
	return text[lo:hi]
}

func isASCIIBoundary(b byte) bool {
	return b < 0x80 || b >= 0xC0
}

// span marks an accepted match region. Patterns are ordered most
// specific first; later patterns must not re-match inside an accepted
// region or a code like 13.A1.B2 would also surface as 13.A1.
type span struct{ start, end int }

func overlapsAny(spans []span, start, end int) bool {
	for _, s := range spans {
		if start < s.end && end > s.start {
			return true
		}
	}
	return false
}

// validContext applies the rule's keyword filters to the window. The
// window must contain at least one required keyword (when any are
// configured) and none of the excluded keywords.
func validContext(window string, rule Rule) bool {
	lower := strings.ToLower(window)

	for _, kw := range rule.ExcludedContext {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return false
		}
	}

	if len(rule.RequiredContext) == 0 {
		return true
	}
	for _, kw := range rule.RequiredContext {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// technicalTerms are the domain cues used by confidence scoring.
// Calibrated against printer/copier service manuals.
var technicalTerms = []string{
	"error", "jam", "sensor", "motor", "fuser", "tray", "toner",
	"cartridge", "paper", "replace", "assembly", "firmware",
	"calibration", "printer", "voltage", "roller", "belt", "drum",
	"maintenance", "feed", "laser", "scanner",
}

// countTechnicalTerms counts distinct technical terms in the window.
func countTechnicalTerms(window string) int {
	lower := strings.ToLower(window)
	count := 0
	for _, term := range technicalTerms {
		if strings.Contains(lower, term) {
			count++
		}
	}
	return count
}
