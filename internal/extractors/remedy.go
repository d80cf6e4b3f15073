package extractors

import (
	"regexp"
	"strings"
)

// maxSolutionLength caps recovered remediation text.
const maxSolutionLength = 800

// maxDescriptionLength caps recovered descriptions.
const maxDescriptionLength = 200

var (
	// Labeled remediation sections, in technician manuals usually
	// followed by numbered sub-steps.
	actionLabelRe = regexp.MustCompile(`(?i)(?:recommended action(?:s)?(?:\s+for\s+[a-z\- ]{3,30})?|corrective action|repair procedure|procedure)\s*[:\n]`)

	// Generic labelled remediation blocks.
	solutionLabelRe = regexp.MustCompile(`(?i)\b(?:solution|fix|remedy)\s*:\s*`)

	// Numbered or bulleted step lines.
	numberedStepRe = regexp.MustCompile(`^\s*\d{1,2}[.)]\s+\S`)
	bulletStepRe   = regexp.MustCompile(`^\s*[-•*]\s+\S`)

	// A short capitalised line ending in a colon starts a new section.
	sectionHeaderRe = regexp.MustCompile(`^[A-Z][A-Za-z0-9 /\-]{2,48}:\s*$`)

	// Multi-tier guidance markers. When a document exposes both
	// customer- and technician-facing tiers only the technician tier
	// is kept.
	technicianTierRe = regexp.MustCompile(`(?i)recommended action(?:s)?\s+for\s+(?:onsite\s+)?(?:technicians?|engineers?)\s*[:\n]`)
	customerTierRe   = regexp.MustCompile(`(?i)recommended action(?:s)?\s+for\s+(?:customers?|users?|call-?center\s+agents?)\s*[:\n]`)
)

// recoverSolution applies the ordered remediation heuristics to the
// context window. The second return reports whether the text has the
// shape of discrete steps, which scores higher than free prose.
func recoverSolution(window string) (string, bool) {
	// Tier filtering first: restrict to the technician-facing tier when
	// both tiers are present.
	if technicianTierRe.MatchString(window) && customerTierRe.MatchString(window) {
		if loc := technicianTierRe.FindStringIndex(window); loc != nil {
			tail := window[loc[1]:]
			if next := customerTierRe.FindStringIndex(tail); next != nil {
				tail = tail[:next[0]]
			}
			window = tail
		}
	}

	// (a) labeled action section with sub-steps.
	if loc := actionLabelRe.FindStringIndex(window); loc != nil {
		tail := window[loc[1]:]
		if steps := collectSteps(tail); steps != "" {
			return capLength(steps, maxSolutionLength), true
		}
		if para := firstParagraph(tail); para != "" {
			return capLength(para, maxSolutionLength), false
		}
	}

	// (b) generic labeled block, truncated at the next section header.
	if loc := solutionLabelRe.FindStringIndex(window); loc != nil {
		tail := window[loc[1]:]
		block := untilNextSection(tail)
		if block != "" {
			return capLength(block, maxSolutionLength), numberedStepRe.MatchString(block)
		}
	}

	// (c) bare numbered steps.
	if steps := collectMatching(window, numberedStepRe, 2); steps != "" {
		return capLength(steps, maxSolutionLength), true
	}

	// (d) bare bullet lists.
	if steps := collectMatching(window, bulletStepRe, 2); steps != "" {
		return capLength(steps, maxSolutionLength), true
	}

	return "", false
}

// collectSteps gathers the run of step lines immediately following a
// label, tolerating blank lines inside the run.
func collectSteps(text string) string {
	var steps []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if len(steps) > 0 {
				continue
			}
			continue
		}
		if numberedStepRe.MatchString(line) || bulletStepRe.MatchString(line) {
			steps = append(steps, trimmed)
			continue
		}
		if len(steps) > 0 {
			break
		}
		// A non-step line before any step ends the attempt, except a
		// short lead-in sentence.
		if len(trimmed) > 80 || sectionHeaderRe.MatchString(trimmed) {
			break
		}
	}
	if len(steps) == 0 {
		return ""
	}
	return strings.Join(steps, "\n")
}

// collectMatching gathers all lines matching re, requiring at least min
// of them to avoid mistaking a lone enumeration for a procedure.
func collectMatching(text string, re *regexp.Regexp, min int) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if re.MatchString(line) {
			lines = append(lines, strings.TrimSpace(line))
		}
	}
	if len(lines) < min {
		return ""
	}
	return strings.Join(lines, "\n")
}

// untilNextSection returns text up to the next section header or double
// blank line.
func untilNextSection(text string) string {
	var out []string
	blank := 0
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			blank++
			if blank >= 2 && len(out) > 0 {
				break
			}
			continue
		}
		blank = 0
		if sectionHeaderRe.MatchString(trimmed) && len(out) > 0 {
			break
		}
		out = append(out, trimmed)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

func firstParagraph(text string) string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if len(out) > 0 {
				break
			}
			continue
		}
		out = append(out, trimmed)
	}
	return strings.Join(out, " ")
}

// recoverDescription takes the sentence fragment that follows the
// matched value inside the window.
func recoverDescription(window, value string) string {
	idx := strings.Index(window, value)
	if idx < 0 {
		return ""
	}
	tail := window[idx+len(value):]
	tail = strings.TrimLeft(tail, " \t:–—-.")

	// Cut at the end of the sentence or line.
	for i := 0; i < len(tail); i++ {
		switch tail[i] {
		case '\n':
			tail = tail[:i]
		case '.', '!', '?':
			if i+1 >= len(tail) || tail[i+1] == ' ' || tail[i+1] == '\n' {
				tail = tail[:i]
			}
		}
		if i >= len(tail) {
			break
		}
	}

	tail = strings.TrimSpace(tail)
	if !hasLetters(tail) {
		return ""
	}
	return capLength(tail, maxDescriptionLength)
}

func hasLetters(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}

func capLength(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
