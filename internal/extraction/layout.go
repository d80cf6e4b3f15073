package extraction

import (
	"regexp"
	"sort"
	"strings"

	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/config"
	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/core/ports/driven"
)

// codeShapedLine matches the code token of an error-code table row: two
// digits, separator, two-three alphanumerics, separator, two
// alphanumerics. Flattened text destroys the column alignment these rows
// live in, so the scanner works on positioned spans instead.
var codeShapedLine = regexp.MustCompile(`\b\d{2}[.\-]?[0-9A-Za-z]{2,3}[.\-]?[0-9A-Za-z]{2}\b`)

// leaderRun matches the dot/mid-dot runs printed tables use to pad
// between a label and its value.
var leaderRun = regexp.MustCompile(`[.\x{00B7}\x{2026}]{3,}`)

var whitespaceRun = regexp.MustCompile(`\s+`)

// truncationMark counts against MaxLineLength, so an emitted line never
// exceeds the cap.
const truncationMark = "..."

// LayoutScanner recovers table-like error-code listings from positioned
// text spans. Both the line cap and the length cap exist purely to bound
// memory on pathological tables.
type LayoutScanner struct {
	cfg config.Layout
}

// NewLayoutScanner creates a scanner with the given limits.
func NewLayoutScanner(cfg config.Layout) *LayoutScanner {
	if cfg.MaxLines <= 0 {
		cfg.MaxLines = 80
	}
	if cfg.MaxLineLength <= len(truncationMark) {
		cfg.MaxLineLength = 200
	}
	if cfg.LineTolerance <= 0 {
		cfg.LineTolerance = 2.0
	}
	return &LayoutScanner{cfg: cfg}
}

// Scan joins spans per visual line and keeps the lines shaped like
// error-code table rows. Returns "" when no line qualifies.
func (s *LayoutScanner) Scan(spans []driven.Span) string {
	if len(spans) == 0 {
		return ""
	}

	lines := s.visualLines(spans)

	seen := make(map[string]struct{})
	var kept []string
	for _, line := range lines {
		normalized := normalizeLine(line)
		if normalized == "" {
			continue
		}
		if !codeShapedLine.MatchString(normalized) {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}

		if len(normalized) > s.cfg.MaxLineLength {
			normalized = normalized[:s.cfg.MaxLineLength-len(truncationMark)] + truncationMark
		}
		kept = append(kept, normalized)
		if len(kept) >= s.cfg.MaxLines {
			break
		}
	}

	return strings.Join(kept, "\n")
}

// visualLines groups spans by Y coordinate (within tolerance) and joins
// each group left-to-right.
func (s *LayoutScanner) visualLines(spans []driven.Span) []string {
	ordered := make([]driven.Span, len(spans))
	copy(ordered, spans)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Y != ordered[j].Y {
			return ordered[i].Y > ordered[j].Y
		}
		return ordered[i].X < ordered[j].X
	})

	var lines []string
	var current []string
	lineY := ordered[0].Y
	for _, sp := range ordered {
		if lineY-sp.Y > s.cfg.LineTolerance {
			lines = append(lines, strings.Join(current, " "))
			current = current[:0]
			lineY = sp.Y
		}
		current = append(current, sp.Text)
	}
	if len(current) > 0 {
		lines = append(lines, strings.Join(current, " "))
	}
	return lines
}

// normalizeLine collapses leader runs and repeated whitespace.
func normalizeLine(line string) string {
	line = leaderRun.ReplaceAllString(line, " ")
	line = whitespaceRun.ReplaceAllString(line, " ")
	return strings.TrimSpace(line)
}
