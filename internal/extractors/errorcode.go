package extractors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/config"
	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/core/domain"
	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/logger"
)

// ErrorCodeExtractor finds manufacturer fault codes in page text and
// recovers their descriptions and remediation steps. Error codes have
// no generic fallback rule: formats collide across manufacturers and
// with part numbers, so an unknown manufacturer is a hard error.
type ErrorCodeExtractor struct {
	rules   *Rules
	weights config.Confidence
}

// NewErrorCodeExtractor loads the error-code rule set. Rule-file
// problems degrade the extractor to empty results.
func NewErrorCodeExtractor(cfg *config.Config) *ErrorCodeExtractor {
	return &ErrorCodeExtractor{
		rules:   MustLoadRules("error_codes", cfg.RulesDir),
		weights: cfg.Confidence,
	}
}

// Extract scans every page plus the structured line reconstruction for
// the manufacturer's code patterns. It returns
// domain.ErrUnknownManufacturer when no rule exists for manufacturer.
func (x *ErrorCodeExtractor) Extract(pages, structured map[int]string, manufacturer, documentID string) ([]domain.ErrorCode, error) {
	rule, ok := x.rules.forManufacturer(manufacturer, true)
	if !ok {
		return nil, fmt.Errorf("%w: no error code rules for %q", domain.ErrUnknownManufacturer, manufacturer)
	}

	byKey := map[string]domain.ErrorCode{}

	for _, page := range sortedPages(pages) {
		text := pages[page]
		found := x.scanPage(rule, text, manufacturer, documentID, page, domain.MethodPattern)
		keepBest(byKey, found)
	}
	for _, page := range sortedPages(structured) {
		text := structured[page]
		found := x.scanPage(rule, text, manufacturer, documentID, page, domain.MethodStructuredLines)
		keepBest(byKey, found)
	}

	codes := make([]domain.ErrorCode, 0, len(byKey))
	for _, c := range byKey {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool {
		if codes[i].Page != codes[j].Page {
			return codes[i].Page < codes[j].Page
		}
		return codes[i].Code < codes[j].Code
	})
	logger.Debug("error codes: %d unique for %s", len(codes), manufacturer)
	return codes, nil
}

func (x *ErrorCodeExtractor) scanPage(rule *compiledRule, text, manufacturer, documentID string, page int, method string) []domain.ErrorCode {
	var out []domain.ErrorCode
	seen := map[string]struct{}{}
	var taken []span

	for _, re := range rule.patterns {
		for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
			start, end := matchBounds(loc)
			if overlapsAny(taken, start, end) {
				continue
			}
			value := strings.TrimSpace(text[start:end])
			if value == "" || x.rules.rejected(value) {
				continue
			}
			if _, dup := seen[strings.ToUpper(value)]; dup {
				continue
			}

			valid := rule.validation == nil || rule.validation.MatchString(value)
			window := contextWindow(text, start, end)
			if !validContext(window, rule.rule) {
				continue
			}

			description := recoverDescription(window, value)
			solution, structuredSteps := recoverSolution(window)
			occurrences := strings.Count(text, value)

			confidence := scoreEntity(x.weights, scoreInput{
				validFormat:        valid,
				description:        description,
				solution:           solution,
				solutionStructured: structuredSteps,
				window:             window,
				occurrences:        occurrences,
			})
			if confidence < rule.rule.MinConfidence {
				continue
			}

			// Severity and category read the recovered remediation
			// text, not the whole window, so a neighbouring code's
			// hazard wording cannot leak into this one's label.
			labelText := strings.TrimSpace(description + "\n" + solution)
			if labelText == "" {
				labelText = window
			}

			seen[strings.ToUpper(value)] = struct{}{}
			taken = append(taken, span{start, end})
			out = append(out, domain.ErrorCode{
				Code:         value,
				Description:  description,
				Solution:     solution,
				Severity:     classifySeverity(labelText),
				Category:     classifyCategory(labelText),
				Manufacturer: manufacturer,
				DocumentID:   documentID,
				Page:         page,
				Method:       method,
				Context:      window,
				Confidence:   confidence,
			})
			if rule.rule.MaxPerPage > 0 && len(out) >= rule.rule.MaxPerPage {
				return out
			}
		}
	}
	return out
}

// matchBounds prefers the first capture group when the pattern has one.
func matchBounds(loc []int) (int, int) {
	if len(loc) >= 4 && loc[2] >= 0 {
		return loc[2], loc[3]
	}
	return loc[0], loc[1]
}

// keepBest merges found into byKey keeping the highest-confidence
// occurrence per natural key. Ties keep the earlier page.
func keepBest(byKey map[string]domain.ErrorCode, found []domain.ErrorCode) {
	for _, c := range found {
		key := c.NaturalKey()
		prev, ok := byKey[key]
		if !ok || c.Confidence > prev.Confidence {
			byKey[key] = c
		}
	}
}

// sortedPages returns map keys in ascending page order so extraction is
// deterministic across runs.
func sortedPages(pages map[int]string) []int {
	keys := make([]int, 0, len(pages))
	for k := range pages {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
