package extractors

import (
	"sort"
	"strings"

	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/config"
	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/core/domain"
	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/logger"
)

// PartExtractor finds spare-part numbers. Manufacturers without their
// own rule fall back to the generic "default" entry, so an unknown
// manufacturer degrades to best-effort results instead of failing.
type PartExtractor struct {
	rules   *Rules
	weights config.Confidence
}

// NewPartExtractor loads the parts rule set.
func NewPartExtractor(cfg *config.Config) *PartExtractor {
	return &PartExtractor{
		rules:   MustLoadRules("parts", cfg.RulesDir),
		weights: cfg.Confidence,
	}
}

// Extract scans page text for part numbers and deduplicates them by
// natural key, keeping the highest-confidence occurrence.
func (x *PartExtractor) Extract(pages map[int]string, manufacturer, documentID string) []domain.Part {
	rule, ok := x.rules.forManufacturer(manufacturer, false)
	if !ok {
		logger.Warn("no part rules for %q and no default entry", manufacturer)
		return nil
	}

	byKey := map[string]domain.Part{}
	for _, page := range sortedPages(pages) {
		text := pages[page]
		perPage := 0
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

				valid := rule.validation == nil || rule.validation.MatchString(value)
				window := contextWindow(text, start, end)
				if !validContext(window, rule.rule) {
					continue
				}

				description := recoverDescription(window, value)
				confidence := scoreEntity(x.weights, scoreInput{
					validFormat: valid,
					description: description,
					window:      window,
					occurrences: strings.Count(text, value),
				})
				if confidence < rule.rule.MinConfidence {
					continue
				}

				part := domain.Part{
					Number:       value,
					Description:  description,
					Manufacturer: manufacturer,
					DocumentID:   documentID,
					Page:         page,
					Method:       domain.MethodPattern,
					Context:      window,
					Confidence:   confidence,
				}
				key := part.NaturalKey()
				if prev, seen := byKey[key]; !seen || part.Confidence > prev.Confidence {
					byKey[key] = part
				}

				taken = append(taken, span{start, end})
				perPage++
				if rule.rule.MaxPerPage > 0 && perPage >= rule.rule.MaxPerPage {
					break
				}
			}
			if rule.rule.MaxPerPage > 0 && perPage >= rule.rule.MaxPerPage {
				break
			}
		}
	}

	parts := make([]domain.Part, 0, len(byKey))
	for _, p := range byKey {
		parts = append(parts, p)
	}
	sort.Slice(parts, func(i, j int) bool {
		if parts[i].Page != parts[j].Page {
			return parts[i].Page < parts[j].Page
		}
		return parts[i].Number < parts[j].Number
	})
	return parts
}
