package extractors

import (
	"sort"
	"strings"

	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/config"
	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/core/domain"
	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/logger"
)

// VersionExtractor finds firmware, document and software revision
// markers. All manufacturers share the generic rule entry.
type VersionExtractor struct {
	rules   *Rules
	weights config.Confidence
}

// NewVersionExtractor loads the versions rule set.
func NewVersionExtractor(cfg *config.Config) *VersionExtractor {
	return &VersionExtractor{
		rules:   MustLoadRules("versions", cfg.RulesDir),
		weights: cfg.Confidence,
	}
}

// Extract scans page text for version markers, labelling each by the
// wording that introduced it.
func (x *VersionExtractor) Extract(pages map[int]string, manufacturer, documentID string) []domain.Version {
	rule, ok := x.rules.forManufacturer(manufacturer, false)
	if !ok {
		logger.Warn("no version rules for %q and no default entry", manufacturer)
		return nil
	}

	byKey := map[string]domain.Version{}
	for _, page := range sortedPages(pages) {
		text := pages[page]
		perPage := 0
		var taken []span

		for _, re := range rule.patterns {
			for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
				// Overlap is judged on the full match so the generic
				// version/rev patterns cannot re-capture the value of
				// an already matched labelled marker.
				if overlapsAny(taken, loc[0], loc[1]) {
					continue
				}
				start, end := matchBounds(loc)
				value := strings.TrimSpace(text[start:end])
				if value == "" || x.rules.rejected(value) {
					continue
				}

				window := contextWindow(text, start, end)
				if !validContext(window, rule.rule) {
					continue
				}

				confidence := scoreEntity(x.weights, scoreInput{
					validFormat: rule.validation == nil || rule.validation.MatchString(value),
					window:      window,
					occurrences: strings.Count(text, value),
				})
				if confidence < rule.rule.MinConfidence {
					continue
				}

				// The full match (not the capture group) carries the
				// introducing wording used as the label.
				full := strings.ToLower(text[loc[0]:loc[1]])
				version := domain.Version{
					Label:      versionLabel(full),
					Value:      value,
					DocumentID: documentID,
					Page:       page,
					Method:     domain.MethodPattern,
					Context:    window,
					Confidence: confidence,
				}
				key := version.NaturalKey()
				if prev, seen := byKey[key]; !seen || version.Confidence > prev.Confidence {
					byKey[key] = version
				}

				taken = append(taken, span{loc[0], loc[1]})
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

	versions := make([]domain.Version, 0, len(byKey))
	for _, v := range byKey {
		versions = append(versions, v)
	}
	sort.Slice(versions, func(i, j int) bool {
		if versions[i].Page != versions[j].Page {
			return versions[i].Page < versions[j].Page
		}
		return versions[i].NaturalKey() < versions[j].NaturalKey()
	})
	return versions
}

func versionLabel(fullMatch string) string {
	switch {
	case strings.Contains(fullMatch, "firmware"):
		return "firmware"
	case strings.Contains(fullMatch, "document"), strings.Contains(fullMatch, "manual"), strings.Contains(fullMatch, "edition"):
		return "document"
	case strings.Contains(fullMatch, "software"):
		return "software"
	default:
		return "version"
	}
}
