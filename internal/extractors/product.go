package extractors

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/config"
	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/core/domain"
	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/logger"
)

// filenameModelRe matches model-shaped tokens in a document filename,
// e.g. C458, M479fdw, MX3071.
var filenameModelRe = regexp.MustCompile(`\b[A-Z]{1,2}\d{3,4}[A-Za-z]{0,3}\b`)

// filenameConfidence is the fixed score for models recovered from the
// filename. Filenames carry no context so the additive signals never
// apply.
const filenameConfidence = 0.4

// ProductExtractor finds product model designations in page text, with
// a filename-parsing fallback so documents whose bodies never spell out
// the model still get at least one product entity.
type ProductExtractor struct {
	rules   *Rules
	weights config.Confidence
}

// NewProductExtractor loads the products rule set.
func NewProductExtractor(cfg *config.Config) *ProductExtractor {
	return &ProductExtractor{
		rules:   MustLoadRules("products", cfg.RulesDir),
		weights: cfg.Confidence,
	}
}

// Extract scans page text for model designations. filename is the bare
// document filename; when the text scan finds nothing, model-shaped
// tokens from the filename are emitted with a fixed low confidence and
// the filename page sentinel.
func (x *ProductExtractor) Extract(pages map[int]string, filename, manufacturer, documentID string) []domain.ProductModel {
	byKey := map[string]domain.ProductModel{}

	rule, ok := x.rules.forManufacturer(manufacturer, false)
	if !ok {
		logger.Warn("no product rules for %q and no default entry", manufacturer)
	} else {
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

					confidence := scoreEntity(x.weights, scoreInput{
						validFormat: valid,
						window:      window,
						occurrences: strings.Count(text, value),
					})
					if confidence < rule.rule.MinConfidence {
						continue
					}

					product := domain.ProductModel{
						Model:        value,
						Series:       deriveSeries(value),
						Manufacturer: manufacturer,
						DocumentID:   documentID,
						Page:         page,
						Method:       domain.MethodPattern,
						Context:      window,
						Confidence:   confidence,
					}
					key := product.NaturalKey()
					if prev, seen := byKey[key]; !seen || product.Confidence > prev.Confidence {
						byKey[key] = product
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
	}

	if len(byKey) == 0 && filename != "" {
		for _, p := range fromFilename(filename, manufacturer, documentID) {
			byKey[p.NaturalKey()] = p
		}
	}

	products := make([]domain.ProductModel, 0, len(byKey))
	for _, p := range byKey {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool {
		if products[i].Page != products[j].Page {
			return products[i].Page < products[j].Page
		}
		return products[i].Model < products[j].Model
	})
	return products
}

// fromFilename recovers model tokens from the document filename.
func fromFilename(filename, manufacturer, documentID string) []domain.ProductModel {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)

	var out []domain.ProductModel
	for _, tok := range filenameModelRe.FindAllString(base, -1) {
		out = append(out, domain.ProductModel{
			Model:        tok,
			Manufacturer: manufacturer,
			DocumentID:   documentID,
			Page:         domain.PageFilename,
			Method:       domain.MethodFilenameParsing,
			Confidence:   filenameConfidence,
		})
	}
	return out
}

// deriveSeries returns the alphabetic lead-in of a model designation
// when present, e.g. "bizhub" from "bizhub C458".
func deriveSeries(model string) string {
	fields := strings.Fields(model)
	if len(fields) < 2 {
		return ""
	}
	var lead []string
	for _, f := range fields[:len(fields)-1] {
		if strings.IndexFunc(f, func(r rune) bool { return r >= '0' && r <= '9' }) >= 0 {
			break
		}
		lead = append(lead, f)
	}
	return strings.Join(lead, " ")
}
