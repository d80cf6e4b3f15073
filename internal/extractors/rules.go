// Package extractors implements the manufacturer-aware pattern matching
// engine: rule-set loading, context validation, remediation recovery,
// additive confidence scoring and per-page deduplication shared by the
// error-code, parts, product and version extractors.
package extractors

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/core/domain"
	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/logger"
)

//go:embed rules/*.json
var defaultRules embed.FS

// Rule is one manufacturer's matching configuration for an entity kind.
type Rule struct {
	// Patterns are the extraction regular expressions. The first
	// capture group (or the whole match) is the entity value.
	Patterns []string `json:"patterns"`

	// Validation optionally re-checks the captured value.
	Validation string `json:"validation,omitempty"`

	// RequiredContext keywords: the context window must contain at
	// least one (case-insensitive). Empty means no requirement.
	RequiredContext []string `json:"required_context"`

	// ExcludedContext keywords: the context window must contain none.
	ExcludedContext []string `json:"excluded_context"`

	// MinConfidence below which entities are discarded.
	MinConfidence float64 `json:"min_confidence"`

	// MaxPerPage caps emitted entities per page.
	MaxPerPage int `json:"max_per_page"`
}

// RuleSet is the parsed JSON document for one entity kind.
type RuleSet struct {
	RejectWords   []string        `json:"reject_words"`
	Manufacturers map[string]Rule `json:"manufacturers"`
}

// compiledRule pairs a Rule with its compiled expressions.
type compiledRule struct {
	rule       Rule
	patterns   []*regexp.Regexp
	validation *regexp.Regexp
}

// Rules is a compiled, manufacturer-keyed rule registry for one entity
// kind. It is loaded once per extractor instance; there is no hot
// reload and no ambient global registry.
type Rules struct {
	kind        string
	rejectWords map[string]struct{}
	byName      map[string]*compiledRule
}

// LoadRules loads and compiles the rule set for kind ("error_codes",
// "parts", "products", "versions"). When dir is non-empty,
// dir/<kind>.json overrides the embedded default. A missing or
// malformed file returns a *domain.ConfigurationError along with an
// empty registry so callers can degrade.
func LoadRules(kind, dir string) (*Rules, error) {
	empty := &Rules{
		kind:        kind,
		rejectWords: map[string]struct{}{},
		byName:      map[string]*compiledRule{},
	}

	data, err := readRuleFile(kind, dir)
	if err != nil {
		return empty, &domain.ConfigurationError{Path: kind + ".json", Err: err}
	}

	var set RuleSet
	if err := json.Unmarshal(data, &set); err != nil {
		return empty, &domain.ConfigurationError{Path: kind + ".json", Err: err}
	}

	rules := &Rules{
		kind:        kind,
		rejectWords: make(map[string]struct{}, len(set.RejectWords)),
		byName:      make(map[string]*compiledRule, len(set.Manufacturers)),
	}
	for _, w := range set.RejectWords {
		rules.rejectWords[strings.ToLower(w)] = struct{}{}
	}

	for name, rule := range set.Manufacturers {
		compiled, err := compileRule(rule)
		if err != nil {
			return empty, &domain.ConfigurationError{
				Path: kind + ".json",
				Err:  fmt.Errorf("manufacturer %s: %w", name, err),
			}
		}
		rules.byName[strings.ToLower(name)] = compiled
	}

	return rules, nil
}

// MustLoadRules loads rules and degrades to an empty registry on
// configuration errors, logging the problem. Used by extractors whose
// contract is to return empty results rather than fail.
func MustLoadRules(kind, dir string) *Rules {
	rules, err := LoadRules(kind, dir)
	if err != nil {
		logger.Warn("rule set %s degraded to empty: %v", kind, err)
	}
	return rules
}

func compileRule(rule Rule) (*compiledRule, error) {
	c := &compiledRule{rule: rule}
	for _, p := range rule.Patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", p, err)
		}
		c.patterns = append(c.patterns, re)
	}
	if rule.Validation != "" {
		re, err := regexp.Compile(rule.Validation)
		if err != nil {
			return nil, fmt.Errorf("validation %q: %w", rule.Validation, err)
		}
		c.validation = re
	}
	return c, nil
}

func readRuleFile(kind, dir string) ([]byte, error) {
	if dir != "" {
		path := filepath.Join(dir, kind+".json")
		if _, err := os.Stat(path); err == nil {
			return os.ReadFile(path)
		}
	}
	return defaultRules.ReadFile("rules/" + kind + ".json")
}

// forManufacturer resolves the rule for a manufacturer. When strict is
// false a "default" entry may serve as fallback; error codes resolve
// strictly because generic patterns collide with part numbers.
func (r *Rules) forManufacturer(manufacturer string, strict bool) (*compiledRule, bool) {
	if c, ok := r.byName[strings.ToLower(manufacturer)]; ok {
		return c, true
	}
	if !strict {
		if c, ok := r.byName["default"]; ok {
			return c, true
		}
	}
	return nil, false
}

// Known reports whether a manufacturer-specific rule exists.
func (r *Rules) Known(manufacturer string) bool {
	_, ok := r.byName[strings.ToLower(manufacturer)]
	return ok
}

// rejected reports whether a captured value is in the static reject list.
func (r *Rules) rejected(value string) bool {
	_, ok := r.rejectWords[strings.ToLower(strings.TrimSpace(value))]
	return ok
}

// ManufacturerAliases loads the alias table used by manufacturer
// detection: canonical name to the spellings that count as a mention.
func ManufacturerAliases(dir string) (map[string][]string, error) {
	data, err := readRuleFile("manufacturers", dir)
	if err != nil {
		return nil, &domain.ConfigurationError{Path: "manufacturers.json", Err: err}
	}
	var aliases map[string][]string
	if err := json.Unmarshal(data, &aliases); err != nil {
		return nil, &domain.ConfigurationError{Path: "manufacturers.json", Err: err}
	}
	return aliases, nil
}
