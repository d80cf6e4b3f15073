// Package services contains the core pipeline logic: manufacturer
// detection and the document processing orchestrator. Services depend
// only on domain types and driven ports; concrete extractors, storage
// and transports are injected.
package services

import (
	"path/filepath"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/config"
	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/core/domain"
	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/logger"
)

// ManufacturerDetector scores weighted signals from the filename, PDF
// metadata and early page text against a canonical alias table. The
// highest-scoring candidate wins; ties break lexicographically so
// repeated runs on the same document always agree.
type ManufacturerDetector struct {
	aliases map[string][]string
	cfg     config.Detection
}

// NewManufacturerDetector builds a detector from the alias table.
func NewManufacturerDetector(aliases map[string][]string, cfg config.Detection) *ManufacturerDetector {
	return &ManufacturerDetector{aliases: aliases, cfg: cfg}
}

// Detect aggregates all signals and returns the best candidate. When no
// alias matches anything, the result has an empty Name and TierLow.
func (d *ManufacturerDetector) Detect(filename string, meta domain.DocumentMetadata, pages map[int]string) domain.ManufacturerDetection {
	var signals []domain.Signal

	base := strings.ToLower(strings.NewReplacer("_", " ", "-", " ").Replace(
		strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))))
	author := strings.ToLower(meta.Author)
	title := strings.ToLower(meta.Title)
	sample := strings.ToLower(d.sampleText(pages))

	for _, name := range d.candidates() {
		for _, alias := range d.aliases[name] {
			alias = strings.ToLower(alias)

			if strings.Contains(base, alias) {
				signals = append(signals, domain.Signal{
					Source: domain.SignalFilename, Candidate: name, Weight: d.cfg.FilenameWeight,
				})
				break
			}
		}
		for _, alias := range d.aliases[name] {
			alias = strings.ToLower(alias)
			if author != "" && strings.Contains(author, alias) {
				signals = append(signals, domain.Signal{
					Source: domain.SignalAuthor, Candidate: name, Weight: d.cfg.AuthorWeight,
				})
				break
			}
		}
		for _, alias := range d.aliases[name] {
			alias = strings.ToLower(alias)
			if title != "" && strings.Contains(title, alias) {
				signals = append(signals, domain.Signal{
					Source: domain.SignalTitle, Candidate: name, Weight: d.cfg.TitleWeight,
				})
				break
			}
		}

		mentions := 0
		for _, alias := range d.aliases[name] {
			mentions += countMentions(sample, strings.ToLower(alias))
		}
		if float64(mentions) > d.cfg.MentionCap {
			mentions = int(d.cfg.MentionCap)
		}
		if mentions > 0 {
			signals = append(signals, domain.Signal{
				Source: domain.SignalMentions, Candidate: name, Weight: d.cfg.MentionWeight * float64(mentions),
			})
		}
	}

	scores := map[string]float64{}
	for _, s := range signals {
		scores[s.Candidate] += s.Weight
	}

	best, bestScore := "", 0.0
	for name, score := range scores {
		if score > bestScore || (score == bestScore && best != "" && name < best) {
			best, bestScore = name, score
		}
	}

	detection := domain.ManufacturerDetection{
		Name:    best,
		Score:   bestScore,
		Tier:    d.tier(bestScore),
		Signals: signals,
	}
	if best != "" {
		logger.Info("manufacturer: %s (score %.0f, %s)", best, bestScore, detection.Tier)
	}
	return detection
}

// sampleText concatenates the first configured pages for mention
// counting. Late pages are noise for brand detection.
func (d *ManufacturerDetector) sampleText(pages map[int]string) string {
	nums := make([]int, 0, len(pages))
	for p := range pages {
		nums = append(nums, p)
	}
	sort.Ints(nums)

	var sb strings.Builder
	for i, p := range nums {
		if i >= d.cfg.SamplePages {
			break
		}
		sb.WriteString(pages[p])
		sb.WriteString("\n")
	}
	return sb.String()
}

// countMentions counts whole-word occurrences of alias in sample. Short
// aliases such as "hp" must not match inside words like "sharpness", so
// an occurrence only counts when neither neighbouring rune is a letter
// or digit.
func countMentions(sample, alias string) int {
	if alias == "" {
		return 0
	}
	count := 0
	for offset := 0; ; {
		i := strings.Index(sample[offset:], alias)
		if i < 0 {
			return count
		}
		start := offset + i
		end := start + len(alias)
		if !wordRuneBefore(sample, start) && !wordRuneAt(sample, end) {
			count++
		}
		offset = end
	}
}

func wordRuneBefore(s string, pos int) bool {
	if pos == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(s[:pos])
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func wordRuneAt(s string, pos int) bool {
	if pos >= len(s) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s[pos:])
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// candidates returns alias-table keys in stable order.
func (d *ManufacturerDetector) candidates() []string {
	names := make([]string, 0, len(d.aliases))
	for name := range d.aliases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (d *ManufacturerDetector) tier(score float64) string {
	switch {
	case score >= d.cfg.TierExcellent:
		return domain.TierExcellent
	case score >= d.cfg.TierVeryHigh:
		return domain.TierVeryHigh
	case score >= d.cfg.TierHigh:
		return domain.TierHigh
	case score >= d.cfg.TierMedium:
		return domain.TierMedium
	default:
		return domain.TierLow
	}
}
