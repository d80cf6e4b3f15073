// Package config loads pipeline configuration from a TOML file into a
// typed Config that is constructed once and passed into each component's
// constructor. There is no ambient global lookup: heuristic constants
// (confidence weights, detection thresholds, reject words) live here
// because they were empirically fitted and are revisited per manufacturer.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config is the root pipeline configuration.
type Config struct {
	// DataDir is where the SQLite database lives.
	// Defaults to ~/.manual2vector/data.
	DataDir string `toml:"data_dir"`

	// RulesDir optionally overrides the embedded manufacturer rule sets.
	RulesDir string `toml:"rules_dir"`

	// Manufacturer pins the manufacturer, or "auto" to detect.
	Manufacturer string `toml:"manufacturer"`

	Extraction Extraction `toml:"extraction"`
	Layout     Layout     `toml:"layout"`
	Detection  Detection  `toml:"detection"`
	Confidence Confidence `toml:"confidence"`
	Chunking   Chunking   `toml:"chunking"`
	Services   Services   `toml:"services"`
}

// Extraction configures the text extraction engine.
type Extraction struct {
	// OCREnabled allows per-page OCR fallback via Tesseract.
	OCREnabled bool `toml:"ocr_enabled"`

	// OCRLanguages is the Tesseract language string, e.g. "eng+deu".
	OCRLanguages string `toml:"ocr_languages"`

	// OCRDPI is the render resolution for OCR page images.
	OCRDPI float64 `toml:"ocr_dpi"`

	// LanguageSamplePages bounds the language detection sample.
	LanguageSamplePages int `toml:"language_sample_pages"`

	// LanguageSampleChars caps the language detection character budget.
	LanguageSampleChars int `toml:"language_sample_chars"`

	// LanguageMinConfidence below which the language is "unknown".
	LanguageMinConfidence float64 `toml:"language_min_confidence"`
}

// Layout configures the structured line scanner. Both caps exist purely
// to bound memory on pathological tables.
type Layout struct {
	// MaxLines caps structured lines kept per page.
	MaxLines int `toml:"max_lines"`

	// MaxLineLength truncates lines, appending an ellipsis marker.
	MaxLineLength int `toml:"max_line_length"`

	// LineTolerance groups spans whose Y coordinates differ by less
	// than this many points into one visual line.
	LineTolerance float64 `toml:"line_tolerance"`
}

// Detection configures manufacturer detection scoring.
type Detection struct {
	FilenameWeight float64 `toml:"filename_weight"`
	AuthorWeight   float64 `toml:"author_weight"`
	TitleWeight    float64 `toml:"title_weight"`

	// MentionWeight is the per-mention score for early-page text,
	// saturating at MentionCap to avoid over-counting name-drops.
	MentionWeight float64 `toml:"mention_weight"`
	MentionCap    float64 `toml:"mention_cap"`

	// SamplePages bounds how many leading pages are scanned for mentions.
	SamplePages int `toml:"sample_pages"`

	// Tier thresholds, logging-only.
	TierExcellent float64 `toml:"tier_excellent"`
	TierVeryHigh  float64 `toml:"tier_very_high"`
	TierHigh      float64 `toml:"tier_high"`
	TierMedium    float64 `toml:"tier_medium"`
}

// Confidence holds the additive confidence weights shared by the entity
// extractors. The sum is clamped to [0,1].
type Confidence struct {
	ValidFormat      float64 `toml:"valid_format"`
	Description      float64 `toml:"description"`
	DescriptionLong  float64 `toml:"description_long"`
	Solution         float64 `toml:"solution"`
	SolutionSteps    float64 `toml:"solution_steps"`
	TechnicalTerm    float64 `toml:"technical_term"`
	TechnicalTermCap float64 `toml:"technical_term_cap"`
	RepeatedCode     float64 `toml:"repeated_code"`
	ContextLength    float64 `toml:"context_length"`
}

// Chunking configures the smart chunker.
type Chunking struct {
	// Size is the soft character target per chunk.
	Size int `toml:"size"`

	// Overlap is the trailing characters carried into the next chunk.
	Overlap int `toml:"overlap"`

	// MinLength below which a chunk is not emitted.
	MinLength int `toml:"min_length"`

	// MinFragment below which a leading fragment (stray header) is
	// dropped instead of starting a chunk.
	MinFragment int `toml:"min_fragment"`
}

// Services configures the optional external collaborators. Empty
// endpoints disable the corresponding stage.
type Services struct {
	Ollama OllamaService `toml:"ollama"`
	Minio  MinioService  `toml:"minio"`
	Video  VideoService  `toml:"video"`
}

// OllamaService configures the local inference endpoints.
type OllamaService struct {
	// Enabled turns on chunk embeddings and image descriptions.
	Enabled bool `toml:"enabled"`

	BaseURL        string `toml:"base_url"`
	EmbeddingModel string `toml:"embedding_model"`
	LLMModel       string `toml:"llm_model"`
	VisionModel    string `toml:"vision_model"`
}

// MinioService configures hash-keyed image storage.
type MinioService struct {
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	Bucket    string `toml:"bucket"`
	UseSSL    bool   `toml:"use_ssl"`
}

// VideoService configures video-platform metadata lookups.
type VideoService struct {
	APIKey string `toml:"api_key"`

	// RequestsPerSecond rate-limits metadata calls.
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// Default returns the configuration with all empirically fitted values.
func Default() *Config {
	return &Config{
		Manufacturer: "auto",
		Extraction: Extraction{
			OCREnabled:            false,
			OCRLanguages:          "eng",
			OCRDPI:                200,
			LanguageSamplePages:   5,
			LanguageSampleChars:   10000,
			LanguageMinConfidence: 0.70,
		},
		Layout: Layout{
			MaxLines:      80,
			MaxLineLength: 200,
			LineTolerance: 2.0,
		},
		Detection: Detection{
			FilenameWeight: 10,
			AuthorWeight:   8,
			TitleWeight:    5,
			MentionWeight:  1,
			MentionCap:     3,
			SamplePages:    5,
			TierExcellent:  20,
			TierVeryHigh:   15,
			TierHigh:       10,
			TierMedium:     5,
		},
		Confidence: Confidence{
			ValidFormat:      0.45,
			Description:      0.10,
			DescriptionLong:  0.05,
			Solution:         0.15,
			SolutionSteps:    0.05,
			TechnicalTerm:    0.03,
			TechnicalTermCap: 0.12,
			RepeatedCode:     0.05,
			ContextLength:    0.03,
		},
		Chunking: Chunking{
			Size:        1000,
			Overlap:     200,
			MinLength:   50,
			MinFragment: 20,
		},
		Services: Services{
			Ollama: OllamaService{
				BaseURL:        "http://localhost:11434",
				EmbeddingModel: "nomic-embed-text",
				LLMModel:       "llama3.2",
				VisionModel:    "llava",
			},
			Video: VideoService{
				RequestsPerSecond: 2,
			},
		},
	}
}

// Load reads a TOML config file over the defaults. If path is empty,
// ~/.manual2vector/config.toml is used when present; a missing file just
// yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(home, ".manual2vector", "config.toml")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
