package extraction

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/config"
	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/core/domain"
	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/core/ports/driven"
	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/logger"
)

// Result is the engine output consumed read-only downstream.
type Result = driven.ExtractionResult

// Engine is the dual-backend text extraction engine with OCR fallback.
type Engine struct {
	primary   driven.PDFBackend
	secondary driven.PDFBackend
	renderer  driven.PageRenderer
	ocr       driven.OCREngine
	layout    *LayoutScanner
	language  *LanguageDetector
	cfg       config.Extraction
}

// NewEngine wires the engine from injected backends. renderer and ocr
// may be nil, which disables per-page OCR fallback.
func NewEngine(
	cfg *config.Config,
	primary driven.PDFBackend,
	secondary driven.PDFBackend,
	renderer driven.PageRenderer,
	ocr driven.OCREngine,
) *Engine {
	return &Engine{
		primary:   primary,
		secondary: secondary,
		renderer:  renderer,
		ocr:       ocr,
		layout:    NewLayoutScanner(cfg.Layout),
		language:  NewLanguageDetector(cfg.Extraction.LanguageMinConfidence),
		cfg:       cfg.Extraction,
	}
}

// Extract runs the pipeline's first stage. It fails with
// domain.ErrNoTextExtracted only when neither backend nor OCR yields any
// text for the whole document.
func (e *Engine) Extract(ctx context.Context, path string) (*Result, error) {
	fileSize := int64(0)
	if fi, err := os.Stat(path); err == nil {
		fileSize = fi.Size()
	}

	backendName := e.primary.Name()
	fallbackUsed := false

	raw, err := e.primary.Extract(ctx, path)
	if err != nil || len(raw.Pages) == 0 {
		if err != nil {
			logger.Warn("primary backend %s failed: %v", e.primary.Name(), err)
		}
		raw, err = e.secondary.Extract(ctx, path)
		if err != nil {
			logger.Warn("secondary backend %s failed: %v", e.secondary.Name(), err)
			return e.extractViaOCR(ctx, path, fileSize, err)
		}
		backendName = e.secondary.Name()
		fallbackUsed = true
	}

	result := &Result{
		Pages:      make(map[int]string, len(raw.Pages)),
		Structured: make(map[int]string),
	}
	for _, page := range raw.Pages {
		result.Pages[page.Number] = page.Text
		if len(page.Spans) > 0 {
			if lines := e.layout.Scan(page.Spans); lines != "" {
				result.Structured[page.Number] = lines
			}
		}
	}

	// Per-page OCR fallback, only for the pages that failed.
	for _, perr := range raw.PageErrors {
		text, ok := e.ocrPage(ctx, path, perr.Page)
		if ok {
			result.Pages[perr.Page] = text
			fallbackUsed = true
			continue
		}
		result.PageErrors = append(result.PageErrors, perr)
		logger.Warn("page %d skipped: %v", perr.Page, perr.Err)
	}

	if len(result.Pages) == 0 {
		return nil, domain.ErrNoTextExtracted
	}

	language, confidence := e.language.Detect(e.languageSample(result.Pages))

	result.Metadata = domain.DocumentMetadata{
		Title:              raw.Info.Title,
		Author:             raw.Info.Author,
		CreationDate:       raw.Info.CreationDate,
		PageCount:          raw.Info.PageCount,
		FileSize:           fileSize,
		Language:           language,
		LanguageConfidence: confidence,
		Engine:             backendName,
		FallbackUsed:       fallbackUsed,
		PagesFailed:        len(result.PageErrors),
	}

	logger.Info("extracted %d/%d pages via %s (fallback=%v, language=%s)",
		len(result.Pages), raw.Info.PageCount, backendName, fallbackUsed, language)

	return result, nil
}

// extractViaOCR recognises the whole document page by page when both
// backends failed at document level. Fully scanned manuals land here.
func (e *Engine) extractViaOCR(ctx context.Context, path string, fileSize int64, cause error) (*Result, error) {
	failure := fmt.Errorf("%w: both backends failed: %v", domain.ErrNoTextExtracted, cause)
	if !e.cfg.OCREnabled || e.renderer == nil || e.ocr == nil {
		return nil, failure
	}

	pageCount, err := e.renderer.PageCount(ctx, path)
	if err != nil || pageCount == 0 {
		return nil, failure
	}

	result := &Result{
		Pages:      make(map[int]string, pageCount),
		Structured: make(map[int]string),
	}
	for page := 1; page <= pageCount; page++ {
		text, ok := e.ocrPage(ctx, path, page)
		if !ok {
			result.PageErrors = append(result.PageErrors, domain.PageError{
				Page: page,
				Err:  fmt.Errorf("no text from any route"),
			})
			continue
		}
		result.Pages[page] = text
	}
	if len(result.Pages) == 0 {
		return nil, failure
	}

	language, confidence := e.language.Detect(e.languageSample(result.Pages))
	result.Metadata = domain.DocumentMetadata{
		PageCount:          pageCount,
		FileSize:           fileSize,
		Language:           language,
		LanguageConfidence: confidence,
		Engine:             "ocr",
		FallbackUsed:       true,
		PagesFailed:        len(result.PageErrors),
	}

	logger.Info("extracted %d/%d pages via OCR after backend failure", len(result.Pages), pageCount)
	return result, nil
}

// ocrPage renders and recognises a single failed page. Best effort: any
// error just reports the page as failed.
func (e *Engine) ocrPage(ctx context.Context, path string, page int) (string, bool) {
	if !e.cfg.OCREnabled || e.renderer == nil || e.ocr == nil {
		return "", false
	}
	png, err := e.renderer.RenderPage(ctx, path, page, e.cfg.OCRDPI)
	if err != nil {
		logger.Debug("render page %d for OCR: %v", page, err)
		return "", false
	}
	text, err := e.ocr.Recognize(ctx, png)
	if err != nil {
		logger.Debug("OCR page %d: %v", page, err)
		return "", false
	}
	text = cleanText(text)
	if text == "" {
		return "", false
	}
	logger.Debug("page %d recovered via OCR (%d chars)", page, len(text))
	return text, true
}

// languageSample concatenates the first pages up to the configured page
// and character budgets.
func (e *Engine) languageSample(pages map[int]string) string {
	numbers := make([]int, 0, len(pages))
	for n := range pages {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	maxPages := e.cfg.LanguageSamplePages
	if maxPages <= 0 {
		maxPages = 5
	}
	budget := e.cfg.LanguageSampleChars
	if budget <= 0 {
		budget = 10000
	}

	var sb strings.Builder
	for i, n := range numbers {
		if i >= maxPages || sb.Len() >= budget {
			break
		}
		remaining := budget - sb.Len()
		text := pages[n]
		if len(text) > remaining {
			text = text[:remaining]
		}
		sb.WriteString(text)
		sb.WriteByte('\n')
	}
	return sb.String()
}
