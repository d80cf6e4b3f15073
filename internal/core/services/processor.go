package services

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/config"
	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/core/domain"
	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/core/ports/driven"
	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/logger"
)

// DocumentProcessor runs the full pipeline for a single PDF: text
// extraction, manufacturer detection, entity extraction, chunking,
// optional enrichment and persistence. Only a document with no
// extractable text at all fails the run; every other gap is reported as
// a validation issue on the result.
type DocumentProcessor struct {
	cfg        *config.Config
	extractor  driven.TextExtractor
	detector   *ManufacturerDetector
	errorCodes driven.ErrorCodeExtractor
	parts      driven.PartExtractor
	products   driven.ProductExtractor
	versions   driven.VersionExtractor
	links      driven.LinkHarvester
	chunker    driven.Chunker
	repo       driven.Repository

	// Optional collaborators, any of which may be nil.
	embedder driven.EmbeddingService
	images   driven.ImageExtractor
	store    driven.ObjectStore
	vision   driven.VisionService
	video    driven.VideoMetadataService
	llm      driven.LLMService
}

// Enrichment groups the optional collaborators. Any nil field disables
// the matching enrichment stage.
type Enrichment struct {
	Embedder driven.EmbeddingService
	Images   driven.ImageExtractor
	Store    driven.ObjectStore
	Vision   driven.VisionService
	Video    driven.VideoMetadataService
	LLM      driven.LLMService
}

// NewDocumentProcessor wires the pipeline from injected collaborators.
func NewDocumentProcessor(
	cfg *config.Config,
	extractor driven.TextExtractor,
	detector *ManufacturerDetector,
	errorCodes driven.ErrorCodeExtractor,
	parts driven.PartExtractor,
	products driven.ProductExtractor,
	versions driven.VersionExtractor,
	links driven.LinkHarvester,
	chunker driven.Chunker,
	repo driven.Repository,
	enrich Enrichment,
) *DocumentProcessor {
	return &DocumentProcessor{
		cfg:        cfg,
		extractor:  extractor,
		detector:   detector,
		errorCodes: errorCodes,
		parts:      parts,
		products:   products,
		versions:   versions,
		links:      links,
		chunker:    chunker,
		repo:       repo,
		embedder:   enrich.Embedder,
		images:     enrich.Images,
		store:      enrich.Store,
		vision:     enrich.Vision,
		video:      enrich.Video,
		llm:        enrich.LLM,
	}
}

// Process runs the pipeline for one PDF file.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (p *DocumentProcessor) Process(ctx context.Context, path string) (*domain.ProcessingResult, error) {
	started := time.Now()
	filename := filepath.Base(path)

	id, err := documentID(path)
	if err != nil {
		return nil, fmt.Errorf("compute document id: %w", err)
	}
	result := &domain.ProcessingResult{DocumentID: id}

	logger.Section("Processing %s", filename)

	// 1. Text extraction. The only fatal stage.
	extracted, err := p.extractor.Extract(ctx, path)
	if err != nil {
		return result, fmt.Errorf("extract text: %w", err)
	}
	for _, pe := range extracted.PageErrors {
		result.ValidationErrors = append(result.ValidationErrors, domain.ValidationIssue{
			Stage:    "extraction",
			Severity: domain.SeverityWarning,
			Message:  fmt.Sprintf("page %d yielded no text: %v", pe.Page, pe.Err),
		})
	}

	// 2. Manufacturer detection, unless overridden by configuration.
	manufacturer := p.cfg.Manufacturer
	var detection domain.ManufacturerDetection
	if manufacturer == "" || manufacturer == domain.ManufacturerAuto {
		detection = p.detector.Detect(filename, extracted.Metadata, extracted.Pages)
		manufacturer = detection.Name
	}
	result.Manufacturer = manufacturer
	if manufacturer == "" {
		result.ValidationErrors = append(result.ValidationErrors, domain.ValidationIssue{
			Stage:    "detection",
			Severity: domain.SeverityWarning,
			Message:  "no manufacturer signal found",
		})
	}

	// 3. Entity extraction. Error codes are the only extractor that can
	// refuse: unknown manufacturers surface as an issue, not a failure.
	codes, err := p.errorCodes.Extract(extracted.Pages, extracted.Structured, manufacturer, id)
	if err != nil {
		if !errors.Is(err, domain.ErrUnknownManufacturer) {
			return result, fmt.Errorf("extract error codes: %w", err)
		}
		result.ValidationErrors = append(result.ValidationErrors, domain.ValidationIssue{
			Stage:    "error_code",
			Severity: domain.SeverityError,
			Message:  err.Error(),
		})
	}
	parts := p.parts.Extract(extracted.Pages, manufacturer, id)
	products := p.products.Extract(extracted.Pages, filename, manufacturer, id)
	products = p.supplementProducts(ctx, extracted.Pages, manufacturer, id, products, result)
	versions := p.versions.Extract(extracted.Pages, manufacturer, id)
	links := p.links.Harvest(extracted.Pages, id)

	// 4. Chunking and entity-chunk linking.
	chunks := p.chunker.Chunk(id, extracted.Pages)
	for i := range codes {
		for _, ch := range chunks {
			if ch.ContainsPage(codes[i].Page) {
				codes[i].ChunkID = ch.ID
				break
			}
		}
	}

	// 5. Optional enrichment.
	p.embedChunks(ctx, chunks, result)
	images := p.collectImages(ctx, path, id, extracted.Metadata.PageCount, result)
	p.resolveVideos(ctx, links, result)

	// 6. Entity validation. Invalid entities are dropped, not saved.
	codes = filterValid(codes, result)
	parts = filterValid(parts, result)
	products = filterValid(products, result)
	versions = filterValid(versions, result)

	// 7. Persistence via natural-key upserts.
	doc := &domain.Document{
		ID:                id,
		Path:              path,
		Filename:          filename,
		Manufacturer:      manufacturer,
		ManufacturerScore: detection.Score,
		Metadata:          extracted.Metadata,
		CreatedAt:         started,
		UpdatedAt:         started,
	}
	if err := p.persist(ctx, doc, chunks, codes, parts, products, versions, images, links); err != nil {
		return result, err
	}

	result.Success = true
	result.Statistics = domain.Statistics{
		Pages:       extracted.Metadata.PageCount,
		PagesFailed: extracted.Metadata.PagesFailed,
		Chunks:      len(chunks),
		ErrorCodes:  len(codes),
		Parts:       len(parts),
		Products:    len(products),
		Versions:    len(versions),
		Images:      len(images),
		Links:       len(links),
		Duration:    time.Since(started),
	}
	logger.Info("done: %d chunks, %d codes, %d parts, %d products in %s",
		len(chunks), len(codes), len(parts), len(products), result.Statistics.Duration.Round(time.Millisecond))
	return result, nil
}

// embedChunks attaches vectors in place. Embedding failures degrade to
// vectorless chunks.
func (p *DocumentProcessor) embedChunks(ctx context.Context, chunks []domain.Chunk, result *domain.ProcessingResult) {
	if p.embedder == nil || len(chunks) == 0 {
		return
	}
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	vectors, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil || len(vectors) != len(chunks) {
		result.ValidationErrors = append(result.ValidationErrors, domain.ValidationIssue{
			Stage:    "embedding",
			Severity: domain.SeverityWarning,
			Message:  fmt.Sprintf("embedding skipped: %v", err),
		})
		return
	}
	for i := range chunks {
		chunks[i].Embedding = vectors[i]
	}
}

// modelShapeRe accepts answers that look like product model identifiers
// rather than prose.
var modelShapeRe = regexp.MustCompile(`^[A-Za-z]{0,4}[- ]?\d{3,5}[A-Za-z]{0,5}$`)

// llmProductConfidence sits below the filename fallback: an unverified
// model answer never outranks one read off the document itself.
const llmProductConfidence = 0.3

// supplementProducts asks the local LLM for model names when nothing was
// found on the pages themselves. Best effort; failures are informational.
func (p *DocumentProcessor) supplementProducts(
	ctx context.Context,
	pages map[int]string,
	manufacturer, documentID string,
	products []domain.ProductModel,
	result *domain.ProcessingResult,
) []domain.ProductModel {
	if p.llm == nil {
		return products
	}
	for _, prod := range products {
		if prod.Method != domain.MethodFilenameParsing {
			return products
		}
	}

	sample := leadingPagesText(pages, 3, 4000)
	if strings.TrimSpace(sample) == "" {
		return products
	}

	prompt := fmt.Sprintf(
		"List the printer or copier model numbers this service manual covers. "+
			"Answer with one model number per line and nothing else.\n\n%s", sample)
	answer, err := p.llm.Generate(ctx, prompt, driven.GenerateOptions{MaxTokens: 128})
	if err != nil {
		result.ValidationErrors = append(result.ValidationErrors, domain.ValidationIssue{
			Stage:    "product_llm",
			Severity: domain.SeverityInfo,
			Message:  fmt.Sprintf("llm supplement skipped: %v", err),
		})
		return products
	}

	seen := make(map[string]struct{}, len(products))
	for _, prod := range products {
		seen[prod.NaturalKey()] = struct{}{}
	}
	for _, line := range strings.Split(answer, "\n") {
		model := strings.Trim(strings.TrimSpace(line), "-*• \t")
		if model == "" || !modelShapeRe.MatchString(model) {
			continue
		}
		candidate := domain.ProductModel{
			Model:        model,
			Manufacturer: manufacturer,
			DocumentID:   documentID,
			Page:         domain.PageFilename,
			Method:       domain.MethodLLM,
			Confidence:   llmProductConfidence,
		}
		if _, dup := seen[candidate.NaturalKey()]; dup {
			continue
		}
		seen[candidate.NaturalKey()] = struct{}{}
		products = append(products, candidate)
	}
	return products
}

// leadingPagesText concatenates the first n pages, capped at maxChars.
func leadingPagesText(pages map[int]string, n, maxChars int) string {
	numbers := make([]int, 0, len(pages))
	for page := range pages {
		numbers = append(numbers, page)
	}
	sort.Ints(numbers)

	var b strings.Builder
	for i, page := range numbers {
		if i >= n || b.Len() >= maxChars {
			break
		}
		b.WriteString(pages[page])
		b.WriteString("\n")
	}
	text := b.String()
	if len(text) > maxChars {
		text = text[:maxChars]
	}
	return text
}

// collectImages pulls embedded page images, uploads them when an object
// store is configured, and asks the vision collaborator for captions.
func (p *DocumentProcessor) collectImages(ctx context.Context, path, documentID string, pageCount int, result *domain.ProcessingResult) []domain.Image {
	if p.images == nil {
		return nil
	}

	var out []domain.Image
	seen := map[string]struct{}{}
	for page := 1; page <= pageCount; page++ {
		embedded, err := p.images.PageImages(ctx, path, page)
		if err != nil {
			result.ValidationErrors = append(result.ValidationErrors, domain.ValidationIssue{
				Stage:    "images",
				Severity: domain.SeverityWarning,
				Message:  fmt.Sprintf("page %d images: %v", page, err),
			})
			continue
		}
		for _, img := range embedded {
			sum := sha256.Sum256(img.Data)
			hash := fmt.Sprintf("%x", sum)
			if _, dup := seen[hash]; dup {
				continue
			}
			seen[hash] = struct{}{}

			record := domain.Image{
				DocumentID: documentID,
				Page:       page,
				Hash:       hash,
				Format:     img.Format,
			}
			if p.store != nil {
				key := documentID + "/" + hash + "." + img.Format
				if exists, err := p.store.Exists(ctx, key); err == nil && !exists {
					if stored, err := p.store.Put(ctx, key, img.Data, "image/"+img.Format); err == nil {
						record.StorageKey = stored
					}
				} else if err == nil {
					record.StorageKey = key
				}
			}
			if p.vision != nil {
				if desc, err := p.vision.Describe(ctx, img.Data, "Describe this service manual figure in one sentence."); err == nil {
					record.Description = desc
				}
			}
			out = append(out, record)
		}
	}
	return out
}

// resolveVideos fills platform metadata for links that carry a video id.
func (p *DocumentProcessor) resolveVideos(ctx context.Context, links []domain.Link, result *domain.ProcessingResult) {
	if p.video == nil {
		return
	}
	for i := range links {
		if links[i].VideoID == "" {
			continue
		}
		info, err := p.video.Lookup(ctx, links[i].VideoID)
		if err != nil {
			result.ValidationErrors = append(result.ValidationErrors, domain.ValidationIssue{
				Stage:    "video",
				Severity: domain.SeverityInfo,
				Message:  fmt.Sprintf("video %s: %v", links[i].VideoID, err),
			})
			continue
		}
		links[i].Title = info.Title
		links[i].Duration = info.Duration
		links[i].Thumbnail = info.Thumbnail
	}
}

func (p *DocumentProcessor) persist(
	ctx context.Context,
	doc *domain.Document,
	chunks []domain.Chunk,
	codes []domain.ErrorCode,
	parts []domain.Part,
	products []domain.ProductModel,
	versions []domain.Version,
	images []domain.Image,
	links []domain.Link,
) error {
	if err := p.repo.SaveDocument(ctx, doc); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	if err := p.repo.SaveChunks(ctx, chunks); err != nil {
		return fmt.Errorf("save chunks: %w", err)
	}
	if err := p.repo.SaveErrorCodes(ctx, codes); err != nil {
		return fmt.Errorf("save error codes: %w", err)
	}
	if err := p.repo.SaveParts(ctx, parts); err != nil {
		return fmt.Errorf("save parts: %w", err)
	}
	if err := p.repo.SaveProducts(ctx, products); err != nil {
		return fmt.Errorf("save products: %w", err)
	}
	if err := p.repo.SaveVersions(ctx, versions); err != nil {
		return fmt.Errorf("save versions: %w", err)
	}
	if err := p.repo.SaveImages(ctx, images); err != nil {
		return fmt.Errorf("save images: %w", err)
	}
	if err := p.repo.SaveLinks(ctx, links); err != nil {
		return fmt.Errorf("save links: %w", err)
	}
	return nil
}

// filterValid drops entities whose invariants fail, recording each drop.
func filterValid[E domain.Entity](entities []E, result *domain.ProcessingResult) []E {
	out := entities[:0]
	for _, e := range entities {
		if issues := domain.Validate(e); len(issues) > 0 {
			result.ValidationErrors = append(result.ValidationErrors, issues...)
			continue
		}
		out = append(out, e)
	}
	return out
}

// documentID derives a stable identifier from the file content so
// re-processing the same document always reuses the same id and, through
// it, the same natural keys.
func documentID(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, h.Sum(nil)).String(), nil
}
