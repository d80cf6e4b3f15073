package driven

import (
	"context"

	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/core/domain"
)

// ExtractionResult is the text extraction output consumed read-only by
// the rest of the pipeline.
type ExtractionResult struct {
	// Pages maps 1-based page number to cleaned text.
	Pages map[int]string

	// Structured maps page number to recovered table lines, present
	// only for pages where the layout scanner found qualifying rows.
	Structured map[int]string

	// Metadata describes the extraction run.
	Metadata domain.DocumentMetadata

	// PageErrors lists pages that yielded no text from any route.
	PageErrors []domain.PageError
}

// TextExtractor produces per-page text from a source PDF.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (*ExtractionResult, error)
}

// ErrorCodeExtractor finds fault codes. It returns
// domain.ErrUnknownManufacturer when no rule set covers manufacturer.
type ErrorCodeExtractor interface {
	Extract(pages, structured map[int]string, manufacturer, documentID string) ([]domain.ErrorCode, error)
}

// PartExtractor finds spare-part numbers, degrading to generic rules
// for unknown manufacturers.
type PartExtractor interface {
	Extract(pages map[int]string, manufacturer, documentID string) []domain.Part
}

// ProductExtractor finds product models, falling back to filename
// parsing when page text yields nothing.
type ProductExtractor interface {
	Extract(pages map[int]string, filename, manufacturer, documentID string) []domain.ProductModel
}

// VersionExtractor finds firmware and document revision markers.
type VersionExtractor interface {
	Extract(pages map[int]string, manufacturer, documentID string) []domain.Version
}

// LinkHarvester collects URLs from page text.
type LinkHarvester interface {
	Harvest(pages map[int]string, documentID string) []domain.Link
}

// Chunker splits page text into deduplicated, classified chunks.
type Chunker interface {
	Chunk(documentID string, pages map[int]string) []domain.Chunk
}
