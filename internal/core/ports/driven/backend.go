package driven

import (
	"context"

	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/core/domain"
)

// Span is a positioned text fragment on a page, in PDF user-space
// coordinates (origin bottom-left).
type Span struct {
	Text     string
	X        float64
	Y        float64
	FontSize float64
}

// Page is one extracted page. Spans may be empty when the backend only
// produces flattened text.
type Page struct {
	// Number is 1-based.
	Number int
	Text   string
	Spans  []Span
}

// DocumentInfo carries the PDF info dictionary fields a backend can read.
type DocumentInfo struct {
	Title        string
	Author       string
	CreationDate string
	PageCount    int
}

// BackendResult is the raw output of one backend run. Pages that failed
// are absent from Pages and listed in PageErrors; a backend returns an
// error only when the whole document could not be opened or read.
type BackendResult struct {
	Pages      []Page
	PageErrors []domain.PageError
	Info       DocumentInfo
}

// PDFBackend extracts per-page text from a PDF file. The open file
// handle is scoped to the Extract call; results never retain it.
type PDFBackend interface {
	// Name identifies the backend in extraction metrics.
	Name() string

	// Extract reads the whole document.
	Extract(ctx context.Context, path string) (*BackendResult, error)
}

// PageRenderer rasterises single pages, used to feed the OCR engine and
// to pull page images for object storage.
type PageRenderer interface {
	// RenderPage returns a PNG of the 1-based page at the given DPI.
	RenderPage(ctx context.Context, path string, page int, dpi float64) ([]byte, error)

	// PageCount returns the number of pages in the document.
	PageCount(ctx context.Context, path string) (int, error)
}

// OCREngine recognises text in a rendered page image.
type OCREngine interface {
	// Recognize returns the text found in the image data.
	Recognize(ctx context.Context, image []byte) (string, error)

	// Close releases engine resources.
	Close() error
}

// ImageExtractor pulls embedded images out of a PDF page.
type ImageExtractor interface {
	// PageImages returns the raw embedded images of the 1-based page.
	PageImages(ctx context.Context, path string, page int) ([]EmbeddedImage, error)
}

// EmbeddedImage is one image resource found on a page.
type EmbeddedImage struct {
	Data   []byte
	Format string
}
