package extraction

import (
	"context"
	"fmt"

	"github.com/gen2brain/go-fitz"

	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/core/ports/driven"
)

// Ensure FitzRenderer implements the interface.
var _ driven.PageRenderer = (*FitzRenderer)(nil)

// FitzRenderer rasterises pages with MuPDF. Documents are opened per
// call so no handle outlives the extraction stage.
type FitzRenderer struct{}

// NewFitzRenderer creates a page renderer.
func NewFitzRenderer() *FitzRenderer {
	return &FitzRenderer{}
}

// RenderPage returns a PNG of the 1-based page at the given DPI.
func (r *FitzRenderer) RenderPage(ctx context.Context, path string, page int, dpi float64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	if page < 1 || page > doc.NumPage() {
		return nil, fmt.Errorf("page %d out of range (1..%d)", page, doc.NumPage())
	}

	// go-fitz pages are 0-based.
	png, err := doc.ImagePNG(page-1, dpi)
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", page, err)
	}
	return png, nil
}

// PageCount returns the number of pages in the document.
func (r *FitzRenderer) PageCount(ctx context.Context, path string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	doc, err := fitz.New(path)
	if err != nil {
		return 0, fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()
	return doc.NumPage(), nil
}
