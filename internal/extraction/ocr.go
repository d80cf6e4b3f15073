package extraction

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/core/ports/driven"
)

// Ensure TesseractOCR implements the interface.
var _ driven.OCREngine = (*TesseractOCR)(nil)

// TesseractOCR recognises text in rendered page images via the
// Tesseract engine. Requires tesseract-ocr to be installed.
type TesseractOCR struct {
	client *gosseract.Client
}

// NewTesseractOCR creates an OCR engine. languages is a "+" separated
// Tesseract language string (e.g. "eng+deu"); empty means "eng".
func NewTesseractOCR(languages string) (*TesseractOCR, error) {
	client := gosseract.NewClient()
	if languages == "" {
		languages = "eng"
	}
	if err := client.SetLanguage(strings.Split(languages, "+")...); err != nil {
		client.Close()
		return nil, fmt.Errorf("set OCR languages %q: %w", languages, err)
	}
	return &TesseractOCR{client: client}, nil
}

// Recognize returns the text found in the image data. Tesseract runs
// synchronously; the context is only checked before starting.
func (t *TesseractOCR) Recognize(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := t.client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := t.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// Close releases Tesseract resources.
func (t *TesseractOCR) Close() error {
	if t.client != nil {
		return t.client.Close()
	}
	return nil
}
