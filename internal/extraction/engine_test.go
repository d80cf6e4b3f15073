package extraction

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/config"
	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/core/domain"
	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/core/ports/driven"
)

type fakeBackend struct {
	name   string
	result *driven.BackendResult
	err    error
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Extract(_ context.Context, _ string) (*driven.BackendResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeRenderer struct {
	png   []byte
	pages int
}

func (f *fakeRenderer) RenderPage(_ context.Context, _ string, _ int, _ float64) ([]byte, error) {
	return f.png, nil
}

func (f *fakeRenderer) PageCount(_ context.Context, _ string) (int, error) {
	if f.pages > 0 {
		return f.pages, nil
	}
	return 1, nil
}

type fakeOCR struct {
	text  string
	calls int
}

func (f *fakeOCR) Recognize(_ context.Context, _ []byte) (string, error) {
	f.calls++
	return f.text, nil
}
func (f *fakeOCR) Close() error { return nil }

func englishPages(n int) []driven.Page {
	pages := make([]driven.Page, 0, n)
	for i := 1; i <= n; i++ {
		pages = append(pages, driven.Page{
			Number: i,
			Text:   "The printer reported a paper jam in the second tray. Remove the paper and restart the device.",
		})
	}
	return pages
}

func TestExtractPrimarySucceeds(t *testing.T) {
	primary := &fakeBackend{name: "primary", result: &driven.BackendResult{
		Pages: englishPages(3),
		Info:  driven.DocumentInfo{Title: "Service Manual", Author: "HP Inc.", PageCount: 3},
	}}
	secondary := &fakeBackend{name: "secondary", err: errors.New("should not run")}

	engine := NewEngine(config.Default(), primary, secondary, nil, nil)
	result, err := engine.Extract(context.Background(), "manual.pdf")
	require.NoError(t, err)

	assert.Len(t, result.Pages, 3)
	assert.Equal(t, "primary", result.Metadata.Engine)
	assert.False(t, result.Metadata.FallbackUsed)
	assert.Equal(t, "Service Manual", result.Metadata.Title)
	assert.Equal(t, "en", result.Metadata.Language)
	assert.GreaterOrEqual(t, result.Metadata.LanguageConfidence, 0.7)
}

func TestExtractFallsBackToSecondary(t *testing.T) {
	primary := &fakeBackend{name: "primary", err: errors.New("corrupt xref")}
	secondary := &fakeBackend{name: "secondary", result: &driven.BackendResult{
		Pages: englishPages(2),
		Info:  driven.DocumentInfo{PageCount: 2},
	}}

	engine := NewEngine(config.Default(), primary, secondary, nil, nil)
	result, err := engine.Extract(context.Background(), "manual.pdf")
	require.NoError(t, err)

	assert.Equal(t, "secondary", result.Metadata.Engine)
	assert.True(t, result.Metadata.FallbackUsed)
}

func TestExtractBothBackendsFail(t *testing.T) {
	primary := &fakeBackend{name: "primary", err: errors.New("bad")}
	secondary := &fakeBackend{name: "secondary", err: errors.New("worse")}

	engine := NewEngine(config.Default(), primary, secondary, nil, nil)
	_, err := engine.Extract(context.Background(), "manual.pdf")

	assert.ErrorIs(t, err, domain.ErrNoTextExtracted)
}

func TestExtractOCRRecoversWholeDocument(t *testing.T) {
	primary := &fakeBackend{name: "primary", err: errors.New("bad")}
	secondary := &fakeBackend{name: "secondary", err: errors.New("worse")}

	cfg := config.Default()
	cfg.Extraction.OCREnabled = true

	ocr := &fakeOCR{text: "The fuser unit must cool down before replacement."}
	engine := NewEngine(cfg, primary, secondary, &fakeRenderer{png: []byte("png"), pages: 2}, ocr)

	result, err := engine.Extract(context.Background(), "scanned.pdf")
	require.NoError(t, err)

	assert.Equal(t, 2, ocr.calls)
	assert.Len(t, result.Pages, 2)
	assert.Equal(t, "ocr", result.Metadata.Engine)
	assert.True(t, result.Metadata.FallbackUsed)
	assert.Equal(t, 2, result.Metadata.PageCount)
}

func TestExtractOCRYieldsNothingIsFatal(t *testing.T) {
	primary := &fakeBackend{name: "primary", err: errors.New("bad")}
	secondary := &fakeBackend{name: "secondary", err: errors.New("worse")}

	cfg := config.Default()
	cfg.Extraction.OCREnabled = true

	engine := NewEngine(cfg, primary, secondary, &fakeRenderer{png: []byte("png"), pages: 2}, &fakeOCR{text: ""})
	_, err := engine.Extract(context.Background(), "scanned.pdf")

	assert.ErrorIs(t, err, domain.ErrNoTextExtracted)
}

func TestExtractOCRRecoversFailedPage(t *testing.T) {
	primary := &fakeBackend{name: "primary", result: &driven.BackendResult{
		Pages: englishPages(2),
		PageErrors: []domain.PageError{
			{Page: 3, Err: errors.New("content stream panic")},
		},
		Info: driven.DocumentInfo{PageCount: 3},
	}}
	secondary := &fakeBackend{name: "secondary", err: errors.New("unused")}

	cfg := config.Default()
	cfg.Extraction.OCREnabled = true

	engine := NewEngine(cfg, primary, secondary,
		&fakeRenderer{png: []byte("png")}, &fakeOCR{text: "Scanned page text recovered by OCR."})
	result, err := engine.Extract(context.Background(), "manual.pdf")
	require.NoError(t, err)

	assert.Equal(t, "Scanned page text recovered by OCR.", result.Pages[3])
	assert.True(t, result.Metadata.FallbackUsed)
	assert.Equal(t, 0, result.Metadata.PagesFailed)
}

func TestExtractFailedPageWithoutOCR(t *testing.T) {
	primary := &fakeBackend{name: "primary", result: &driven.BackendResult{
		Pages: englishPages(1),
		PageErrors: []domain.PageError{
			{Page: 2, Err: errors.New("broken")},
		},
		Info: driven.DocumentInfo{PageCount: 2},
	}}
	secondary := &fakeBackend{name: "secondary", err: errors.New("unused")}

	engine := NewEngine(config.Default(), primary, secondary, nil, nil)
	result, err := engine.Extract(context.Background(), "manual.pdf")
	require.NoError(t, err)

	assert.Equal(t, 1, result.Metadata.PagesFailed)
	assert.NotContains(t, result.Pages, 2)
}

func TestLanguageUnknownBelowThreshold(t *testing.T) {
	detector := NewLanguageDetector(0.99)
	code, _ := detector.Detect("ab")
	assert.Equal(t, "unknown", code)
}

func TestLanguageDetectGerman(t *testing.T) {
	detector := NewLanguageDetector(0.5)
	code, confidence := detector.Detect(
		"Der Drucker meldet einen Papierstau im zweiten Fach. Entfernen Sie das Papier und starten Sie das Gerät neu.")
	assert.Equal(t, "de", code)
	assert.Greater(t, confidence, 0.5)
}

func TestCleanText(t *testing.T) {
	in := "Line one\r\n\r\n\r\n\r\nLine two\x00\x01 ok\n"
	out := cleanText(in)
	assert.Equal(t, "Line one\n\nLine two ok", out)
}

func TestDecodePDFString(t *testing.T) {
	assert.Equal(t, "(jam)", decodePDFString([]byte(`\(jam\)`)))
	assert.Equal(t, "a\nb", decodePDFString([]byte(`a\nb`)))
	assert.Equal(t, "A", decodePDFString([]byte(`\101`)))
}
