package extraction

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/core/domain"
	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/core/ports/driven"
)

// Ensure StreamBackend implements the interfaces.
var (
	_ driven.PDFBackend     = (*StreamBackend)(nil)
	_ driven.ImageExtractor = (*StreamBackend)(nil)
)

// StreamBackend extracts text by parsing raw content streams with
// pdfcpu. It handles documents the native backend chokes on, at the cost
// of losing span positions, and doubles as the embedded-image extractor.
type StreamBackend struct{}

// NewStreamBackend creates the secondary PDF backend.
func NewStreamBackend() *StreamBackend {
	return &StreamBackend{}
}

// Name identifies the backend in extraction metrics.
func (b *StreamBackend) Name() string { return "pdfcpu" }

// Extract reads the whole document through pdfcpu.
func (b *StreamBackend) Extract(ctx context.Context, path string) (*driven.BackendResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	pctx, err := api.ReadValidateAndOptimize(f, model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}

	result := &driven.BackendResult{
		Info: driven.DocumentInfo{
			Title:     pctx.Title,
			Author:    pctx.Author,
			PageCount: pctx.PageCount,
		},
	}

	for n := 1; n <= pctx.PageCount; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		reader, err := pdfcpu.ExtractPageContent(pctx, n)
		if err != nil {
			result.PageErrors = append(result.PageErrors, domain.PageError{Page: n, Err: err})
			continue
		}
		data, err := io.ReadAll(reader)
		if err != nil || len(data) == 0 {
			result.PageErrors = append(result.PageErrors, domain.PageError{
				Page: n, Err: fmt.Errorf("empty content stream"),
			})
			continue
		}
		text := cleanText(textFromStream(data))
		if text == "" {
			result.PageErrors = append(result.PageErrors, domain.PageError{
				Page: n, Err: fmt.Errorf("no text operators"),
			})
			continue
		}
		result.Pages = append(result.Pages, driven.Page{Number: n, Text: text})
	}

	return result, nil
}

// PageImages returns the embedded images of one page.
func (b *StreamBackend) PageImages(ctx context.Context, path string, page int) ([]driven.EmbeddedImage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	pctx, err := api.ReadValidateAndOptimize(f, model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}

	imgs, err := pdfcpu.ExtractPageImages(pctx, page, false)
	if err != nil {
		return nil, fmt.Errorf("extract page %d images: %w", page, err)
	}

	out := make([]driven.EmbeddedImage, 0, len(imgs))
	for _, img := range imgs {
		data, err := io.ReadAll(img)
		if err != nil || len(data) == 0 {
			continue
		}
		out = append(out, driven.EmbeddedImage{Data: data, Format: img.FileType})
	}
	return out, nil
}

// pdfStringRe matches PDF string literals in parentheses.
var pdfStringRe = regexp.MustCompile(`\(((?:\\.|[^\\)])*)\)`)

// textFromStream parses PDF content stream text-showing operators
// (Tj, TJ, ', T*, Td/TD) into flattened text.
func textFromStream(data []byte) string {
	var sb strings.Builder

	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		switch {
		case bytes.HasSuffix(line, []byte("Tj")), bytes.HasSuffix(line, []byte("TJ")):
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				sb.WriteString(decodePDFString(m[1]))
			}
		case bytes.HasSuffix(line, []byte("'")) && bytes.Contains(line, []byte("(")):
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				sb.WriteByte('\n')
				sb.WriteString(decodePDFString(m[1]))
			}
		case bytes.HasSuffix(line, []byte("Td")), bytes.HasSuffix(line, []byte("TD")):
			if sb.Len() > 0 {
				sb.WriteByte('\n')
			}
		case bytes.Equal(line, []byte("T*")):
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// decodePDFString resolves backslash escapes and octal codes inside a
// PDF string literal.
func decodePDFString(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '\\' {
			sb.WriteByte(c)
			continue
		}
		i++
		if i >= len(raw) {
			break
		}
		switch raw[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r', 'f', 'b':
			sb.WriteByte(' ')
		case '(', ')', '\\':
			sb.WriteByte(raw[i])
		default:
			if raw[i] >= '0' && raw[i] <= '7' {
				end := i
				for end < len(raw) && end-i < 3 && raw[end] >= '0' && raw[end] <= '7' {
					end++
				}
				if v, err := strconv.ParseUint(string(raw[i:end]), 8, 16); err == nil && v < 256 {
					sb.WriteByte(byte(v))
				}
				i = end - 1
			}
		}
	}
	return sb.String()
}
