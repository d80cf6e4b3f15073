package extraction

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/core/domain"
	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/core/ports/driven"
)

// Ensure NativeBackend implements the interface.
var _ driven.PDFBackend = (*NativeBackend)(nil)

// NativeBackend extracts text with the pure-Go ledongthuc/pdf reader.
// It is the preferred backend because it exposes positioned text spans,
// which the structured layout scanner needs to recover table rows.
type NativeBackend struct{}

// NewNativeBackend creates the primary PDF backend.
func NewNativeBackend() *NativeBackend {
	return &NativeBackend{}
}

// Name identifies the backend in extraction metrics.
func (b *NativeBackend) Name() string { return "ledongthuc" }

// Extract reads the whole document. Individual page failures are
// collected in PageErrors; an error is returned only when the document
// itself cannot be opened.
func (b *NativeBackend) Extract(ctx context.Context, path string) (*driven.BackendResult, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	result := &driven.BackendResult{
		Info: readInfo(reader),
	}
	total := reader.NumPage()
	result.Info.PageCount = total

	for n := 1; n <= total; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := extractPage(reader, n)
		if err != nil {
			result.PageErrors = append(result.PageErrors, domain.PageError{Page: n, Err: err})
			continue
		}
		result.Pages = append(result.Pages, page)
	}

	return result, nil
}

// extractPage pulls flattened text and positioned spans from one page.
// ledongthuc/pdf panics on some malformed content streams, so the panic
// is converted into a page-level error here.
func extractPage(reader *pdf.Reader, n int) (page driven.Page, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page %d: content stream panic: %v", n, r)
		}
	}()

	p := reader.Page(n)
	if p.V.IsNull() {
		return page, fmt.Errorf("page %d: null page object", n)
	}

	content := p.Content()
	spans := make([]driven.Span, 0, len(content.Text))
	for _, t := range content.Text {
		if t.S == "" {
			continue
		}
		spans = append(spans, driven.Span{Text: t.S, X: t.X, Y: t.Y, FontSize: t.FontSize})
	}

	text, perr := p.GetPlainText(nil)
	if perr != nil || strings.TrimSpace(text) == "" {
		// Fall back to assembling the spans ourselves.
		text = joinSpans(spans)
	}
	text = cleanText(text)
	if text == "" && len(spans) == 0 {
		return page, fmt.Errorf("page %d: no text content", n)
	}

	return driven.Page{Number: n, Text: text, Spans: spans}, nil
}

// joinSpans flattens positioned spans into reading order: top-to-bottom,
// left-to-right.
func joinSpans(spans []driven.Span) string {
	if len(spans) == 0 {
		return ""
	}
	ordered := make([]driven.Span, len(spans))
	copy(ordered, spans)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Y != ordered[j].Y {
			return ordered[i].Y > ordered[j].Y
		}
		return ordered[i].X < ordered[j].X
	})

	var sb strings.Builder
	lastY := ordered[0].Y
	for _, s := range ordered {
		if s.Y != lastY {
			sb.WriteByte('\n')
			lastY = s.Y
		} else if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// readInfo reads the PDF info dictionary; malformed dictionaries yield
// empty fields rather than an error.
func readInfo(reader *pdf.Reader) (info driven.DocumentInfo) {
	defer func() {
		recover() // tolerate malformed trailers
	}()

	dict := reader.Trailer().Key("Info")
	if dict.IsNull() {
		return info
	}
	info.Title = stringValue(dict.Key("Title"))
	info.Author = stringValue(dict.Key("Author"))
	info.CreationDate = stringValue(dict.Key("CreationDate"))
	return info
}

func stringValue(v pdf.Value) string {
	if v.Kind() != pdf.String {
		return ""
	}
	return strings.TrimSpace(v.RawString())
}

// cleanText normalises line endings, strips non-printable characters and
// collapses runs of blank lines.
func cleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var sb strings.Builder
	sb.Grow(len(text))
	blankRun := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.Map(func(r rune) rune {
			if r == '\t' || r >= 0x20 {
				return r
			}
			return -1
		}, line)
		if strings.TrimSpace(line) == "" {
			blankRun++
			if blankRun > 1 {
				continue
			}
			sb.WriteByte('\n')
			continue
		}
		blankRun = 0
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return strings.TrimSpace(sb.String())
}
