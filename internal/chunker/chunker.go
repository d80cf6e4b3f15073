// Package chunker splits extracted page text into overlapping,
// classified chunks deduplicated by content fingerprint.
package chunker

import (
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/core/domain"
)

// DefaultSize is the default number of characters per chunk.
const DefaultSize = 1000

// DefaultOverlap is the default number of characters carried into the
// next chunk.
const DefaultOverlap = 200

// DefaultMinLength is the minimum chunk length kept.
const DefaultMinLength = 50

// DefaultMinFragment is the minimum length for a standalone text unit;
// shorter scraps (page numbers, stray headings) are discarded.
const DefaultMinFragment = 20

// Chunker assembles paragraphs into size-bounded chunks. Paragraphs
// are kept whole where possible; oversized paragraphs fall back to
// sentence splitting and finally to hard word-boundary splits.
type Chunker struct {
	size        int
	overlap     int
	minLength   int
	minFragment int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithSize sets the chunk size in characters.
func WithSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.size = size
		}
	}
}

// WithOverlap sets the overlap between adjacent chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// WithMinLength sets the minimum length of an emitted chunk.
func WithMinLength(n int) Option {
	return func(c *Chunker) {
		if n >= 0 {
			c.minLength = n
		}
	}
}

// WithMinFragment sets the minimum length of a standalone text unit.
func WithMinFragment(n int) Option {
	return func(c *Chunker) {
		if n >= 0 {
			c.minFragment = n
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		size:        DefaultSize,
		overlap:     DefaultOverlap,
		minLength:   DefaultMinLength,
		minFragment: DefaultMinFragment,
	}
	for _, opt := range opts {
		opt(c)
	}

	// Overlap must leave forward progress per chunk.
	if c.overlap >= c.size {
		c.overlap = c.size / 4
	}
	if c.minLength > c.size {
		c.minLength = c.size
	}
	return c
}

// unit is one indivisible piece of text tagged with its source page.
type unit struct {
	text string
	page int
}

// Chunk splits the document's pages into deduplicated chunks with
// contiguous indices. Page ranges reflect the pages whose text
// contributed to each chunk.
func (c *Chunker) Chunk(documentID string, pages map[int]string) []domain.Chunk {
	units := c.collectUnits(pages)
	if len(units) == 0 {
		return nil
	}

	var chunks []domain.Chunk
	var buf strings.Builder
	pageStart, pageEnd := units[0].page, units[0].page

	flush := func() {
		text := strings.TrimSpace(buf.String())
		buf.Reset()
		if len(text) < c.minLength {
			return
		}
		fingerprint := domain.Fingerprint(text)
		chunks = append(chunks, domain.Chunk{
			// Deterministic id: re-processing a document yields the
			// same chunk ids, keeping entity references stable.
			ID:          uuid.NewSHA1(uuid.NameSpaceOID, []byte(documentID+":"+fingerprint)).String(),
			DocumentID:  documentID,
			PageStart:   pageStart,
			PageEnd:     pageEnd,
			Text:        text,
			Fingerprint: fingerprint,
			Type:        classify(text),
		})
	}

	for _, u := range units {
		if buf.Len() == 0 {
			pageStart, pageEnd = u.page, u.page
			buf.WriteString(u.text)
			continue
		}
		if buf.Len()+1+len(u.text) > c.size {
			carryPage := pageEnd
			carry := overlapTail(buf.String(), c.overlap)
			flush()
			pageStart, pageEnd = carryPage, u.page
			if carry != "" {
				buf.WriteString(carry)
				buf.WriteString(" ")
			} else {
				pageStart = u.page
			}
			buf.WriteString(u.text)
			continue
		}
		buf.WriteString(" ")
		buf.WriteString(u.text)
		if u.page > pageEnd {
			pageEnd = u.page
		}
	}
	flush()

	return dedupe(chunks)
}

// collectUnits turns page text into an ordered stream of paragraph,
// sentence or hard-split units, each no longer than the chunk size.
func (c *Chunker) collectUnits(pages map[int]string) []unit {
	pageNums := make([]int, 0, len(pages))
	for p := range pages {
		pageNums = append(pageNums, p)
	}
	sort.Ints(pageNums)

	var units []unit
	for _, page := range pageNums {
		for _, para := range splitParagraphs(pages[page]) {
			if len(para) <= c.size {
				if len(para) >= c.minFragment {
					units = append(units, unit{text: para, page: page})
				}
				continue
			}
			for _, sent := range splitSentences(para) {
				if len(sent) <= c.size {
					units = append(units, unit{text: sent, page: page})
					continue
				}
				for _, piece := range hardSplit(sent, c.size) {
					if len(piece) >= c.minFragment {
						units = append(units, unit{text: piece, page: page})
					}
				}
			}
		}
	}
	return units
}

func splitParagraphs(text string) []string {
	var out []string
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(strings.Join(strings.Fields(para), " "))
		if para != "" {
			out = append(out, para)
		}
	}
	return out
}

var sentenceEndRe = regexp.MustCompile(`[.!?]\s+`)

func splitSentences(text string) []string {
	var out []string
	start := 0
	for _, loc := range sentenceEndRe.FindAllStringIndex(text, -1) {
		s := strings.TrimSpace(text[start : loc[0]+1])
		if s != "" {
			out = append(out, s)
		}
		start = loc[1]
	}
	if rest := strings.TrimSpace(text[start:]); rest != "" {
		out = append(out, rest)
	}
	return out
}

// hardSplit cuts text into size-bounded pieces at word boundaries.
func hardSplit(text string, size int) []string {
	var out []string
	words := strings.Fields(text)
	var piece strings.Builder
	for _, w := range words {
		if piece.Len() > 0 && piece.Len()+1+len(w) > size {
			out = append(out, piece.String())
			piece.Reset()
		}
		if piece.Len() > 0 {
			piece.WriteString(" ")
		}
		piece.WriteString(w)
	}
	if piece.Len() > 0 {
		out = append(out, piece.String())
	}
	return out
}

// overlapTail returns the whole-word suffix of text that seeds the next
// chunk, at most overlap characters plus completion of the first word.
func overlapTail(text string, overlap int) string {
	if overlap <= 0 {
		return ""
	}
	text = strings.TrimRight(text, " ")
	if len(text) <= overlap {
		return text
	}
	tail := text[len(text)-overlap:]
	if text[len(text)-overlap-1] != ' ' {
		if idx := strings.IndexByte(tail, ' '); idx >= 0 {
			tail = tail[idx+1:]
		} else {
			// Single long word; keep it whole.
			if idx := strings.LastIndexByte(text, ' '); idx >= 0 {
				tail = text[idx+1:]
			} else {
				tail = text
			}
		}
	}
	return strings.TrimSpace(tail)
}

// dedupe removes exact-duplicate chunks by fingerprint and renumbers
// the survivors contiguously from zero.
func dedupe(chunks []domain.Chunk) []domain.Chunk {
	seen := make(map[string]struct{}, len(chunks))
	out := chunks[:0]
	for _, ch := range chunks {
		if _, dup := seen[ch.Fingerprint]; dup {
			continue
		}
		seen[ch.Fingerprint] = struct{}{}
		ch.Index = len(out)
		out = append(out, ch)
	}
	return out
}
