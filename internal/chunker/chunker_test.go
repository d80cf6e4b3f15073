package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/core/domain"
)

func TestChunker_RepeatedSentencesOverlap(t *testing.T) {
	c := New(WithSize(100), WithOverlap(20))

	var sb strings.Builder
	for i := 0; i < 50; i++ {
		sb.WriteString("All sensors must be cleaned before calibration. ")
	}
	chunks := c.Chunk("doc-1", map[int]string{1: sb.String()})

	require.GreaterOrEqual(t, len(chunks), 2)
	for i := 1; i < len(chunks); i++ {
		assert.True(t, shareWord(chunks[i-1].Text, chunks[i].Text),
			"chunks %d and %d share no word", i-1, i)
	}
}

func TestChunker_DistinctSentences(t *testing.T) {
	c := New(WithSize(100), WithOverlap(20))

	var sb strings.Builder
	for i := 0; i < 50; i++ {
		fmt.Fprintf(&sb, "Sentence %d describes one calibration step in detail. ", i)
	}
	chunks := c.Chunk("doc-1", map[int]string{1: sb.String()})

	require.Greater(t, len(chunks), 10)
	for i, ch := range chunks {
		assert.Equal(t, i, ch.Index)
		assert.LessOrEqual(t, ch.PageStart, ch.PageEnd)
		assert.Equal(t, domain.Fingerprint(ch.Text), ch.Fingerprint)
		if i > 0 {
			assert.True(t, shareWord(chunks[i-1].Text, ch.Text))
		}
	}
}

func TestChunker_ParagraphsKeptWhole(t *testing.T) {
	c := New(WithSize(200), WithOverlap(0), WithMinLength(10), WithMinFragment(10))

	pages := map[int]string{
		1: "First paragraph about the scanner unit.\n\nSecond paragraph about the fuser unit.",
	}
	chunks := c.Chunk("doc-1", pages)

	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0].Text, "First paragraph")
	assert.Contains(t, chunks[0].Text, "Second paragraph")
}

func TestChunker_PageRanges(t *testing.T) {
	c := New(WithSize(80), WithOverlap(0), WithMinLength(10), WithMinFragment(10))

	pages := map[int]string{
		1: "Page one holds the first block of prose for this range test.",
		2: "Page two continues with a second block of prose to cross over.",
		3: "Page three ends the range checking with one more block here.",
	}
	chunks := c.Chunk("doc-1", pages)
	require.NotEmpty(t, chunks)

	for _, ch := range chunks {
		assert.LessOrEqual(t, ch.PageStart, ch.PageEnd)
		assert.GreaterOrEqual(t, ch.PageStart, 1)
		assert.LessOrEqual(t, ch.PageEnd, 3)
	}
	assert.Equal(t, 1, chunks[0].PageStart)
	assert.Equal(t, 3, chunks[len(chunks)-1].PageEnd)
}

func TestChunker_DropsShortFragments(t *testing.T) {
	c := New(WithSize(100), WithOverlap(0))

	pages := map[int]string{
		1: "7\n\nFig. 3\n\nThe transfer belt assembly requires periodic cleaning and inspection.",
	}
	chunks := c.Chunk("doc-1", pages)

	require.Len(t, chunks, 1)
	assert.NotContains(t, chunks[0].Text, "Fig. 3")
}

func TestChunker_DeterministicFingerprints(t *testing.T) {
	c := New(WithSize(120), WithOverlap(30))

	pages := map[int]string{
		1: "The duplex unit feeds paper back through the registration rollers. Misfeeds here usually point at worn pickup tires or a slipping clutch.",
	}

	first := c.Chunk("doc-1", pages)
	second := c.Chunk("doc-1", pages)
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Fingerprint, second[i].Fingerprint)
		assert.Equal(t, first[i].ID, second[i].ID, "chunk ids are content-derived")
	}
}

func TestChunker_TokenRetention(t *testing.T) {
	c := New()

	var sb strings.Builder
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&sb, "Paragraph %d explains the maintenance interval for a major assembly in the machine.\n\n", i)
	}
	pages := map[int]string{1: sb.String()}
	chunks := c.Chunk("doc-1", pages)

	sourceWords := map[string]struct{}{}
	for _, w := range strings.Fields(sb.String()) {
		sourceWords[w] = struct{}{}
	}
	kept := 0
	joined := strings.Join(chunkTexts(chunks), " ")
	for w := range sourceWords {
		if strings.Contains(joined, w) {
			kept++
		}
	}
	assert.GreaterOrEqual(t, float64(kept)/float64(len(sourceWords)), 0.8)
}

func TestChunker_EmptyInput(t *testing.T) {
	c := New()
	assert.Nil(t, c.Chunk("doc-1", nil))
	assert.Nil(t, c.Chunk("doc-1", map[int]string{1: "   "}))
}

func TestClassify(t *testing.T) {
	cases := []struct {
		text string
		want domain.ChunkType
	}{
		{"Error 13.A1.B2 indicates a paper jam in the duplexer.", domain.ChunkTypeErrorCode},
		{"Error C-2557 recovery:\n1. Open the front door.\n2. Reset the counter.", domain.ChunkTypeTroubleshooting},
		{"Replacement procedure for the transfer belt.", domain.ChunkTypeProcedure},
		{"1. Remove the covers.\n2. Disconnect the harness.", domain.ChunkTypeProcedure},
		{"Troubleshooting the paper path starts at the pickup roller.", domain.ChunkTypeTroubleshooting},
		{"Specifications: print resolution 1200 dpi, duty cycle 80k pages.", domain.ChunkTypeSpecification},
		{"Introduction. About this manual and its intended audience.", domain.ChunkTypeIntroduction},
		{"The machine ships with three paper trays.", domain.ChunkTypeText},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, classify(tc.text), tc.text)
	}
}

func shareWord(a, b string) bool {
	words := map[string]struct{}{}
	for _, w := range strings.Fields(a) {
		words[w] = struct{}{}
	}
	for _, w := range strings.Fields(b) {
		if _, ok := words[w]; ok {
			return true
		}
	}
	return false
}

func chunkTexts(chunks []domain.Chunk) []string {
	out := make([]string, len(chunks))
	for i, ch := range chunks {
		out[i] = ch.Text
	}
	return out
}
