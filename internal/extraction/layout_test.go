package extraction

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/config"
	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/core/ports/driven"
)

func spanRow(y float64, cells ...string) []driven.Span {
	spans := make([]driven.Span, 0, len(cells))
	x := 10.0
	for _, c := range cells {
		spans = append(spans, driven.Span{Text: c, X: x, Y: y})
		x += 120
	}
	return spans
}

func TestScanRecoversErrorCodeRows(t *testing.T) {
	scanner := NewLayoutScanner(config.Default().Layout)

	var spans []driven.Span
	spans = append(spans, spanRow(700, "Error code", "Description")...)
	spans = append(spans, spanRow(680, "13.A1.B2", "........", "Paper jam tray 2")...)
	spans = append(spans, spanRow(660, "59.F0.11", "····", "Transfer alienation")...)
	spans = append(spans, spanRow(640, "General maintenance notes")...)

	out := scanner.Scan(spans)
	lines := strings.Split(out, "\n")

	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "13.A1.B2")
	assert.Contains(t, lines[0], "Paper jam tray 2")
	assert.NotContains(t, out, "........")
	assert.NotContains(t, out, "General maintenance")
}

func TestScanKeepsCodeFollowedByDescription(t *testing.T) {
	scanner := NewLayoutScanner(config.Default().Layout)

	spans := spanRow(700, "10.01.AB", "Pickup roller worn, replace the roller")
	out := scanner.Scan(spans)

	assert.Contains(t, out, "10.01.AB Pickup roller worn")
}

func TestScanDeduplicatesExactLines(t *testing.T) {
	scanner := NewLayoutScanner(config.Default().Layout)

	var spans []driven.Span
	spans = append(spans, spanRow(700, "13.A1.B2", "Paper jam")...)
	spans = append(spans, spanRow(650, "13.A1.B2", "Paper jam")...)

	out := scanner.Scan(spans)
	assert.Equal(t, 1, strings.Count(out, "13.A1.B2"))
}

func TestScanRespectsCaps(t *testing.T) {
	cfg := config.Layout{MaxLines: 3, MaxLineLength: 30, LineTolerance: 2.0}
	scanner := NewLayoutScanner(cfg)

	var spans []driven.Span
	y := 700.0
	for i := 0; i < 10; i++ {
		spans = append(spans, spanRow(y,
			fmt.Sprintf("10.%02d.AB", i),
			"a very long description column that exceeds the configured maximum length")...)
		y -= 20
	}

	out := scanner.Scan(spans)
	lines := strings.Split(out, "\n")

	assert.LessOrEqual(t, len(lines), 3)
	for _, line := range lines {
		assert.LessOrEqual(t, len(line), 30, "truncation marker counts against the cap")
		assert.True(t, strings.HasSuffix(line, "..."))
	}
}

func TestScanReturnsEmptyWhenNothingQualifies(t *testing.T) {
	scanner := NewLayoutScanner(config.Default().Layout)
	spans := spanRow(700, "Chapter 1", "Introduction to the device")
	assert.Empty(t, scanner.Scan(spans))
	assert.Empty(t, scanner.Scan(nil))
}
