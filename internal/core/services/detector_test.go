package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/config"
	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/core/domain"
)

func testAliases() map[string][]string {
	return map[string][]string{
		"hp":             {"hp", "hewlett-packard", "laserjet"},
		"canon":          {"canon", "imagerunner"},
		"konica_minolta": {"konica minolta", "bizhub"},
	}
}

func TestManufacturerDetector_FilenameSignal(t *testing.T) {
	d := NewManufacturerDetector(testAliases(), config.Default().Detection)

	det := d.Detect("HP_E475_SM.pdf", domain.DocumentMetadata{}, nil)
	assert.Equal(t, "hp", det.Name)
	assert.Equal(t, 10.0, det.Score)
	assert.Equal(t, domain.TierHigh, det.Tier)
}

func TestManufacturerDetector_CombinedSignals(t *testing.T) {
	d := NewManufacturerDetector(testAliases(), config.Default().Detection)

	meta := domain.DocumentMetadata{
		Author: "Canon Inc.",
		Title:  "imageRUNNER Service Manual",
	}
	pages := map[int]string{
		1: "Canon imageRUNNER maintenance guide. Canon recommends monthly cleaning.",
	}

	det := d.Detect("SM_C5550i.pdf", meta, pages)
	assert.Equal(t, "canon", det.Name)
	// author 8 + title 5 + three mentions capped at 3 = 16.
	assert.Equal(t, 16.0, det.Score)
	assert.Equal(t, domain.TierVeryHigh, det.Tier)
}

func TestManufacturerDetector_MentionCap(t *testing.T) {
	d := NewManufacturerDetector(testAliases(), config.Default().Detection)

	pages := map[int]string{
		1: "canon canon canon canon canon canon canon canon",
	}
	det := d.Detect("manual.pdf", domain.DocumentMetadata{}, pages)
	assert.Equal(t, "canon", det.Name)
	assert.Equal(t, 3.0, det.Score, "mentions saturate at the cap")
	assert.Equal(t, domain.TierLow, det.Tier)
}

func TestManufacturerDetector_SamplePagesBound(t *testing.T) {
	d := NewManufacturerDetector(testAliases(), config.Default().Detection)

	pages := map[int]string{
		1: "nothing here", 2: "nothing", 3: "nothing", 4: "nothing", 5: "nothing",
		6: "canon canon canon",
	}
	det := d.Detect("manual.pdf", domain.DocumentMetadata{}, pages)
	assert.Empty(t, det.Name, "mentions beyond the sample window are ignored")
}

func TestManufacturerDetector_MentionsMatchWholeWords(t *testing.T) {
	d := NewManufacturerDetector(testAliases(), config.Default().Detection)

	pages := map[int]string{1: "Adjust the sharpness and contrast before scanning."}
	det := d.Detect("manual.pdf", domain.DocumentMetadata{}, pages)
	assert.Empty(t, det.Name, "hp inside sharpness is not a mention")

	pages = map[int]string{1: "Consult HP support before replacing the fuser."}
	det = d.Detect("manual.pdf", domain.DocumentMetadata{}, pages)
	assert.Equal(t, "hp", det.Name)
	assert.Equal(t, 1.0, det.Score)
}

func TestManufacturerDetector_LexicographicTieBreak(t *testing.T) {
	d := NewManufacturerDetector(testAliases(), config.Default().Detection)

	pages := map[int]string{1: "canon and hp are both mentioned once"}
	det := d.Detect("manual.pdf", domain.DocumentMetadata{}, pages)
	assert.Equal(t, "canon", det.Name)
}

func TestManufacturerDetector_NoSignals(t *testing.T) {
	d := NewManufacturerDetector(testAliases(), config.Default().Detection)

	det := d.Detect("manual.pdf", domain.DocumentMetadata{}, map[int]string{1: "unbranded text"})
	assert.Empty(t, det.Name)
	assert.Equal(t, domain.TierLow, det.Tier)
	assert.Empty(t, det.Signals)
}
