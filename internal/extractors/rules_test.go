package extractors

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/core/domain"
)

func TestLoadRules_EmbeddedDefaults(t *testing.T) {
	for _, kind := range []string{"error_codes", "parts", "products", "versions"} {
		rules, err := LoadRules(kind, "")
		require.NoError(t, err, kind)
		assert.NotEmpty(t, rules.byName, kind)
	}
}

func TestLoadRules_UnknownKind(t *testing.T) {
	rules, err := LoadRules("nonexistent", "")
	require.Error(t, err)

	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "nonexistent.json", cfgErr.Path)

	// Degraded registry is usable and matches nothing.
	assert.NotNil(t, rules)
	assert.False(t, rules.Known("hp"))
}

func TestLoadRules_DirOverride(t *testing.T) {
	dir := t.TempDir()
	override := `{"manufacturers":{"testvendor":{"patterns":["\\b(T\\d{3})\\b"],"required_context":[],"excluded_context":[],"min_confidence":0.1,"max_per_page":5}}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "error_codes.json"), []byte(override), 0o644))

	rules, err := LoadRules("error_codes", dir)
	require.NoError(t, err)
	assert.True(t, rules.Known("testvendor"))
	assert.False(t, rules.Known("hp"), "override replaces the embedded file")
}

func TestLoadRules_MalformedJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "parts.json"), []byte("{not json"), 0o644))

	rules, err := LoadRules("parts", dir)
	require.Error(t, err)
	assert.Empty(t, rules.byName)
}

func TestRules_ForManufacturerStrictness(t *testing.T) {
	rules, err := LoadRules("parts", "")
	require.NoError(t, err)

	_, ok := rules.forManufacturer("hp", true)
	assert.True(t, ok)

	_, ok = rules.forManufacturer("unknownvendor", true)
	assert.False(t, ok, "strict resolution skips the default entry")

	_, ok = rules.forManufacturer("unknownvendor", false)
	assert.True(t, ok, "lenient resolution falls back to default")
}

func TestManufacturerAliases(t *testing.T) {
	aliases, err := ManufacturerAliases("")
	require.NoError(t, err)
	assert.Contains(t, aliases["hp"], "hewlett-packard")
	assert.Contains(t, aliases["konica_minolta"], "bizhub")
}

func TestContextWindow(t *testing.T) {
	text := "short text with a match inside"
	win := contextWindow(text, 18, 23)
	assert.Equal(t, text, win, "small texts return whole text")

	// Multi-byte runes at the window edge must not be split.
	padded := "ä" + string(make([]byte, 0))
	for len(padded) < contextRadius+10 {
		padded += "ä"
	}
	win = contextWindow(padded+"match", len(padded), len(padded)+5)
	for _, r := range win {
		assert.NotEqual(t, '�', r)
	}
}

func TestValidContext(t *testing.T) {
	rule := Rule{
		RequiredContext: []string{"error"},
		ExcludedContext: []string{"serial number"},
	}
	assert.True(t, validContext("an ERROR occurred", rule))
	assert.False(t, validContext("no keyword here", rule))
	assert.False(t, validContext("error near the serial number label", rule))
	assert.True(t, validContext("anything", Rule{}))
}
