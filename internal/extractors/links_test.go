package extractors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHarvestLinks(t *testing.T) {
	pages := map[int]string{
		2: "See the alignment video at https://www.youtube.com/watch?v=dQw4w9WgXcQ.",
		5: "Firmware downloads: https://support.example.com/firmware. Also https://www.youtube.com/watch?v=dQw4w9WgXcQ",
	}

	links := HarvestLinks(pages, "doc-1")
	require.Len(t, links, 2)

	assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", links[0].URL)
	assert.Equal(t, 2, links[0].Page, "first occurrence wins")
	assert.Equal(t, "dQw4w9WgXcQ", links[0].VideoID)

	assert.Equal(t, "https://support.example.com/firmware", links[1].URL)
	assert.Empty(t, links[1].VideoID)
}

func TestYouTubeID(t *testing.T) {
	cases := map[string]string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ":       "dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ":                      "dQw4w9WgXcQ",
		"https://www.youtube.com/embed/dQw4w9WgXcQ":         "dQw4w9WgXcQ",
		"https://www.youtube.com/watch?list=x&v=dQw4w9WgXcQ": "dQw4w9WgXcQ",
		"https://example.com/watch?v=notavideo":             "",
	}
	for url, want := range cases {
		assert.Equal(t, want, YouTubeID(url), url)
	}
}
