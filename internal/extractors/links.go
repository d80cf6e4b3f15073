package extractors

import (
	"regexp"
	"sort"
	"strings"

	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/core/domain"
)

var (
	urlRe = regexp.MustCompile(`https?://[^\s<>()\[\]{}"']+`)

	// youtubeIDRes extract the 11-character video ID from the URL
	// shapes that appear in manuals.
	youtubeIDRes = []*regexp.Regexp{
		regexp.MustCompile(`(?:youtube\.com/watch\?(?:[^#\s]*&)?v=)([A-Za-z0-9_-]{11})`),
		regexp.MustCompile(`(?:youtu\.be/)([A-Za-z0-9_-]{11})`),
		regexp.MustCompile(`(?:youtube\.com/embed/)([A-Za-z0-9_-]{11})`),
		regexp.MustCompile(`(?:youtube\.com/shorts/)([A-Za-z0-9_-]{11})`),
	}
)

// HarvestLinks collects the URLs in page text, deduplicated per
// document with the first page of occurrence kept. Trailing sentence
// punctuation is stripped since PDF text extraction glues it onto URLs.
func HarvestLinks(pages map[int]string, documentID string) []domain.Link {
	byURL := map[string]domain.Link{}

	for _, page := range sortedPages(pages) {
		for _, raw := range urlRe.FindAllString(pages[page], -1) {
			url := strings.TrimRight(raw, ".,;:!?")
			if url == "" {
				continue
			}
			if _, seen := byURL[url]; seen {
				continue
			}
			byURL[url] = domain.Link{
				DocumentID: documentID,
				Page:       page,
				URL:        url,
				VideoID:    YouTubeID(url),
			}
		}
	}

	links := make([]domain.Link, 0, len(byURL))
	for _, l := range byURL {
		links = append(links, l)
	}
	sort.Slice(links, func(i, j int) bool {
		if links[i].Page != links[j].Page {
			return links[i].Page < links[j].Page
		}
		return links[i].URL < links[j].URL
	})
	return links
}

// LinkScanner is the link harvesting collaborator handed to the
// pipeline orchestrator.
type LinkScanner struct{}

// Harvest collects the URLs in page text.
func (LinkScanner) Harvest(pages map[int]string, documentID string) []domain.Link {
	return HarvestLinks(pages, documentID)
}

// YouTubeID returns the video ID for a YouTube URL, or "".
func YouTubeID(url string) string {
	for _, re := range youtubeIDRes {
		if m := re.FindStringSubmatch(url); m != nil {
			return m[1]
		}
	}
	return ""
}
