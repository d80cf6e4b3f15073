package domain

import (
	"crypto/sha256"
	"encoding/hex"
)

// ChunkType classifies a chunk by its dominant content.
type ChunkType string

// Chunk types.
const (
	ChunkTypeText            ChunkType = "text"
	ChunkTypeErrorCode       ChunkType = "error_code"
	ChunkTypeProcedure       ChunkType = "procedure"
	ChunkTypeSpecification   ChunkType = "specification"
	ChunkTypeIntroduction    ChunkType = "introduction"
	ChunkTypeTroubleshooting ChunkType = "troubleshooting"
)

// Chunk is a searchable unit of document text. Chunks are created by the
// chunker, immutable, and deduplicated by fingerprint before persistence.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the owning Document.
	DocumentID string

	// Index is the ordinal position within the document, contiguous
	// from 0 after deduplication.
	Index int

	// PageStart and PageEnd bound the pages this chunk spans.
	// Invariant: PageStart <= PageEnd.
	PageStart int
	PageEnd   int

	// Text is the chunk body.
	Text string

	// Fingerprint is the deterministic hash of Text, used for
	// exact-duplicate detection.
	Fingerprint string

	// Type is the content classification.
	Type ChunkType

	// Embedding is the optional vector representation.
	Embedding []float32

	// Metadata contains chunk-specific key-value pairs.
	Metadata map[string]string
}

// Fingerprint returns the deterministic content hash used for chunk
// deduplication.
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// ContainsPage reports whether the chunk's page range covers page.
func (c Chunk) ContainsPage(page int) bool {
	return c.PageStart <= page && page <= c.PageEnd
}

// Image is an extracted page image, keyed by content hash so re-uploads
// of the same bytes are skipped.
type Image struct {
	DocumentID  string
	Page        int
	Hash        string
	Format      string
	StorageKey  string
	Description string
}

// Link is a URL harvested from page text. Video links carry platform
// metadata when the video collaborator resolved them.
type Link struct {
	DocumentID string
	Page       int
	URL        string
	VideoID    string
	Title      string
	Duration   string
	Thumbnail  string
}
