// Package memory provides an in-memory Repository used by tests and as
// the reference implementation of the natural-key upsert contract.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/core/domain"
	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/core/ports/driven"
)

// Ensure Repository implements the interface.
var _ driven.Repository = (*Repository)(nil)

// Repository is an in-memory implementation of driven.Repository. Every
// Save upserts on the entity's natural key, mirroring the behaviour of
// the sqlite adapter.
type Repository struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	chunks    map[string]map[string]domain.Chunk // docID -> fingerprint
	codes     map[string]domain.ErrorCode
	parts     map[string]domain.Part
	products  map[string]domain.ProductModel
	versions  map[string]domain.Version
	images    map[string]domain.Image
	links     map[string]domain.Link
}

// NewRepository creates an empty in-memory repository.
func NewRepository() *Repository {
	return &Repository{
		documents: make(map[string]domain.Document),
		chunks:    make(map[string]map[string]domain.Chunk),
		codes:     make(map[string]domain.ErrorCode),
		parts:     make(map[string]domain.Part),
		products:  make(map[string]domain.ProductModel),
		versions:  make(map[string]domain.Version),
		images:    make(map[string]domain.Image),
		links:     make(map[string]domain.Link),
	}
}

// SaveDocument stores or updates the document record.
func (r *Repository) SaveDocument(_ context.Context, doc *domain.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.documents[doc.ID]; ok {
		updated := *doc
		updated.CreatedAt = existing.CreatedAt
		r.documents[doc.ID] = updated
		return nil
	}
	r.documents[doc.ID] = *doc
	return nil
}

// SaveChunks upserts chunks keyed by (document, fingerprint).
func (r *Repository) SaveChunks(_ context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ch := range chunks {
		byFingerprint, ok := r.chunks[ch.DocumentID]
		if !ok {
			byFingerprint = make(map[string]domain.Chunk)
			r.chunks[ch.DocumentID] = byFingerprint
		}
		if existing, dup := byFingerprint[ch.Fingerprint]; dup {
			// Keep the first id so chunk references stay stable.
			ch.ID = existing.ID
		}
		byFingerprint[ch.Fingerprint] = ch
	}
	return nil
}

// SaveErrorCodes upserts error codes by natural key.
func (r *Repository) SaveErrorCodes(_ context.Context, codes []domain.ErrorCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range codes {
		r.codes[c.NaturalKey()] = c
	}
	return nil
}

// SaveParts upserts parts by natural key.
func (r *Repository) SaveParts(_ context.Context, parts []domain.Part) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range parts {
		r.parts[p.NaturalKey()] = p
	}
	return nil
}

// SaveProducts upserts products by natural key.
func (r *Repository) SaveProducts(_ context.Context, products []domain.ProductModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range products {
		r.products[p.NaturalKey()] = p
	}
	return nil
}

// SaveVersions upserts versions by natural key.
func (r *Repository) SaveVersions(_ context.Context, versions []domain.Version) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range versions {
		r.versions[v.NaturalKey()] = v
	}
	return nil
}

// SaveImages upserts images keyed by (document, hash).
func (r *Repository) SaveImages(_ context.Context, images []domain.Image) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, img := range images {
		r.images[img.DocumentID+"|"+img.Hash] = img
	}
	return nil
}

// SaveLinks upserts links keyed by (document, url).
func (r *Repository) SaveLinks(_ context.Context, links []domain.Link) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range links {
		r.links[l.DocumentID+"|"+l.URL] = l
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (r *Repository) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// GetChunks retrieves all chunks for a document ordered by index.
func (r *Repository) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	byFingerprint, ok := r.chunks[documentID]
	if !ok {
		return nil, nil
	}
	chunks := make([]domain.Chunk, 0, len(byFingerprint))
	for _, ch := range byFingerprint {
		chunks = append(chunks, ch)
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].Index < chunks[j].Index })
	return chunks, nil
}

// GetErrorCodes retrieves all error codes for a document.
func (r *Repository) GetErrorCodes(_ context.Context, documentID string) ([]domain.ErrorCode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var codes []domain.ErrorCode
	for _, c := range r.codes {
		if c.DocumentID == documentID {
			codes = append(codes, c)
		}
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i].NaturalKey() < codes[j].NaturalKey() })
	return codes, nil
}

// Close is a no-op for the in-memory repository.
func (r *Repository) Close() error { return nil }

// Counts returns per-entity row counts, used by tests asserting the
// idempotent upsert contract.
func (r *Repository) Counts() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	chunkCount := 0
	for _, m := range r.chunks {
		chunkCount += len(m)
	}
	return map[string]int{
		"documents":   len(r.documents),
		"chunks":      chunkCount,
		"error_codes": len(r.codes),
		"parts":       len(r.parts),
		"products":    len(r.products),
		"versions":    len(r.versions),
		"images":      len(r.images),
		"links":       len(r.links),
	}
}
