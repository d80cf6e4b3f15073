package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testDocument(id string) *domain.Document {
	return &domain.Document{
		ID:           id,
		Path:         "/manuals/HP_M479_SM.pdf",
		Filename:     "HP_M479_SM.pdf",
		Manufacturer: "hp",
		Metadata: domain.DocumentMetadata{
			Title:     "Service Manual",
			PageCount: 3,
			Language:  "en",
		},
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
}

func TestStore_SaveAndGetDocument(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveDocument(ctx, testDocument("doc-1")))

	doc, err := store.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "hp", doc.Manufacturer)
	assert.Equal(t, 3, doc.Metadata.PageCount)

	_, err = store.GetDocument(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_SaveDocumentPreservesCreatedAt(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := testDocument("doc-1")
	require.NoError(t, store.SaveDocument(ctx, doc))
	first, err := store.GetDocument(ctx, "doc-1")
	require.NoError(t, err)

	doc.Manufacturer = "canon"
	require.NoError(t, store.SaveDocument(ctx, doc))
	second, err := store.GetDocument(ctx, "doc-1")
	require.NoError(t, err)

	assert.Equal(t, "canon", second.Manufacturer)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
}

func TestStore_ChunkUpsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveDocument(ctx, testDocument("doc-1")))

	chunks := []domain.Chunk{
		{
			ID: "chunk-1", DocumentID: "doc-1", Index: 0, PageStart: 1, PageEnd: 2,
			Text: "first chunk", Fingerprint: domain.Fingerprint("first chunk"),
			Type: domain.ChunkTypeText, Embedding: []float32{0.25, -1.5},
		},
		{
			ID: "chunk-2", DocumentID: "doc-1", Index: 1, PageStart: 2, PageEnd: 3,
			Text: "second chunk", Fingerprint: domain.Fingerprint("second chunk"),
			Type: domain.ChunkTypeProcedure,
		},
	}
	require.NoError(t, store.SaveChunks(ctx, chunks))
	require.NoError(t, store.SaveChunks(ctx, chunks), "second save upserts")

	got, err := store.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []float32{0.25, -1.5}, got[0].Embedding)
	assert.Equal(t, domain.ChunkTypeProcedure, got[1].Type)
	assert.Nil(t, got[1].Embedding)
}

func TestStore_ErrorCodeUpsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveDocument(ctx, testDocument("doc-1")))

	code := domain.ErrorCode{
		Code: "13.A1.B2", Manufacturer: "hp", DocumentID: "doc-1",
		Page: 2, Description: "Paper jam in tray 2", Severity: "medium",
		Category: "paper_handling", Confidence: 0.67,
	}
	require.NoError(t, store.SaveErrorCodes(ctx, []domain.ErrorCode{code}))

	code.Confidence = 0.72
	require.NoError(t, store.SaveErrorCodes(ctx, []domain.ErrorCode{code}))

	codes, err := store.GetErrorCodes(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, codes, 1, "same natural key updates in place")
	assert.Equal(t, 0.72, codes[0].Confidence)
}

func TestStore_EntityUpserts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveDocument(ctx, testDocument("doc-1")))

	parts := []domain.Part{{Number: "RM1-4554-000", DocumentID: "doc-1", Manufacturer: "hp", Page: 3, Confidence: 0.6}}
	products := []domain.ProductModel{{Model: "M479fdw", DocumentID: "doc-1", Manufacturer: "hp", Page: 1, Confidence: 0.5}}
	versions := []domain.Version{{Label: "firmware", Value: "2.4.1", DocumentID: "doc-1", Page: 1, Confidence: 0.5}}
	images := []domain.Image{{DocumentID: "doc-1", Hash: "abc123", Page: 1, Format: "png"}}
	links := []domain.Link{{DocumentID: "doc-1", URL: "https://youtu.be/dQw4w9WgXcQ", Page: 2, VideoID: "dQw4w9WgXcQ"}}

	for i := 0; i < 2; i++ {
		require.NoError(t, store.SaveParts(ctx, parts))
		require.NoError(t, store.SaveProducts(ctx, products))
		require.NoError(t, store.SaveVersions(ctx, versions))
		require.NoError(t, store.SaveImages(ctx, images))
		require.NoError(t, store.SaveLinks(ctx, links))
	}

	for table, want := range map[string]int{
		"parts": 1, "products": 1, "versions": 1, "images": 1, "links": 1,
	} {
		var count int
		row := store.db.QueryRow("SELECT COUNT(*) FROM " + table)
		require.NoError(t, row.Scan(&count))
		assert.Equal(t, want, count, table)
	}
}

func TestStore_MigrationsAreIdempotent(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	assert.NoError(t, reopened.Close())
}
