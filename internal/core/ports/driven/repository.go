package driven

import (
	"context"

	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/core/domain"
)

// Repository persists pipeline output. Every Save is an idempotent
// upsert keyed by the entity's natural key (code+manufacturer+document,
// content hash, url), so re-running the pipeline on the same document
// produces no duplicate rows. Writes are not wrapped in a cross-entity
// transaction; each entity type recovers through re-processing.
type Repository interface {
	// SaveDocument stores or updates the document record.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// SaveChunks upserts chunks keyed by (document, fingerprint).
	SaveChunks(ctx context.Context, chunks []domain.Chunk) error

	// SaveErrorCodes upserts error codes keyed by (code, manufacturer, document).
	SaveErrorCodes(ctx context.Context, codes []domain.ErrorCode) error

	// SaveParts upserts parts keyed by (number, document).
	SaveParts(ctx context.Context, parts []domain.Part) error

	// SaveProducts upserts products keyed by (model, document).
	SaveProducts(ctx context.Context, products []domain.ProductModel) error

	// SaveVersions upserts versions keyed by (label, value, document).
	SaveVersions(ctx context.Context, versions []domain.Version) error

	// SaveImages upserts images keyed by (hash, document).
	SaveImages(ctx context.Context, images []domain.Image) error

	// SaveLinks upserts links keyed by (url, document).
	SaveLinks(ctx context.Context, links []domain.Link) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetChunks retrieves all chunks for a document ordered by index.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// GetErrorCodes retrieves all error codes for a document.
	GetErrorCodes(ctx context.Context, documentID string) ([]domain.ErrorCode, error)

	// Close releases storage resources.
	Close() error
}
