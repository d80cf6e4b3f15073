package driving

import (
	"context"

	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/core/domain"
)

// DocumentPipeline processes a single manual end to end: extraction,
// entity recognition, chunking, enrichment and persistence.
type DocumentPipeline interface {
	// Process runs the pipeline for one PDF file and returns the
	// per-run result. A non-nil result may accompany an error when
	// early stages produced partial information.
	Process(ctx context.Context, path string) (*domain.ProcessingResult, error)
}
