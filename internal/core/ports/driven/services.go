package driven

import "context"

// EmbeddingService generates vector embeddings from chunk text.
// This is an optional collaborator - when nil, chunks are persisted
// without vectors.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64

	// StopWords are sequences that stop generation when encountered.
	StopWords []string
}

// LLMService is the local inference collaborator used for best-effort
// supplemental product extraction from free text. Optional; failures are
// never fatal to the pipeline.
type LLMService interface {
	// Generate produces text completion from a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// VisionService describes images via a vision model. Optional.
type VisionService interface {
	// Describe returns a short description of the image content.
	Describe(ctx context.Context, image []byte, prompt string) (string, error)

	// Close releases resources.
	Close() error
}

// ObjectStore uploads extracted images keyed by their content hash.
// Optional; when nil, images are recorded without a storage key.
type ObjectStore interface {
	// Exists reports whether an object with the given key is stored.
	Exists(ctx context.Context, key string) (bool, error)

	// Put stores data under key and returns the storage key.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// VideoInfo is the metadata resolved for a platform video id.
type VideoInfo struct {
	Title     string
	Duration  string
	Thumbnail string
}

// VideoMetadataService resolves video-platform metadata. Optional.
type VideoMetadataService interface {
	// Lookup fetches metadata for a video id.
	Lookup(ctx context.Context, videoID string) (*VideoInfo, error)
}
