package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// StreamFunc receives partial generation output while a call is in
// flight. charsSoFar is the total characters generated, previewTail the
// last few characters for display. Implementations must not block; the
// stream carries no backpressure.
type StreamFunc func(charsSoFar int, previewTail string)

// ChunkGenerator produces the raw chunked rendition of a prompt using a
// text-generation model. The response is parsed by the chunking layer;
// the generator itself knows nothing about delimiters or panels.
type ChunkGenerator interface {
	// GenerateChunks sends the prompt to the model and returns the full
	// response text. When stream is non-nil it is invoked zero or more
	// times with partial output before the call resolves. Throttling is
	// reported as a *retry.ThrottleError.
	GenerateChunks(ctx context.Context, prompt string, stream StreamFunc) (string, error)
}

// Provider aggregates AI services for convenient initialization and
// lifecycle management. A provider creates and manages Embedder and
// ChunkGenerator instances, ensuring they share configuration.
type Provider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// ChunkGenerator returns the chunk generation service.
	ChunkGenerator() ChunkGenerator

	// Close releases resources held by the provider and its services.
	Close() error
}
