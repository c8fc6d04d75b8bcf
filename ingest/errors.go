package ingest

import "errors"

var (
	// ErrStoreRequired indicates a pipeline was constructed without a
	// chunk store.
	ErrStoreRequired = errors.New("chunk store is required")

	// ErrExtractorRequired indicates a pipeline was constructed without
	// a text extractor.
	ErrExtractorRequired = errors.New("extractor is required")

	// ErrChunkerRequired indicates a pipeline was constructed without a
	// chunking service.
	ErrChunkerRequired = errors.New("chunker is required")

	// ErrEmbedderRequired indicates a pipeline was constructed without
	// an embedder.
	ErrEmbedderRequired = errors.New("embedder is required")
)
