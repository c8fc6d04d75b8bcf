package storage

import "errors"

var (
	// ErrNotFound indicates the requested document is not stored.
	ErrNotFound = errors.New("document not found")

	// ErrMissingVector indicates a chunk reached storage without an
	// embedding vector.
	ErrMissingVector = errors.New("chunk has no embedding vector")

	// ErrInvalidVector indicates a search vector that cannot be compared.
	ErrInvalidVector = errors.New("invalid search vector")
)
