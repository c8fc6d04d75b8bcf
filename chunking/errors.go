package chunking

import "errors"

var (
	// ErrEmptyDocument indicates the document text was empty or whitespace.
	ErrEmptyDocument = errors.New("document text is empty")

	// ErrNoChunks indicates the model produced no usable chunk content
	// for any panel of the document.
	ErrNoChunks = errors.New("model produced no chunks")

	// ErrInvalidPanelConfig indicates panel sizing values that cannot
	// produce a valid panel sequence.
	ErrInvalidPanelConfig = errors.New("invalid panel configuration")
)
