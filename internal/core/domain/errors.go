package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrUnsupportedFormat indicates no extractor is registered for the
	// file's extension
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrExtractionFailed indicates the registered extractor could not
	// parse the file bytes
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrNoContent indicates extraction and chunking produced no usable text
	ErrNoContent = errors.New("no content")

	// ErrConfiguration indicates invalid configuration, e.g. a chunk
	// overlap that is not smaller than the chunk size
	ErrConfiguration = errors.New("invalid configuration")

	// ErrEmbeddingUnavailable indicates the embedding provider was
	// unreachable or timed out
	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")

	// ErrLLMUnavailable indicates the language model provider was
	// unreachable or timed out
	ErrLLMUnavailable = errors.New("language model unavailable")

	// ErrPersistence indicates the backing store rejected a write
	ErrPersistence = errors.New("persistence failure")

	// ErrSchemaSetup indicates the vector schema could not be ensured
	ErrSchemaSetup = errors.New("schema setup failure")

	// ErrCollectionNotFound indicates the collection has never been
	// written to. An empty but existing collection is not an error.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrInvalidProvider indicates an unknown AI provider was specified
	ErrInvalidProvider = errors.New("invalid provider")
)
