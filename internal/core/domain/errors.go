package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDimensionMismatch indicates two vectors of different lengths
	// were compared. Never silently coerced.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrEmbeddingUnavailable indicates the embedding provider is not
	// configured. Indexing and search both require embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrEmbeddingFailed indicates the provider returned no usable
	// vector for a text.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrSchemaMissing indicates the index store schema has not been
	// created. Run setup before indexing or searching.
	ErrSchemaMissing = errors.New("index schema missing")

	// ErrStoreUnavailable indicates the index store is not configured.
	ErrStoreUnavailable = errors.New("index store unavailable")
)
