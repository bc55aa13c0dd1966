package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Implementations may include:
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Any OpenAI-compatible inference server
//
// Returned vectors are always unit L2-normalised.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text. Long
	// texts are chunked internally; the result is the renormalised
	// mean of the chunk vectors.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size (e.g. 1536, 3072).
	// This is determined by the model and must match the store schema.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the provider is reachable with a lightweight
	// request. Used at startup before committing to index or search.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
