package driving

import (
	"context"

	"github.com/custodia-labs/lexica/internal/core/domain"
)

// IndexOptions configures a batch indexing run.
type IndexOptions struct {
	// ScopeID restricts the run to one root scope. 0 means all scopes.
	ScopeID int64

	// Force re-embeds documents even when their content fingerprint
	// matches the stored entry.
	Force bool
}

// Indexer maintains the search index.
type Indexer interface {
	// IndexDocument indexes one document end to end: normalise, embed,
	// fingerprint, boost, upsert.
	IndexDocument(ctx context.Context, doc *domain.SourceDocument, force bool) (domain.DocumentResult, error)

	// IndexAll indexes every eligible document under the given scope.
	// Per-document failures are collected in the report, never
	// propagated; cancelling ctx stops remaining documents while
	// already-committed upserts stay valid.
	IndexAll(ctx context.Context, opts IndexOptions) (*domain.IndexReport, error)

	// RemoveDocument deletes the index entries for a document.
	// Removing an absent document is a no-op.
	RemoveDocument(ctx context.Context, sourceID int64, sourceType string) error

	// ClearAll irreversibly empties the index.
	ClearAll(ctx context.Context) error
}

// Searcher answers ranked queries against the index.
type Searcher interface {
	// Search runs a hybrid semantic + lexical query. A query embedding
	// failure fails the whole call; there is no lexical-only fallback.
	Search(ctx context.Context, query domain.SearchQuery) ([]domain.SearchResult, error)

	// FindSimilar returns the entries nearest to the given source's
	// content vector, self excluded, ascending by distance.
	FindSimilar(ctx context.Context, sourceID int64, sourceType string, limit int) ([]domain.SimilarResult, error)
}
