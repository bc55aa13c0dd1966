package domain

import "time"

// SearchQuery describes one hybrid search request.
type SearchQuery struct {
	// Text is the raw query string.
	Text string

	// ScopeID restricts results to one root scope. 0 means unscoped.
	ScopeID int64

	// Limit is the maximum number of results.
	Limit int
}

// SearchResult is a single ranked hit.
type SearchResult struct {
	// Entry is the matched index entry.
	Entry IndexEntry

	// SemanticDistance is the cosine distance between the query vector
	// and the entry's content vector. Lower is more similar.
	SemanticDistance float64

	// LexicalRank is the text relevance of the query tokens against the
	// entry's lexical terms. Zero means no lexical match.
	LexicalRank float64

	// CombinedScore is the blended relevance used for ordering.
	CombinedScore float64
}

// SimilarResult is a nearest-neighbour hit from the similarity engine.
type SimilarResult struct {
	// Entry is the neighbouring index entry.
	Entry IndexEntry

	// Distance is the cosine distance to the reference entry.
	Distance float64
}

// QueryTelemetry records one executed search for analytics.
// Rows are append-only and never read back by the core.
type QueryTelemetry struct {
	ID          string
	QueryText   string
	QueryVector []float32
	ScopeID     int64
	ResultCount int
	Duration    time.Duration
	CreatedAt   time.Time
}
