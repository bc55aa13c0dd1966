package domain

import "time"

// EntryKey uniquely identifies an index entry.
// The store enforces a UNIQUE constraint over the three fields.
type EntryKey struct {
	// SourceID is the host-side record identifier.
	SourceID int64

	// SourceType names the host record kind.
	SourceType string

	// LanguageID is the host language variant.
	LanguageID int
}

// IndexEntry is a persisted row in the search index.
// Entries are created and replaced by the indexer via upsert; search and
// similarity components only read them.
type IndexEntry struct {
	// Key is the upsert key.
	Key EntryKey

	// ScopeID is the root scope for scoped search filtering.
	ScopeID int64

	// Title is the indexed title.
	Title string

	// Content is the full normalised text (title and body combined).
	Content string

	// URL is the resolved public address.
	URL string

	// ContentVector is the unit-normalised embedding of Content.
	ContentVector []float32

	// TitleVector is the unit-normalised embedding of Title.
	TitleVector []float32

	// LexicalTerms is the term frequency map derived from Title and
	// Content. The store recomputes it on every write so it always
	// reflects the current text.
	LexicalTerms map[string]int

	// ContentHash fingerprints Content+Title. Used as a change marker.
	ContentHash string

	// BoostFactor is the relevance multiplier derived from document
	// metadata. Defaults to 1.0.
	BoostFactor float64

	// CreatedAt is when the entry was first written.
	CreatedAt time.Time

	// UpdatedAt is refreshed on every upsert.
	UpdatedAt time.Time
}
