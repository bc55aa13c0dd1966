package domain

// DocClass categorises a source document for relevance boosting.
// The values mirror the host content model's record classes.
type DocClass int

const (
	// ClassStandard is a regular content document.
	ClassStandard DocClass = iota

	// ClassShortcut is a redirect-style document with little own content.
	ClassShortcut

	// ClassSeparator is a structural placeholder (menu separator etc).
	ClassSeparator
)

// SourceDocument is an immutable snapshot of a host document for one
// indexing operation. The host collaborator assembles it; Lexica never
// reads the host's raw storage.
type SourceDocument struct {
	// ID is the host-side record identifier.
	ID int64

	// SourceType names the host record kind (e.g. "pages").
	SourceType string

	// ScopeID is the root scope the document belongs to.
	// Used for scoped search; 0 means unscoped.
	ScopeID int64

	// LanguageID is the host language variant.
	LanguageID int

	// Title is the human-readable title.
	Title string

	// BodyText holds the pre-extracted content fragments in order.
	// Markup may still be present; the indexer normalises it.
	BodyText []string

	// URL is the resolved public address of the document.
	URL string

	// Boost carries the metadata the indexer derives a boost factor from.
	Boost BoostHint
}

// BoostHint is the document metadata that feeds boost factor calculation.
type BoostHint struct {
	// Class is the document's record class.
	Class DocClass

	// Depth is the document's level in the host hierarchy (1 = top).
	Depth int

	// HiddenInNav marks documents excluded from navigation.
	HiddenInNav bool

	// NoSearch marks documents flagged to be downranked in search.
	NoSearch bool
}
