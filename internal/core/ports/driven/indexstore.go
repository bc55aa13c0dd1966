package driven

import (
	"context"

	"github.com/custodia-labs/lexica/internal/core/domain"
)

// IndexStore persists index entries. Implementations must be safe for
// concurrent use: row-level upserts to distinct keys must not block each
// other, while EnsureSchema and Clear are serialised against everything
// else by the backing engine.
//
// The store recomputes the entry's lexical term map from title and
// content on every write, so the persisted lexical index always reflects
// the current text.
type IndexStore interface {
	// EnsureSchema creates tables and indexes if they do not exist.
	EnsureSchema(ctx context.Context) error

	// Upsert inserts the entry or atomically replaces all mutable
	// fields of the row with the same key. CreatedAt is preserved on
	// replace; UpdatedAt is refreshed. Concurrent upserts to the same
	// key resolve last-write-wins.
	Upsert(ctx context.Context, entry *domain.IndexEntry) error

	// Get retrieves one entry. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, key domain.EntryKey) (*domain.IndexEntry, error)

	// GetBySource retrieves the entry for a source id and type,
	// regardless of language. Returns domain.ErrNotFound if absent.
	GetBySource(ctx context.Context, sourceID int64, sourceType string) (*domain.IndexEntry, error)

	// Remove deletes the entries for a source id and type. Removing an
	// absent entry is a no-op.
	Remove(ctx context.Context, sourceID int64, sourceType string) error

	// Clear irreversibly empties the index. Used for full rebuilds.
	Clear(ctx context.Context) error

	// List returns entries for scoring. scopeID 0 lists all scopes.
	List(ctx context.Context, scopeID int64) ([]*domain.IndexEntry, error)

	// RecordQuery appends one telemetry row. Best effort; the core
	// never reads telemetry back.
	RecordQuery(ctx context.Context, tel *domain.QueryTelemetry) error

	// Close releases resources.
	Close() error
}
