// Package sqlite provides a SQLite-backed index store. It is the
// default backend: a single file, no server, suitable for local and
// single-node deployments.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/lexica/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/lexica/internal/core/domain"
	"github.com/custodia-labs/lexica/internal/lexical"
)

// Store is a SQLite-based index store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (or creates) the index database at the specified data
// directory. If dataDir is empty, defaults to ~/.lexica/data/index.db.
// The schema is not created here; call EnsureSchema before first use.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".lexica", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "index.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return &Store{
		db:   db,
		path: dbPath,
	}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// EnsureSchema applies all pending migrations.
func (s *Store) EnsureSchema(ctx context.Context) error {
	return s.migrate(ctx, migrations.FS)
}

func (s *Store) migrate(ctx context.Context, fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.ExecContext(ctx,
			"INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// Upsert inserts or replaces the entry for its key. The lexical term
// map is recomputed from the entry's title and content before writing,
// so the stored map never goes stale relative to the text.
func (s *Store) Upsert(ctx context.Context, entry *domain.IndexEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: nil entry", domain.ErrInvalidInput)
	}

	terms := lexical.Terms(entry.Title, entry.Content)
	termsJSON, err := json.Marshal(terms)
	if err != nil {
		return fmt.Errorf("marshaling lexical terms: %w", err)
	}
	entry.LexicalTerms = terms

	now := time.Now().UTC()
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO index_entries (
			source_id, source_type, language_id, scope_id,
			title, content, url,
			content_vector, title_vector, lexical_terms,
			content_hash, boost_factor, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source_id, source_type, language_id) DO UPDATE SET
			scope_id = excluded.scope_id,
			title = excluded.title,
			content = excluded.content,
			url = excluded.url,
			content_vector = excluded.content_vector,
			title_vector = excluded.title_vector,
			lexical_terms = excluded.lexical_terms,
			content_hash = excluded.content_hash,
			boost_factor = excluded.boost_factor,
			updated_at = excluded.updated_at
	`, entry.Key.SourceID, entry.Key.SourceType, entry.Key.LanguageID, entry.ScopeID,
		entry.Title, entry.Content, entry.URL,
		float32SliceToBytes(entry.ContentVector), float32SliceToBytes(entry.TitleVector),
		string(termsJSON), entry.ContentHash, entry.BoostFactor, createdAt, now)
	if err != nil {
		return fmt.Errorf("upserting index entry: %w", mapSchemaErr(err))
	}

	entry.CreatedAt = createdAt
	entry.UpdatedAt = now
	return nil
}

// Get retrieves one entry by its full key.
func (s *Store) Get(ctx context.Context, key domain.EntryKey) (*domain.IndexEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT source_id, source_type, language_id, scope_id,
		       title, content, url,
		       content_vector, title_vector, lexical_terms,
		       content_hash, boost_factor, created_at, updated_at
		FROM index_entries
		WHERE source_id = ? AND source_type = ? AND language_id = ?
	`, key.SourceID, key.SourceType, key.LanguageID)

	return scanEntryRow(row)
}

// GetBySource retrieves the entry for a source regardless of language.
// When multiple language variants exist, the lowest language id wins.
func (s *Store) GetBySource(ctx context.Context, sourceID int64, sourceType string) (*domain.IndexEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT source_id, source_type, language_id, scope_id,
		       title, content, url,
		       content_vector, title_vector, lexical_terms,
		       content_hash, boost_factor, created_at, updated_at
		FROM index_entries
		WHERE source_id = ? AND source_type = ?
		ORDER BY language_id
		LIMIT 1
	`, sourceID, sourceType)

	return scanEntryRow(row)
}

// Remove deletes all language variants of a source. Removing an absent
// source is a no-op.
func (s *Store) Remove(ctx context.Context, sourceID int64, sourceType string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM index_entries WHERE source_id = ? AND source_type = ?
	`, sourceID, sourceType)
	if err != nil {
		return fmt.Errorf("removing index entry: %w", mapSchemaErr(err))
	}
	return nil
}

// Clear empties the index. Telemetry is retained.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM index_entries"); err != nil {
		return fmt.Errorf("clearing index: %w", mapSchemaErr(err))
	}
	return nil
}

// List returns all entries in a scope. scopeID 0 lists every scope.
func (s *Store) List(ctx context.Context, scopeID int64) ([]*domain.IndexEntry, error) {
	query := `
		SELECT source_id, source_type, language_id, scope_id,
		       title, content, url,
		       content_vector, title_vector, lexical_terms,
		       content_hash, boost_factor, created_at, updated_at
		FROM index_entries
	`
	var args []any
	if scopeID != 0 {
		query += " WHERE scope_id = ?"
		args = append(args, scopeID)
	}
	query += " ORDER BY source_type, source_id, language_id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying index entries: %w", mapSchemaErr(err))
	}
	defer rows.Close()

	var entries []*domain.IndexEntry
	for rows.Next() {
		entry, err := scanEntryRows(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating index entries: %w", err)
	}
	return entries, nil
}

// RecordQuery appends one telemetry row.
func (s *Store) RecordQuery(ctx context.Context, tel *domain.QueryTelemetry) error {
	if tel == nil {
		return fmt.Errorf("%w: nil telemetry", domain.ErrInvalidInput)
	}

	createdAt := tel.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO query_telemetry (
			id, query_text, query_vector, scope_id, result_count, search_time_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`, tel.ID, tel.QueryText, float32SliceToBytes(tel.QueryVector),
		tel.ScopeID, tel.ResultCount, tel.Duration.Milliseconds(), createdAt)
	if err != nil {
		return fmt.Errorf("recording query: %w", mapSchemaErr(err))
	}
	return nil
}

// mapSchemaErr translates the driver's missing-table error so callers
// can tell an unmigrated database from a real failure.
func mapSchemaErr(err error) error {
	if err != nil && strings.Contains(err.Error(), "no such table") {
		return domain.ErrSchemaMissing
	}
	return err
}

// ==================== Helper Functions ====================

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// scanEntryRow scans a single entry row.
func scanEntryRow(row *sql.Row) (*domain.IndexEntry, error) {
	var entry domain.IndexEntry
	var contentVec, titleVec []byte
	var termsJSON string

	if err := row.Scan(&entry.Key.SourceID, &entry.Key.SourceType, &entry.Key.LanguageID,
		&entry.ScopeID, &entry.Title, &entry.Content, &entry.URL,
		&contentVec, &titleVec, &termsJSON,
		&entry.ContentHash, &entry.BoostFactor, &entry.CreatedAt, &entry.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning index entry: %w", mapSchemaErr(err))
	}

	entry.ContentVector = bytesToFloat32Slice(contentVec)
	entry.TitleVector = bytesToFloat32Slice(titleVec)

	if termsJSON != "" {
		if err := json.Unmarshal([]byte(termsJSON), &entry.LexicalTerms); err != nil {
			return nil, fmt.Errorf("unmarshaling lexical terms: %w", err)
		}
	}

	return &entry, nil
}

// scanEntryRows scans an entry from *sql.Rows.
func scanEntryRows(rows *sql.Rows) (*domain.IndexEntry, error) {
	var entry domain.IndexEntry
	var contentVec, titleVec []byte
	var termsJSON string

	if err := rows.Scan(&entry.Key.SourceID, &entry.Key.SourceType, &entry.Key.LanguageID,
		&entry.ScopeID, &entry.Title, &entry.Content, &entry.URL,
		&contentVec, &titleVec, &termsJSON,
		&entry.ContentHash, &entry.BoostFactor, &entry.CreatedAt, &entry.UpdatedAt); err != nil {
		return nil, fmt.Errorf("scanning index entry: %w", err)
	}

	entry.ContentVector = bytesToFloat32Slice(contentVec)
	entry.TitleVector = bytesToFloat32Slice(titleVec)

	if termsJSON != "" {
		if err := json.Unmarshal([]byte(termsJSON), &entry.LexicalTerms); err != nil {
			return nil, fmt.Errorf("unmarshaling lexical terms: %w", err)
		}
	}

	return &entry, nil
}
