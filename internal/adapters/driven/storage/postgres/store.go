// Package postgres provides a PostgreSQL-backed index store for
// multi-node deployments where the index must be shared.
//
// Vectors are persisted in pgvector's text format ("[v1,v2,...]") in
// plain text columns, so the store works without the pgvector
// extension installed; scoring happens in the core. Sites that do run
// pgvector can add a typed column and an ivfflat index on top without
// changing this code.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/custodia-labs/lexica/internal/core/domain"
	"github.com/custodia-labs/lexica/internal/lexical"
)

// undefinedTable is the PostgreSQL error code for a missing relation.
const undefinedTable = "42P01"

const schema = `
CREATE TABLE IF NOT EXISTS index_entries (
	source_id      BIGINT NOT NULL,
	source_type    TEXT   NOT NULL,
	language_id    INT    NOT NULL DEFAULT 0,
	scope_id       BIGINT NOT NULL DEFAULT 0,
	title          TEXT   NOT NULL,
	content        TEXT   NOT NULL,
	url            TEXT   NOT NULL DEFAULT '',
	content_vector TEXT,
	title_vector   TEXT,
	lexical_terms  JSONB  NOT NULL DEFAULT '{}',
	content_hash   TEXT   NOT NULL,
	boost_factor   DOUBLE PRECISION NOT NULL DEFAULT 1.0,
	created_at     TIMESTAMPTZ NOT NULL,
	updated_at     TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (source_id, source_type, language_id)
);

CREATE INDEX IF NOT EXISTS idx_index_entries_scope    ON index_entries (scope_id);
CREATE INDEX IF NOT EXISTS idx_index_entries_language ON index_entries (language_id);
CREATE INDEX IF NOT EXISTS idx_index_entries_type     ON index_entries (source_type);
CREATE INDEX IF NOT EXISTS idx_index_entries_hash     ON index_entries (content_hash);
CREATE INDEX IF NOT EXISTS idx_index_entries_terms    ON index_entries USING GIN (lexical_terms);

CREATE TABLE IF NOT EXISTS query_telemetry (
	id             TEXT PRIMARY KEY,
	query_text     TEXT   NOT NULL,
	query_vector   TEXT,
	scope_id       BIGINT NOT NULL DEFAULT 0,
	result_count   INT    NOT NULL DEFAULT 0,
	search_time_ms BIGINT NOT NULL DEFAULT 0,
	created_at     TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_query_telemetry_scope   ON query_telemetry (scope_id);
CREATE INDEX IF NOT EXISTS idx_query_telemetry_created ON query_telemetry (created_at);
`

// Store is a PostgreSQL-based index store.
type Store struct {
	db *sqlx.DB
}

// NewStore opens a connection pool to the given DSN. The schema is not
// created here; call EnsureSchema before first use.
func NewStore(dsn string) (*Store, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	return &Store{db: db}, nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureSchema creates tables and indexes if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging database: %w", domain.ErrStoreUnavailable)
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// entryRow maps an index_entries row for sqlx scanning.
type entryRow struct {
	SourceID      int64          `db:"source_id"`
	SourceType    string         `db:"source_type"`
	LanguageID    int            `db:"language_id"`
	ScopeID       int64          `db:"scope_id"`
	Title         string         `db:"title"`
	Content       string         `db:"content"`
	URL           string         `db:"url"`
	ContentVector sql.NullString `db:"content_vector"`
	TitleVector   sql.NullString `db:"title_vector"`
	LexicalTerms  []byte         `db:"lexical_terms"`
	ContentHash   string         `db:"content_hash"`
	BoostFactor   float64        `db:"boost_factor"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

func (r *entryRow) toDomain() (*domain.IndexEntry, error) {
	entry := &domain.IndexEntry{
		Key: domain.EntryKey{
			SourceID:   r.SourceID,
			SourceType: r.SourceType,
			LanguageID: r.LanguageID,
		},
		ScopeID:     r.ScopeID,
		Title:       r.Title,
		Content:     r.Content,
		URL:         r.URL,
		ContentHash: r.ContentHash,
		BoostFactor: r.BoostFactor,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}

	var err error
	if entry.ContentVector, err = parseVector(r.ContentVector.String); err != nil {
		return nil, fmt.Errorf("parsing content vector: %w", err)
	}
	if entry.TitleVector, err = parseVector(r.TitleVector.String); err != nil {
		return nil, fmt.Errorf("parsing title vector: %w", err)
	}

	if len(r.LexicalTerms) > 0 {
		if err := json.Unmarshal(r.LexicalTerms, &entry.LexicalTerms); err != nil {
			return nil, fmt.Errorf("unmarshaling lexical terms: %w", err)
		}
	}

	return entry, nil
}

const selectColumns = `
	SELECT source_id, source_type, language_id, scope_id,
	       title, content, url,
	       content_vector, title_vector, lexical_terms,
	       content_hash, boost_factor, created_at, updated_at
	FROM index_entries
`

// Upsert inserts or replaces the entry for its key. The lexical term
// map is recomputed from the entry's title and content before writing.
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
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (source_id, source_type, language_id) DO UPDATE SET
			scope_id = EXCLUDED.scope_id,
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			url = EXCLUDED.url,
			content_vector = EXCLUDED.content_vector,
			title_vector = EXCLUDED.title_vector,
			lexical_terms = EXCLUDED.lexical_terms,
			content_hash = EXCLUDED.content_hash,
			boost_factor = EXCLUDED.boost_factor,
			updated_at = EXCLUDED.updated_at
	`, entry.Key.SourceID, entry.Key.SourceType, entry.Key.LanguageID, entry.ScopeID,
		entry.Title, entry.Content, entry.URL,
		formatVector(entry.ContentVector), formatVector(entry.TitleVector),
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
	var row entryRow
	err := s.db.GetContext(ctx, &row, selectColumns+`
		WHERE source_id = $1 AND source_type = $2 AND language_id = $3
	`, key.SourceID, key.SourceType, key.LanguageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("getting index entry: %w", mapSchemaErr(err))
	}
	return row.toDomain()
}

// GetBySource retrieves the entry for a source regardless of language.
// When multiple language variants exist, the lowest language id wins.
func (s *Store) GetBySource(ctx context.Context, sourceID int64, sourceType string) (*domain.IndexEntry, error) {
	var row entryRow
	err := s.db.GetContext(ctx, &row, selectColumns+`
		WHERE source_id = $1 AND source_type = $2
		ORDER BY language_id
		LIMIT 1
	`, sourceID, sourceType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("getting index entry by source: %w", mapSchemaErr(err))
	}
	return row.toDomain()
}

// Remove deletes all language variants of a source.
func (s *Store) Remove(ctx context.Context, sourceID int64, sourceType string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM index_entries WHERE source_id = $1 AND source_type = $2
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
	query := selectColumns
	var args []any
	if scopeID != 0 {
		query += " WHERE scope_id = $1"
		args = append(args, scopeID)
	}
	query += " ORDER BY source_type, source_id, language_id"

	var rows []entryRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("listing index entries: %w", mapSchemaErr(err))
	}

	entries := make([]*domain.IndexEntry, 0, len(rows))
	for i := range rows {
		entry, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
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
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, tel.ID, tel.QueryText, formatVector(tel.QueryVector),
		tel.ScopeID, tel.ResultCount, tel.Duration.Milliseconds(), createdAt)
	if err != nil {
		return fmt.Errorf("recording query: %w", mapSchemaErr(err))
	}
	return nil
}

// mapSchemaErr translates an undefined-table error so callers can tell
// an unmigrated database from a real failure.
func mapSchemaErr(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == undefinedTable {
		return domain.ErrSchemaMissing
	}
	return err
}

// formatVector renders a float32 slice in pgvector text format.
func formatVector(vec []float32) sql.NullString {
	if len(vec) == 0 {
		return sql.NullString{}
	}
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range vec {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
	}
	b.WriteByte(']')
	return sql.NullString{String: b.String(), Valid: true}
}

// parseVector parses pgvector text format back to a float32 slice.
func parseVector(s string) ([]float32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	vec := make([]float32, len(parts))
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
		if err != nil {
			return nil, fmt.Errorf("invalid vector component %q: %w", part, err)
		}
		vec[i] = float32(f)
	}
	return vec, nil
}
