package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/lexica/internal/core/domain"
	"github.com/custodia-labs/lexica/internal/lexical"
)

// --- Mock implementations ---

// mockStore is an in-memory IndexStore. Like the real backends it
// recomputes the lexical term map on every upsert.
type mockStore struct {
	mu        sync.Mutex
	entries   map[domain.EntryKey]*domain.IndexEntry
	telemetry []*domain.QueryTelemetry
	upsertErr error
}

func newMockStore() *mockStore {
	return &mockStore{entries: make(map[domain.EntryKey]*domain.IndexEntry)}
}

func (m *mockStore) EnsureSchema(_ context.Context) error { return nil }

func (m *mockStore) Upsert(_ context.Context, entry *domain.IndexEntry) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	entry.LexicalTerms = lexical.Terms(entry.Title, entry.Content)
	now := time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now

	stored := *entry
	m.entries[entry.Key] = &stored
	return nil
}

func (m *mockStore) Get(_ context.Context, key domain.EntryKey) (*domain.IndexEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *entry
	return &copied, nil
}

func (m *mockStore) GetBySource(_ context.Context, sourceID int64, sourceType string) (*domain.IndexEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var best *domain.IndexEntry
	for key, entry := range m.entries {
		if key.SourceID != sourceID || key.SourceType != sourceType {
			continue
		}
		if best == nil || key.LanguageID < best.Key.LanguageID {
			best = entry
		}
	}
	if best == nil {
		return nil, domain.ErrNotFound
	}
	copied := *best
	return &copied, nil
}

func (m *mockStore) Remove(_ context.Context, sourceID int64, sourceType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key := range m.entries {
		if key.SourceID == sourceID && key.SourceType == sourceType {
			delete(m.entries, key)
		}
	}
	return nil
}

func (m *mockStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[domain.EntryKey]*domain.IndexEntry)
	return nil
}

func (m *mockStore) List(_ context.Context, scopeID int64) ([]*domain.IndexEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var entries []*domain.IndexEntry
	for _, entry := range m.entries {
		if scopeID != 0 && entry.ScopeID != scopeID {
			continue
		}
		copied := *entry
		entries = append(entries, &copied)
	}
	sort.Slice(entries, func(i, j int) bool {
		return lessByKey(entries[i].Key, entries[j].Key)
	})
	return entries, nil
}

func (m *mockStore) RecordQuery(_ context.Context, tel *domain.QueryTelemetry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.telemetry = append(m.telemetry, tel)
	return nil
}

func (m *mockStore) Close() error { return nil }

func (m *mockStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// mockEmbedder returns canned vectors per exact input text. Unknown
// texts get fallback; texts in failOn error out.
type mockEmbedder struct {
	mu       sync.Mutex
	vectors  map[string][]float32
	fallback []float32
	failOn   map[string]bool
	err      error
	calls    int
}

func newMockEmbedder() *mockEmbedder {
	return &mockEmbedder{
		vectors:  make(map[string][]float32),
		fallback: []float32{1, 0},
		failOn:   make(map[string]bool),
	}
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if m.err != nil {
		return nil, m.err
	}
	if m.failOn[text] {
		return nil, domain.ErrEmbeddingFailed
	}
	if vec, ok := m.vectors[text]; ok {
		return vec, nil
	}
	return m.fallback, nil
}

func (m *mockEmbedder) Dimensions() int { return 2 }
func (m *mockEmbedder) ModelName() string { return "mock-model" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error { return nil }

func (m *mockEmbedder) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockSources is a fixed in-memory SourceRepository.
type mockSources struct {
	docs    []*domain.SourceDocument
	listErr error
}

func (m *mockSources) GetDocument(_ context.Context, id int64) (*domain.SourceDocument, error) {
	for _, doc := range m.docs {
		if doc.ID == id {
			return doc, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockSources) ListDocuments(_ context.Context, scopeID int64) ([]*domain.SourceDocument, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	if scopeID == 0 {
		return m.docs, nil
	}
	var docs []*domain.SourceDocument
	for _, doc := range m.docs {
		if doc.ScopeID == scopeID {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}
