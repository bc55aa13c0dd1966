package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexica/internal/core/domain"
	"github.com/custodia-labs/lexica/internal/core/ports/driving"
)

// --- Mock implementations ---

type mockSearcher struct {
	results []domain.SearchResult
	similar []domain.SimilarResult
	err     error
}

func (m *mockSearcher) Search(_ context.Context, _ domain.SearchQuery) ([]domain.SearchResult, error) {
	return m.results, m.err
}

func (m *mockSearcher) FindSimilar(_ context.Context, _ int64, _ string, _ int) ([]domain.SimilarResult, error) {
	return m.similar, m.err
}

type mockIndexer struct {
	report    *domain.IndexReport
	singleRes domain.DocumentResult
	err       error
}

func (m *mockIndexer) IndexDocument(_ context.Context, _ *domain.SourceDocument, _ bool) (domain.DocumentResult, error) {
	return m.singleRes, m.err
}

func (m *mockIndexer) IndexAll(_ context.Context, _ driving.IndexOptions) (*domain.IndexReport, error) {
	return m.report, m.err
}

func (m *mockIndexer) RemoveDocument(_ context.Context, _ int64, _ string) error { return m.err }
func (m *mockIndexer) ClearAll(_ context.Context) error { return m.err }

type mockCLIStore struct {
	cleared bool
	removed []int64
}

func (m *mockCLIStore) EnsureSchema(_ context.Context) error { return nil }
func (m *mockCLIStore) Upsert(_ context.Context, _ *domain.IndexEntry) error { return nil }

func (m *mockCLIStore) Get(_ context.Context, _ domain.EntryKey) (*domain.IndexEntry, error) {
	return nil, domain.ErrNotFound
}
func (m *mockCLIStore) GetBySource(_ context.Context, _ int64, _ string) (*domain.IndexEntry, error) {
	return nil, domain.ErrNotFound
}
func (m *mockCLIStore) Remove(_ context.Context, id int64, _ string) error {
	m.removed = append(m.removed, id)
	return nil
}
func (m *mockCLIStore) Clear(_ context.Context) error {
	m.cleared = true
	return nil
}
func (m *mockCLIStore) List(_ context.Context, _ int64) ([]*domain.IndexEntry, error) {
	return nil, nil
}
func (m *mockCLIStore) RecordQuery(_ context.Context, _ *domain.QueryTelemetry) error { return nil }
func (m *mockCLIStore) Close() error { return nil }


// setupTestServices wires mocks into the package globals and marks
// the app initialized so PersistentPreRunE skips real wiring.
func setupTestServices(t *testing.T) (*mockSearcher, *mockIndexer, *mockCLIStore, func()) {
	t.Helper()

	oldSearcher, oldIndexer, oldStore := searcher, indexer, store
	oldInitialized := initialized

	s := &mockSearcher{}
	i := &mockIndexer{report: &domain.IndexReport{}}
	st := &mockCLIStore{}

	searcher, indexer, store = s, i, st
	initialized = true

	cleanup := func() {
		searcher, indexer, store = oldSearcher, oldIndexer, oldStore
		initialized = oldInitialized
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}
	return s, i, st, cleanup
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestVersionCmd(t *testing.T) {
	_, _, _, cleanup := setupTestServices(t)
	defer cleanup()

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "lexica version")
}

func TestSearchCmdTableOutput(t *testing.T) {
	s, _, _, cleanup := setupTestServices(t)
	defer cleanup()

	s.results = []domain.SearchResult{
		{
			Entry: domain.IndexEntry{
				Key:   domain.EntryKey{SourceID: 1, SourceType: "pages"},
				Title: "Home",
				URL:   "/",
			},
			SemanticDistance: 0.1,
			LexicalRank:      0.5,
			CombinedScore:    0.78,
		},
	}

	out, err := execute(t, "search", "welcome")
	require.NoError(t, err)
	assert.Contains(t, out, "Results:")
	assert.Contains(t, out, "Home")
	assert.Contains(t, out, "0.780")
}

func TestSearchCmdJSONOutput(t *testing.T) {
	s, _, _, cleanup := setupTestServices(t)
	defer cleanup()
	defer func() { searchJSON = false }()

	s.results = []domain.SearchResult{
		{
			Entry: domain.IndexEntry{
				Key:   domain.EntryKey{SourceID: 1, SourceType: "pages"},
				Title: "Home",
			},
			CombinedScore: 0.78,
		},
	}

	out, err := execute(t, "search", "--json", "welcome")
	require.NoError(t, err)
	assert.Contains(t, out, `"source_id"`)
	assert.Contains(t, out, `"combined_score"`)
}

func TestSearchCmdNoResults(t *testing.T) {
	_, _, _, cleanup := setupTestServices(t)
	defer cleanup()

	out, err := execute(t, "search", "nothing")
	require.NoError(t, err)
	assert.Contains(t, out, "No results found.")
}

func TestSearchCmdNotConfigured(t *testing.T) {
	_, _, _, cleanup := setupTestServices(t)
	defer cleanup()
	searcher = nil

	_, err := execute(t, "search", "welcome")
	assert.ErrorContains(t, err, "not configured")
}

func TestSimilarCmd(t *testing.T) {
	s, _, _, cleanup := setupTestServices(t)
	defer cleanup()

	s.similar = []domain.SimilarResult{
		{
			Entry: domain.IndexEntry{
				Key:   domain.EntryKey{SourceID: 2, SourceType: "pages"},
				Title: "About",
			},
			Distance: 0.2,
		},
	}

	out, err := execute(t, "similar", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "About")
	assert.Contains(t, out, "0.200")
}

func TestSimilarCmdInvalidID(t *testing.T) {
	_, _, _, cleanup := setupTestServices(t)
	defer cleanup()

	_, err := execute(t, "similar", "abc")
	assert.ErrorContains(t, err, "invalid document id")
}

func TestRemoveCmd(t *testing.T) {
	_, _, st, cleanup := setupTestServices(t)
	defer cleanup()

	out, err := execute(t, "remove", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "removed from index")
	assert.Equal(t, []int64{7}, st.removed)
}

func TestClearCmdWithYes(t *testing.T) {
	_, _, st, cleanup := setupTestServices(t)
	defer cleanup()
	defer func() { clearYes = false }()

	out, err := execute(t, "clear", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Index cleared.")
	assert.True(t, st.cleared)
}

func TestIndexCmdWithoutSource(t *testing.T) {
	_, _, _, cleanup := setupTestServices(t)
	defer cleanup()
	sourceRepo = nil

	_, err := execute(t, "index")
	assert.ErrorContains(t, err, "no document source configured")
}

func TestIndexCmdBatchReport(t *testing.T) {
	_, i, _, cleanup := setupTestServices(t)
	defer cleanup()

	report := &domain.IndexReport{}
	report.Add(domain.DocumentResult{DocumentID: 1, SourceType: "pages"})
	report.Add(domain.DocumentResult{DocumentID: 2, SourceType: "pages", Skipped: true})
	i.report = report

	oldRepo := sourceRepo
	sourceRepo = &stubSources{}
	defer func() { sourceRepo = oldRepo }()

	out, err := execute(t, "index")
	require.NoError(t, err)
	assert.Contains(t, out, "Indexed 1, skipped 1, failed 0.")
}

// stubSources satisfies the nil-check in runIndex.
type stubSources struct{}

func (s *stubSources) GetDocument(_ context.Context, id int64) (*domain.SourceDocument, error) {
	return &domain.SourceDocument{ID: id, SourceType: "pages"}, nil
}

func (s *stubSources) ListDocuments(_ context.Context, _ int64) ([]*domain.SourceDocument, error) {
	return nil, nil
}
