package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/lexica/internal/core/domain"
	"github.com/custodia-labs/lexica/internal/core/ports/driven"
	"github.com/custodia-labs/lexica/internal/core/ports/driving"
	"github.com/custodia-labs/lexica/internal/lexical"
	"github.com/custodia-labs/lexica/internal/logger"
	"github.com/custodia-labs/lexica/internal/vectormath"
)

// Ensure SearcherService implements the interface.
var _ driving.Searcher = (*SearcherService)(nil)

// Hybrid scoring weights and the semantic retention threshold.
const (
	semanticWeight    = 0.7
	lexicalWeight     = 0.3
	distanceThreshold = 0.5
)

// SearcherService answers hybrid semantic + lexical queries against
// the index. Scoring runs in the service so every store backend ranks
// identically; the store only lists candidates.
type SearcherService struct {
	store        driven.IndexStore
	embedder     driven.EmbeddingService
	defaultLimit int
}

// NewSearcherService creates a new searcher service. defaultLimit caps
// results when the query does not set one; values below 1 use 10.
func NewSearcherService(store driven.IndexStore, embedder driven.EmbeddingService, defaultLimit int) *SearcherService {
	if defaultLimit < 1 {
		defaultLimit = 10
	}
	return &SearcherService{
		store:        store,
		embedder:     embedder,
		defaultLimit: defaultLimit,
	}
}

// Search runs a hybrid query. An embedding failure fails the whole
// call; there is no lexical-only fallback.
func (s *SearcherService) Search(ctx context.Context, query domain.SearchQuery) ([]domain.SearchResult, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q, scope: %d", query.Text, query.ScopeID)

	text := strings.TrimSpace(query.Text)
	if text == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.SearchResult{}, nil
	}

	limit := query.Limit
	if limit <= 0 {
		limit = s.defaultLimit
	}

	start := time.Now()

	queryVector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	entries, err := s.store.List(ctx, query.ScopeID)
	if err != nil {
		return nil, fmt.Errorf("listing candidates: %w", err)
	}
	logger.Debug("Scoring %d candidates", len(entries))

	results := make([]domain.SearchResult, 0, len(entries))
	for _, entry := range entries {
		distance, err := vectormath.CosineDistance(queryVector, entry.ContentVector)
		if err != nil {
			// Entries embedded under a different model dimension
			// cannot be compared; reindex them.
			logger.Warn("Skipping entry %d (%s): %v", entry.Key.SourceID, entry.Key.SourceType, err)
			continue
		}

		rank := lexical.Rank(text, entry.LexicalTerms)

		if distance >= distanceThreshold && rank == 0 {
			continue
		}

		combined := (1-distance)*semanticWeight + rank*lexicalWeight

		results = append(results, domain.SearchResult{
			Entry:            *entry,
			SemanticDistance: distance,
			LexicalRank:      rank,
			CombinedScore:    combined,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].CombinedScore != results[j].CombinedScore {
			return results[i].CombinedScore > results[j].CombinedScore
		}
		return lessByKey(results[i].Entry.Key, results[j].Entry.Key)
	})

	if len(results) > limit {
		results = results[:limit]
	}

	s.recordTelemetry(ctx, text, queryVector, query.ScopeID, len(results), time.Since(start))

	logger.Info("Search returned %d results in %s", len(results), time.Since(start))
	return results, nil
}

// FindSimilar returns the entries nearest to the given source's
// content vector, self excluded, ascending by distance.
func (s *SearcherService) FindSimilar(ctx context.Context, sourceID int64, sourceType string, limit int) ([]domain.SimilarResult, error) {
	logger.Section("Similarity Scan")

	if limit <= 0 {
		limit = s.defaultLimit
	}

	ref, err := s.store.GetBySource(ctx, sourceID, sourceType)
	if err != nil {
		return nil, fmt.Errorf("loading reference entry: %w", err)
	}

	entries, err := s.store.List(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("listing candidates: %w", err)
	}

	results := make([]domain.SimilarResult, 0, len(entries))
	for _, entry := range entries {
		if entry.Key.SourceID == sourceID && entry.Key.SourceType == sourceType {
			continue
		}

		distance, err := vectormath.CosineDistance(ref.ContentVector, entry.ContentVector)
		if err != nil {
			logger.Warn("Skipping entry %d (%s): %v", entry.Key.SourceID, entry.Key.SourceType, err)
			continue
		}

		results = append(results, domain.SimilarResult{
			Entry:    *entry,
			Distance: distance,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return lessByKey(results[i].Entry.Key, results[j].Entry.Key)
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// recordTelemetry appends one analytics row. Best effort: a telemetry
// failure never fails the search.
func (s *SearcherService) recordTelemetry(ctx context.Context, text string, vector []float32, scopeID int64, resultCount int, duration time.Duration) {
	tel := &domain.QueryTelemetry{
		ID:          uuid.NewString(),
		QueryText:   text,
		QueryVector: vector,
		ScopeID:     scopeID,
		ResultCount: resultCount,
		Duration:    duration,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.RecordQuery(ctx, tel); err != nil {
		logger.Warn("Recording query telemetry failed: %v", err)
	}
}

// lessByKey is the deterministic tie-break order for equal scores.
func lessByKey(a, b domain.EntryKey) bool {
	if a.SourceType != b.SourceType {
		return a.SourceType < b.SourceType
	}
	if a.SourceID != b.SourceID {
		return a.SourceID < b.SourceID
	}
	return a.LanguageID < b.LanguageID
}
