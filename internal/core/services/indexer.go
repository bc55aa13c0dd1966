package services

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/custodia-labs/lexica/internal/core/domain"
	"github.com/custodia-labs/lexica/internal/core/ports/driven"
	"github.com/custodia-labs/lexica/internal/core/ports/driving"
	"github.com/custodia-labs/lexica/internal/logger"
	"github.com/custodia-labs/lexica/internal/textproc"
)

// Ensure IndexerService implements the interface.
var _ driving.Indexer = (*IndexerService)(nil)

// defaultWorkers bounds concurrent in-flight provider calls during
// batch indexing.
const defaultWorkers = 4

// IndexerService maintains the search index: it normalises documents,
// embeds them, derives boost factors and writes entries to the store.
type IndexerService struct {
	store    driven.IndexStore
	embedder driven.EmbeddingService
	sources  driven.SourceRepository
	workers  int
}

// NewIndexerService creates a new indexer service. workers bounds the
// parallelism of batch runs; values below 1 use a default.
func NewIndexerService(
	store driven.IndexStore,
	embedder driven.EmbeddingService,
	sources driven.SourceRepository,
	workers int,
) *IndexerService {
	if workers < 1 {
		workers = defaultWorkers
	}
	return &IndexerService{
		store:    store,
		embedder: embedder,
		sources:  sources,
		workers:  workers,
	}
}

// IndexDocument indexes one document end to end.
//
// All embedding calls complete before any store mutation begins, so
// the upsert itself is a fast atomic step.
func (s *IndexerService) IndexDocument(ctx context.Context, doc *domain.SourceDocument, force bool) (domain.DocumentResult, error) {
	if doc == nil {
		err := fmt.Errorf("%w: nil document", domain.ErrInvalidInput)
		return domain.DocumentResult{Err: err}, err
	}

	res := domain.DocumentResult{DocumentID: doc.ID, SourceType: doc.SourceType}
	key := domain.EntryKey{SourceID: doc.ID, SourceType: doc.SourceType, LanguageID: doc.LanguageID}

	content := textproc.Normalize(doc.Title + " " + strings.Join(doc.BodyText, " "))
	hash := contentHash(content, doc.Title)

	existing, err := s.store.Get(ctx, key)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		res.Err = err
		return res, err
	}

	if existing != nil && !force && existing.ContentHash == hash {
		logger.Debug("Document %d (%s) unchanged, skipping", doc.ID, doc.SourceType)
		res.Skipped = true
		return res, nil
	}

	titleVector, err := s.embedder.Embed(ctx, doc.Title)
	if err != nil {
		res.Err = fmt.Errorf("embedding title: %w", err)
		return res, res.Err
	}

	contentVector, err := s.embedder.Embed(ctx, content)
	if err != nil {
		res.Err = fmt.Errorf("embedding content: %w", err)
		return res, res.Err
	}

	entry := &domain.IndexEntry{
		Key:           key,
		ScopeID:       doc.ScopeID,
		Title:         doc.Title,
		Content:       content,
		URL:           doc.URL,
		ContentVector: contentVector,
		TitleVector:   titleVector,
		ContentHash:   hash,
		BoostFactor:   boostFactor(doc, content),
	}
	if existing != nil {
		entry.CreatedAt = existing.CreatedAt
	}

	if err := s.store.Upsert(ctx, entry); err != nil {
		res.Err = fmt.Errorf("upserting entry: %w", err)
		return res, res.Err
	}

	logger.Debug("Indexed document %d (%s), boost %.2f", doc.ID, doc.SourceType, entry.BoostFactor)
	return res, nil
}

// IndexAll indexes every eligible document under the given scope.
// Documents are processed by a bounded worker pool; one failure never
// aborts the batch. Cancelling ctx stops remaining documents while
// already-committed upserts stay valid.
func (s *IndexerService) IndexAll(ctx context.Context, opts driving.IndexOptions) (*domain.IndexReport, error) {
	logger.Section("Batch Indexing")

	docs, err := s.sources.ListDocuments(ctx, opts.ScopeID)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	logger.Info("Indexing %d documents with %d workers", len(docs), s.workers)

	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return nil, fmt.Errorf("creating worker pool: %w", err)
	}
	defer pool.Release()

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		report domain.IndexReport
	)

	for _, doc := range docs {
		doc := doc
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()

			// Stop picking up new work once the run is cancelled.
			if ctx.Err() != nil {
				return
			}

			res, err := s.IndexDocument(ctx, doc, opts.Force)
			if err != nil {
				logger.Warn("Indexing document %d (%s) failed: %v", doc.ID, doc.SourceType, err)
			}

			mu.Lock()
			report.Add(res)
			mu.Unlock()
		}); err != nil {
			wg.Done()
			return nil, fmt.Errorf("submitting document %d: %w", doc.ID, err)
		}
	}

	wg.Wait()

	logger.Info("Batch done: %d indexed, %d skipped, %d failed",
		report.Indexed, report.Skipped, report.Failed)
	return &report, nil
}

// RemoveDocument deletes the index entries for a document.
func (s *IndexerService) RemoveDocument(ctx context.Context, sourceID int64, sourceType string) error {
	logger.Debug("Removing document %d (%s) from index", sourceID, sourceType)
	return s.store.Remove(ctx, sourceID, sourceType)
}

// ClearAll irreversibly empties the index.
func (s *IndexerService) ClearAll(ctx context.Context) error {
	logger.Debug("Clearing index")
	return s.store.Clear(ctx)
}

// contentHash fingerprints an entry's text. MD5 is fine here; the hash
// is a change marker, not a security boundary.
func contentHash(content, title string) string {
	sum := md5.Sum([]byte(content + title))
	return hex.EncodeToString(sum[:])
}

// importantKeywords in a title raise the boost factor.
var importantKeywords = []string{"important", "featured", "main", "home"}

// boostFactor derives the relevance multiplier from document metadata.
// Multiplicative: record class, hierarchy depth, content length, title
// keywords and navigational flags each contribute a factor.
func boostFactor(doc *domain.SourceDocument, content string) float64 {
	boost := 1.0

	switch doc.Boost.Class {
	case domain.ClassShortcut:
		boost = 0.5
	case domain.ClassSeparator:
		boost = 0.1
	}

	// Depth 0 means the host did not supply a hierarchy level.
	if depth := doc.Boost.Depth; depth >= 1 {
		if depth <= 2 {
			boost *= 1.5
		} else if depth <= 4 {
			boost *= 1.2
		}
	}

	if length := len(content); length > 5000 {
		boost *= 1.3
	} else if length < 500 {
		boost *= 0.8
	}

	title := strings.ToLower(doc.Title)
	for _, keyword := range importantKeywords {
		if strings.Contains(title, keyword) {
			boost *= 1.2
			break
		}
	}

	if doc.Boost.HiddenInNav {
		boost *= 0.7
	}
	if doc.Boost.NoSearch {
		boost *= 0.3
	}

	return math.Round(boost*100) / 100
}
