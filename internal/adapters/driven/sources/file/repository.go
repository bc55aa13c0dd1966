// Package file provides a SourceRepository backed by a directory of
// JSON document files, one document per file. It stands in for a host
// CMS in local setups and tests.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/lexica/internal/core/domain"
)

// documentFile is the on-disk JSON shape of one document.
type documentFile struct {
	ID          int64    `json:"id"`
	SourceType  string   `json:"source_type"`
	ScopeID     int64    `json:"scope_id"`
	LanguageID  int      `json:"language_id"`
	Title       string   `json:"title"`
	BodyText    []string `json:"body_text"`
	URL         string   `json:"url"`
	Class       string   `json:"class"`
	Depth       int      `json:"depth"`
	HiddenInNav bool     `json:"hidden_in_nav"`
	NoSearch    bool     `json:"no_search"`
}

func (d *documentFile) toDomain() (*domain.SourceDocument, error) {
	class := domain.ClassStandard
	switch d.Class {
	case "", "standard":
	case "shortcut":
		class = domain.ClassShortcut
	case "separator":
		class = domain.ClassSeparator
	default:
		return nil, fmt.Errorf("%w: unknown document class %q", domain.ErrInvalidInput, d.Class)
	}

	sourceType := d.SourceType
	if sourceType == "" {
		sourceType = "pages"
	}

	return &domain.SourceDocument{
		ID:         d.ID,
		SourceType: sourceType,
		ScopeID:    d.ScopeID,
		LanguageID: d.LanguageID,
		Title:      d.Title,
		BodyText:   d.BodyText,
		URL:        d.URL,
		Boost: domain.BoostHint{
			Class:       class,
			Depth:       d.Depth,
			HiddenInNav: d.HiddenInNav,
			NoSearch:    d.NoSearch,
		},
	}, nil
}

// Repository reads documents from a directory of JSON files. The
// directory is rescanned on every call so external edits are picked up
// without restarting.
type Repository struct {
	dir string
}

// NewRepository creates a repository over the given directory.
func NewRepository(dir string) (*Repository, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("opening source directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source path %s is not a directory", dir)
	}
	return &Repository{dir: dir}, nil
}

// GetDocument returns the document with the given id.
func (r *Repository) GetDocument(ctx context.Context, id int64) (*domain.SourceDocument, error) {
	docs, err := r.scan(ctx)
	if err != nil {
		return nil, err
	}
	for _, doc := range docs {
		if doc.ID == id {
			return doc, nil
		}
	}
	return nil, fmt.Errorf("document %d: %w", id, domain.ErrNotFound)
}

// ListDocuments returns all documents under a scope. scopeID 0 lists
// every scope.
func (r *Repository) ListDocuments(ctx context.Context, scopeID int64) ([]*domain.SourceDocument, error) {
	docs, err := r.scan(ctx)
	if err != nil {
		return nil, err
	}
	if scopeID == 0 {
		return docs, nil
	}

	filtered := make([]*domain.SourceDocument, 0, len(docs))
	for _, doc := range docs {
		if doc.ScopeID == scopeID {
			filtered = append(filtered, doc)
		}
	}
	return filtered, nil
}

func (r *Repository) scan(ctx context.Context) ([]*domain.SourceDocument, error) {
	var docs []*domain.SourceDocument

	err := filepath.WalkDir(r.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		var df documentFile
		if err := json.Unmarshal(data, &df); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}

		doc, err := df.toDomain()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return docs, nil
}
