package driven

import (
	"context"

	"github.com/custodia-labs/lexica/internal/core/domain"
)

// SourceRepository exposes the host collaborator's documents. The core
// never touches the host's raw storage; it only consumes assembled
// SourceDocument snapshots.
type SourceRepository interface {
	// GetDocument returns one document. Returns domain.ErrNotFound if
	// the id is unknown or the document is not eligible for indexing.
	GetDocument(ctx context.Context, id int64) (*domain.SourceDocument, error)

	// ListDocuments returns the eligible documents under a scope.
	// scopeID 0 lists every scope.
	ListDocuments(ctx context.Context, scopeID int64) ([]*domain.SourceDocument, error)
}
