package driving

import (
	"context"

	"github.com/custodia-labs/docmind/internal/core/domain"
)

// DocumentService lists ingested documents and their chunks.
type DocumentService interface {
	// List describes every indexed document.
	List(ctx context.Context) ([]domain.DocumentSummary, error)

	// GetChunks returns the chunks a document was indexed from.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)
}
