package driven

import (
	"context"

	"github.com/custodia-labs/docmind/internal/core/domain"
)

// IndexStore persists one vector index snapshot per document.
// Saving a snapshot replaces whatever was stored for that document.
type IndexStore interface {
	// Exists reports whether a snapshot is stored for the document.
	Exists(ctx context.Context, documentID string) (bool, error)

	// Save stores or replaces the snapshot for its document.
	Save(ctx context.Context, snapshot *domain.IndexSnapshot) error

	// Load reads the snapshot for a document.
	// Returns domain.ErrIndexNotFound when nothing is stored and
	// domain.ErrCorruptIndex when stored data cannot be decoded.
	Load(ctx context.Context, documentID string) (*domain.IndexSnapshot, error)

	// List describes every stored index, ordered by document ID.
	List(ctx context.Context) ([]domain.DocumentSummary, error)

	// Delete removes a document's snapshot. Deleting a missing snapshot is not an error.
	Delete(ctx context.Context, documentID string) error
}

// ChunkStore persists the chunks a document was indexed from.
// It is the source for rebuilding an index whose snapshot is unreadable.
type ChunkStore interface {
	// SaveChunks replaces all chunks of a document. An empty slice clears them.
	SaveChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error

	// GetChunks returns a document's chunks in position order.
	// Returns domain.ErrNotFound when the document has none.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)
}

// GraphStore persists the mind map of each document.
type GraphStore interface {
	// SaveGraph stores or replaces the graph for its document.
	SaveGraph(ctx context.Context, graph *domain.Graph) error

	// GetGraph returns the stored graph for a document.
	// Returns domain.ErrNotFound when no graph exists.
	GetGraph(ctx context.Context, documentID string) (*domain.Graph, error)
}
