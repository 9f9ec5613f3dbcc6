package driving

import (
	"context"

	"github.com/custodia-labs/docmind/internal/core/domain"
)

// IngestService indexes documents and serves their mind maps.
type IngestService interface {
	// Ingest fully rebuilds the index of a document from its chunks and
	// returns the freshly built similarity graph.
	// Returns domain.ErrEmptyInput when chunks is empty.
	Ingest(ctx context.Context, documentID string, chunks []domain.Chunk) (*domain.Graph, error)

	// IngestFile extracts, chunks and ingests a file. The document ID is the
	// file name without its extension.
	IngestFile(ctx context.Context, path string) (*IngestResult, error)

	// IngestText chunks plain text and ingests it under documentID.
	IngestText(ctx context.Context, documentID, text string) (*IngestResult, error)

	// GetGraph returns the stored graph of a document.
	// Returns domain.ErrNotFound when the document was never ingested.
	GetGraph(ctx context.Context, documentID string) (*domain.Graph, error)
}

// IngestResult describes a completed file ingest.
type IngestResult struct {
	// DocumentID is the identifier the document was indexed under.
	DocumentID string

	// ChunkCount is the number of indexed chunks.
	ChunkCount int

	// Graph is the document's similarity graph.
	Graph *domain.Graph
}
