package services

import (
	"context"

	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driven"
	"github.com/custodia-labs/docmind/internal/core/ports/driving"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService lists ingested documents.
type DocumentService struct {
	indexStore driven.IndexStore
	chunkStore driven.ChunkStore
}

// NewDocumentService creates a new document service.
func NewDocumentService(indexStore driven.IndexStore, chunkStore driven.ChunkStore) *DocumentService {
	return &DocumentService{
		indexStore: indexStore,
		chunkStore: chunkStore,
	}
}

// List describes every indexed document.
func (s *DocumentService) List(ctx context.Context) ([]domain.DocumentSummary, error) {
	if s.indexStore == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.indexStore.List(ctx)
}

// GetChunks returns the chunks a document was indexed from.
func (s *DocumentService) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	if s.chunkStore == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.chunkStore.GetChunks(ctx, documentID)
}
