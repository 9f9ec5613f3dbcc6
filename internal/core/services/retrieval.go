package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driven"
	"github.com/custodia-labs/docmind/internal/logger"
)

// RetrievalEngine finds the chunks of a document most relevant to a query.
type RetrievalEngine struct {
	registry *IndexRegistry
	embedder driven.EmbeddingService
	defaultK int
}

// NewRetrievalEngine creates a retrieval engine.
// A non-positive defaultK uses domain.DefaultTopK.
func NewRetrievalEngine(registry *IndexRegistry, embedder driven.EmbeddingService, defaultK int) *RetrievalEngine {
	if defaultK <= 0 {
		defaultK = domain.DefaultTopK
	}
	return &RetrievalEngine{
		registry: registry,
		embedder: embedder,
		defaultK: defaultK,
	}
}

// Retrieve returns the k most similar chunks in rank order.
// A non-positive k uses the engine default.
func (e *RetrievalEngine) Retrieve(ctx context.Context, documentID, query string, k int) ([]domain.Chunk, error) {
	scored, err := e.RetrieveScored(ctx, documentID, query, k)
	if err != nil {
		return nil, err
	}
	chunks := make([]domain.Chunk, len(scored))
	for i, s := range scored {
		chunks[i] = s.Chunk
	}
	return chunks, nil
}

// RetrieveScored is Retrieve with similarity scores.
func (e *RetrievalEngine) RetrieveScored(
	ctx context.Context, documentID, query string, k int,
) ([]domain.ScoredChunk, error) {
	if k <= 0 {
		k = e.defaultK
	}

	handle, err := e.registry.Resolve(ctx, documentID)
	if err != nil {
		return nil, err
	}

	if e.embedder == nil {
		return nil, fmt.Errorf("embed query: %w: no embedding service configured", domain.ErrEmbeddingBackend)
	}
	start := time.Now()
	vector, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", asEmbeddingError(err))
	}
	logger.Timing("embed query", start)

	results, err := handle.Search(vector, k)
	if err != nil {
		return nil, fmt.Errorf("search index %q: %w", documentID, err)
	}

	logger.Debug("Retrieved %d of %d chunks from %q", len(results), handle.Len(), documentID)
	for i, r := range results {
		logger.Debug("  [%d] position=%d score=%.4f", i+1, r.Position, r.Score)
	}
	return results, nil
}
