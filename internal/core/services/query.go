package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driving"
	"github.com/custodia-labs/docmind/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// QueryService answers questions by retrieving context and synthesising
// an answer from it.
type QueryService struct {
	retrieval   *RetrievalEngine
	synthesizer *AnswerSynthesizer
	topK        int
}

// NewQueryService creates a query service.
// A non-positive topK uses domain.DefaultTopK.
func NewQueryService(retrieval *RetrievalEngine, synthesizer *AnswerSynthesizer, topK int) *QueryService {
	if topK <= 0 {
		topK = domain.DefaultTopK
	}
	return &QueryService{
		retrieval:   retrieval,
		synthesizer: synthesizer,
		topK:        topK,
	}
}

// AnswerQuery answers a question about an ingested document.
// The answer is never produced without retrieved context.
func (s *QueryService) AnswerQuery(ctx context.Context, documentID, query string) (*domain.QueryResult, error) {
	logger.Section("Query")
	logger.Debug("Document: %q, query: %q", documentID, query)

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is empty", domain.ErrInvalidInput)
	}

	chunks, err := s.retrieval.Retrieve(ctx, documentID, query, s.topK)
	if err != nil {
		return nil, describeQueryError(documentID, err)
	}
	if len(chunks) == 0 {
		return nil, domain.ErrEmptyContext
	}

	answer, err := s.synthesizer.Synthesize(ctx, query, chunks)
	if err != nil {
		return nil, describeQueryError(documentID, err)
	}

	return &domain.QueryResult{Answer: answer, Sources: chunks}, nil
}

// Retrieve returns the k chunks most similar to the query.
func (s *QueryService) Retrieve(ctx context.Context, documentID, query string, k int) ([]domain.ScoredChunk, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is empty", domain.ErrInvalidInput)
	}
	results, err := s.retrieval.RetrieveScored(ctx, documentID, query, k)
	if err != nil {
		return nil, describeQueryError(documentID, err)
	}
	return results, nil
}

// describeQueryError adds user guidance to failures callers can act on.
func describeQueryError(documentID string, err error) error {
	switch {
	case errors.Is(err, domain.ErrIndexNotFound):
		return fmt.Errorf("document %q is not indexed, ingest it first: %w", documentID, err)
	case errors.Is(err, domain.ErrGenerationUnavailable):
		return fmt.Errorf("generation backend unreachable, start the model server: %w", err)
	case errors.Is(err, domain.ErrEmbeddingBackend):
		return fmt.Errorf("embedding backend unreachable, start the embedding server: %w", err)
	default:
		return fmt.Errorf("answer query: %w", err)
	}
}
