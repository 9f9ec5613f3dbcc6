package driving

import (
	"context"

	"github.com/custodia-labs/docmind/internal/core/domain"
)

// QueryService answers questions about ingested documents.
type QueryService interface {
	// AnswerQuery retrieves context for the query from the document's index
	// and generates an answer from it.
	AnswerQuery(ctx context.Context, documentID, query string) (*domain.QueryResult, error)

	// Retrieve returns the k chunks most similar to the query, with scores,
	// without generating an answer.
	Retrieve(ctx context.Context, documentID, query string, k int) ([]domain.ScoredChunk, error)
}
