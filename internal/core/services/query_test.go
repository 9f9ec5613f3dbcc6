package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmind/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driven"
)

func newTestQueryService(embedder *mockEmbeddingService, llm *mockLLMService) (*QueryService, *IndexRegistry) {
	registry := NewIndexRegistry(embedder, memory.NewIndexStore(), memory.NewChunkStore())
	retrieval := NewRetrievalEngine(registry, embedder, 0)
	var svc driven.LLMService
	if llm != nil {
		svc = llm
	}
	return NewQueryService(retrieval, NewAnswerSynthesizer(svc, driven.GenerateOptions{}), 2), registry
}

func TestQueryService_NotIngested(t *testing.T) {
	embedder := axisEmbedder()
	llm := &mockLLMService{answer: "anything"}
	svc, _ := newTestQueryService(embedder, llm)

	_, err := svc.AnswerQuery(context.Background(), "missing", "what?")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrIndexNotFound)
	assert.Contains(t, err.Error(), "ingest it first")
	assert.Zero(t, llm.calls())
	embed, _ := embedder.calls()
	assert.Zero(t, embed)
}

func TestQueryService_AnswerQuery(t *testing.T) {
	embedder := axisEmbedder()
	llm := &mockLLMService{answer: "Cats are felines."}
	svc, registry := newTestQueryService(embedder, llm)
	_, err := registry.Build(context.Background(), "pets",
		domain.NewChunks("pets", []string{"dogs", "cats", "weather", "kittens"}))
	require.NoError(t, err)

	result, err := svc.AnswerQuery(context.Background(), "pets", "  feline?  ")

	require.NoError(t, err)
	assert.Equal(t, "Cats are felines.", result.Answer)
	require.Len(t, result.Sources, 2)
	assert.Equal(t, "cats", result.Sources[0].Text)
	assert.Equal(t, "kittens", result.Sources[1].Text)
	assert.Contains(t, llm.prompts[0], "cats\n\nkittens")
	assert.Contains(t, llm.prompts[0], "Question: feline?")
}

func TestQueryService_LoadsPersistedIndex(t *testing.T) {
	embedder := axisEmbedder()
	store := memory.NewIndexStore()
	ctx := context.Background()
	_, err := NewIndexRegistry(embedder, store, nil).Build(ctx, "pets", domain.NewChunks("pets", []string{"cats", "dogs"}))
	require.NoError(t, err)

	fresh := NewIndexRegistry(embedder, store, nil)
	llm := &mockLLMService{answer: "yes"}
	svc := NewQueryService(NewRetrievalEngine(fresh, embedder, 3),
		NewAnswerSynthesizer(llm, driven.GenerateOptions{}), 3)

	result, err := svc.AnswerQuery(ctx, "pets", "cats")

	require.NoError(t, err)
	assert.Len(t, result.Sources, 2)
}

func TestQueryService_GenerationUnavailable(t *testing.T) {
	embedder := axisEmbedder()
	llm := &mockLLMService{err: fmt.Errorf("%w: connection refused", domain.ErrGenerationUnavailable)}
	svc, registry := newTestQueryService(embedder, llm)
	_, err := registry.Build(context.Background(), "pets", domain.NewChunks("pets", []string{"cats"}))
	require.NoError(t, err)

	_, err = svc.AnswerQuery(context.Background(), "pets", "cats")

	assert.ErrorIs(t, err, domain.ErrGenerationUnavailable)
	assert.Contains(t, err.Error(), "start the model server")
}

func TestQueryService_NoLLMConfigured(t *testing.T) {
	embedder := axisEmbedder()
	svc, registry := newTestQueryService(embedder, nil)
	_, err := registry.Build(context.Background(), "pets", domain.NewChunks("pets", []string{"cats"}))
	require.NoError(t, err)

	_, err = svc.AnswerQuery(context.Background(), "pets", "cats")

	assert.ErrorIs(t, err, domain.ErrGenerationUnavailable)
}

func TestQueryService_EmbeddingFailure(t *testing.T) {
	embedder := axisEmbedder()
	llm := &mockLLMService{answer: "x"}
	svc, registry := newTestQueryService(embedder, llm)
	_, err := registry.Build(context.Background(), "pets", domain.NewChunks("pets", []string{"cats"}))
	require.NoError(t, err)

	embedder.embedErr = assert.AnError
	_, err = svc.AnswerQuery(context.Background(), "pets", "cats")

	assert.ErrorIs(t, err, domain.ErrEmbeddingBackend)
	assert.Zero(t, llm.calls())
}

func TestQueryService_EmptyQuery(t *testing.T) {
	svc, _ := newTestQueryService(axisEmbedder(), &mockLLMService{})

	_, err := svc.AnswerQuery(context.Background(), "pets", "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Retrieve(context.Background(), "pets", "", 3)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestQueryService_Retrieve(t *testing.T) {
	embedder := axisEmbedder()
	svc, registry := newTestQueryService(embedder, &mockLLMService{})
	_, err := registry.Build(context.Background(), "pets",
		domain.NewChunks("pets", []string{"dogs", "cats", "puppies"}))
	require.NoError(t, err)

	results, err := svc.Retrieve(context.Background(), "pets", "dogs", 5)

	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "dogs", results[0].Text)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)

	defaults, err := svc.Retrieve(context.Background(), "pets", "dogs", 0)
	require.NoError(t, err)
	assert.Len(t, defaults, domain.DefaultTopK)
}
