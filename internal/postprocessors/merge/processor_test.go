package merge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmind/internal/core/domain"
)

func TestProcessor_Name(t *testing.T) {
	assert.Equal(t, "merge", New().Name())
}

func TestProcessor_Process_PacksUpToBudget(t *testing.T) {
	doc := &domain.Document{ID: "d"}
	input := domain.NewChunks("d", []string{"aaaa", "bbbb", "cccc", "dd"})

	chunks, err := New(WithMaxLength(9)).Process(context.Background(), doc, input)
	require.NoError(t, err)

	assert.Equal(t, []string{"aaaa bbbb", "cccc dd"}, domain.ChunkTexts(chunks))
	assert.Equal(t, 0, chunks[0].Position)
	assert.Equal(t, 1, chunks[1].Position)
}

func TestProcessor_Process_OversizedChunkStaysWhole(t *testing.T) {
	doc := &domain.Document{ID: "d"}
	input := domain.NewChunks("d", []string{"short", "this one is far too long", "end"})

	chunks, err := New(WithMaxLength(10)).Process(context.Background(), doc, input)
	require.NoError(t, err)

	assert.Equal(t, []string{"short", "this one is far too long", "end"}, domain.ChunkTexts(chunks))
}

func TestProcessor_Process_Empty(t *testing.T) {
	chunks, err := New().Process(context.Background(), &domain.Document{ID: "d"}, nil)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}
