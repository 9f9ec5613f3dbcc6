package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmind/internal/core/domain"
)

func testSnapshot(id string) *domain.IndexSnapshot {
	return &domain.IndexSnapshot{
		DocumentID: id,
		Model:      "test-model",
		Dimensions: 2,
		Chunks:     domain.NewChunks(id, []string{"one", "two"}),
		Vectors:    [][]float32{{1, 0}, {0, 1}},
		BuiltAt:    time.Now(),
	}
}

func TestIndexStore_SaveLoad(t *testing.T) {
	store := NewIndexStore()
	ctx := context.Background()

	exists, err := store.Exists(ctx, "doc")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = store.Load(ctx, "doc")
	assert.ErrorIs(t, err, domain.ErrIndexNotFound)

	snap := testSnapshot("doc")
	require.NoError(t, store.Save(ctx, snap))

	exists, err = store.Exists(ctx, "doc")
	require.NoError(t, err)
	assert.True(t, exists)

	loaded, err := store.Load(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, snap.Chunks, loaded.Chunks)
	assert.Equal(t, snap.Vectors, loaded.Vectors)
}

func TestIndexStore_SaveIsolatesCallerSlices(t *testing.T) {
	store := NewIndexStore()
	ctx := context.Background()

	snap := testSnapshot("doc")
	require.NoError(t, store.Save(ctx, snap))
	snap.Vectors[0][0] = 42
	snap.Chunks[0].Text = "changed"

	loaded, err := store.Load(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, float32(1), loaded.Vectors[0][0])
	assert.Equal(t, "one", loaded.Chunks[0].Text)
}

func TestIndexStore_SaveReplaces(t *testing.T) {
	store := NewIndexStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testSnapshot("doc")))
	replacement := testSnapshot("doc")
	replacement.Chunks = replacement.Chunks[:1]
	replacement.Vectors = replacement.Vectors[:1]
	require.NoError(t, store.Save(ctx, replacement))

	loaded, err := store.Load(ctx, "doc")
	require.NoError(t, err)
	assert.Len(t, loaded.Chunks, 1)
}

func TestIndexStore_Delete(t *testing.T) {
	store := NewIndexStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testSnapshot("doc")))
	require.NoError(t, store.Delete(ctx, "doc"))
	require.NoError(t, store.Delete(ctx, "missing"))

	_, err := store.Load(ctx, "doc")
	assert.ErrorIs(t, err, domain.ErrIndexNotFound)
}

func TestIndexStore_Save_Invalid(t *testing.T) {
	store := NewIndexStore()
	assert.ErrorIs(t, store.Save(context.Background(), nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, store.Save(context.Background(), &domain.IndexSnapshot{}), domain.ErrInvalidInput)
}

func TestIndexStore_List(t *testing.T) {
	store := NewIndexStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testSnapshot("b")))
	require.NoError(t, store.Save(ctx, testSnapshot("a")))

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].DocumentID)
	assert.Equal(t, "b", list[1].DocumentID)
	assert.Equal(t, 2, list[0].ChunkCount)
	assert.Equal(t, "test-model", list[0].Model)
}

func TestChunkStore(t *testing.T) {
	store := NewChunkStore()
	ctx := context.Background()

	_, err := store.GetChunks(ctx, "doc")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	chunks := domain.NewChunks("doc", []string{"a", "b"})
	require.NoError(t, store.SaveChunks(ctx, "doc", chunks))

	got, err := store.GetChunks(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, chunks, got)

	require.NoError(t, store.SaveChunks(ctx, "doc", nil))
	_, err = store.GetChunks(ctx, "doc")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGraphStore(t *testing.T) {
	store := NewGraphStore()
	ctx := context.Background()

	_, err := store.GetGraph(ctx, "doc")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	g := domain.NewGraph("doc")
	g.Nodes = append(g.Nodes, domain.GraphNode{ID: "n1", DocumentID: "doc"})
	require.NoError(t, store.SaveGraph(ctx, g))

	got, err := store.GetGraph(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, g.Nodes, got.Nodes)
	assert.Empty(t, got.Edges)

	assert.ErrorIs(t, store.SaveGraph(ctx, nil), domain.ErrInvalidInput)
}
