package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driven"
	"github.com/custodia-labs/docmind/internal/logger"
)

// IndexHandle is a searchable vector index over one document's chunks.
// A handle never changes after construction; rebuilding a document
// produces a new handle.
type IndexHandle struct {
	documentID string
	model      string
	dimensions int
	builtAt    time.Time
	chunks     []domain.Chunk
	unit       [][]float32
}

// newIndexHandle builds a handle from a validated snapshot.
func newIndexHandle(snapshot *domain.IndexSnapshot) *IndexHandle {
	h := &IndexHandle{
		documentID: snapshot.DocumentID,
		model:      snapshot.Model,
		dimensions: snapshot.Dimensions,
		builtAt:    snapshot.BuiltAt,
		chunks:     append([]domain.Chunk(nil), snapshot.Chunks...),
		unit:       make([][]float32, len(snapshot.Vectors)),
	}
	for i, v := range snapshot.Vectors {
		h.unit[i] = normalise(v)
	}
	return h
}

// DocumentID returns the indexed document.
func (h *IndexHandle) DocumentID() string { return h.documentID }

// Model returns the embedding model the index was built with.
func (h *IndexHandle) Model() string { return h.model }

// Dimensions returns the vector size of the index.
func (h *IndexHandle) Dimensions() int { return h.dimensions }

// BuiltAt returns when the index was built.
func (h *IndexHandle) BuiltAt() time.Time { return h.builtAt }

// Len returns the number of indexed chunks.
func (h *IndexHandle) Len() int { return len(h.chunks) }

// Chunks returns a copy of the indexed chunks in insertion order.
func (h *IndexHandle) Chunks() []domain.Chunk {
	return append([]domain.Chunk(nil), h.chunks...)
}

// Search returns the k chunks most similar to query by cosine similarity,
// best first. Equal scores keep insertion order. k larger than the index
// is clamped to the index size.
func (h *IndexHandle) Search(query []float32, k int) ([]domain.ScoredChunk, error) {
	if len(h.chunks) == 0 {
		return nil, domain.ErrEmptyIndex
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidInput, k)
	}
	if len(query) != h.dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrDimensionMismatch, len(query), h.dimensions)
	}

	q := normalise(query)
	results := make([]domain.ScoredChunk, len(h.chunks))
	for i, c := range h.chunks {
		results[i] = domain.ScoredChunk{Chunk: c, Score: dot(q, h.unit[i])}
	}
	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Score > results[b].Score
	})

	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

// IndexRegistry owns the resident index handle of every document.
//
// Builds and loads of the same document are serialised; different documents
// proceed in parallel. A handle is published only after it was embedded and
// persisted, so readers see either the previous complete index or the new one.
type IndexRegistry struct {
	embedder   driven.EmbeddingService
	indexStore driven.IndexStore
	chunkStore driven.ChunkStore

	mu      sync.RWMutex
	handles map[string]*IndexHandle

	locksMu sync.Mutex
	locks   map[string]*docLock
}

// docLock serialises work on one document. refs counts the holders and
// waiters so idle entries can be dropped.
type docLock struct {
	mu   sync.Mutex
	refs int
}

// NewIndexRegistry creates a registry.
// The stores are optional (can be nil); without them indexes live in memory only.
func NewIndexRegistry(
	embedder driven.EmbeddingService,
	indexStore driven.IndexStore,
	chunkStore driven.ChunkStore,
) *IndexRegistry {
	return &IndexRegistry{
		embedder:   embedder,
		indexStore: indexStore,
		chunkStore: chunkStore,
		handles:    make(map[string]*IndexHandle),
		locks:      make(map[string]*docLock),
	}
}

// lock blocks until the caller holds the document's lock and returns the
// function releasing it.
func (r *IndexRegistry) lock(documentID string) func() {
	r.locksMu.Lock()
	l, ok := r.locks[documentID]
	if !ok {
		l = &docLock{}
		r.locks[documentID] = l
	}
	l.refs++
	r.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		r.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(r.locks, documentID)
		}
		r.locksMu.Unlock()
	}
}

// Get returns the resident handle of a document, if any.
func (r *IndexRegistry) Get(documentID string) (*IndexHandle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handles[documentID]
	return h, ok
}

func (r *IndexRegistry) publish(h *IndexHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handles[h.documentID] = h
}

// Build embeds every chunk in one batch call and replaces the document's
// index, both resident and persisted. On failure the previous index is
// left untouched.
func (r *IndexRegistry) Build(ctx context.Context, documentID string, chunks []domain.Chunk) (*IndexHandle, error) {
	return r.BuildWith(ctx, documentID, chunks, nil)
}

// BuildWith is Build with one more persistence step, run after the index and
// chunks are stored and before the new index is published. If any step
// fails, the stored index and chunks are restored to their previous state.
func (r *IndexRegistry) BuildWith(
	ctx context.Context, documentID string, chunks []domain.Chunk, finish func(context.Context) error,
) (*IndexHandle, error) {
	if documentID == "" {
		return nil, fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("build index %q: %w", documentID, domain.ErrEmptyInput)
	}
	if r.embedder == nil {
		return nil, fmt.Errorf("build index %q: %w: no embedding service configured",
			documentID, domain.ErrEmbeddingBackend)
	}

	unlock := r.lock(documentID)
	defer unlock()

	logger.Section("Index Build")
	logger.Debug("Document: %q, chunks: %d, model: %s", documentID, len(chunks), r.embedder.ModelName())

	start := time.Now()
	vectors, err := r.embedder.EmbedBatch(ctx, domain.ChunkTexts(chunks))
	if err != nil {
		return nil, fmt.Errorf("build index %q: %w", documentID, asEmbeddingError(err))
	}
	dims, err := checkVectors(vectors, len(chunks), r.embedder.Dimensions())
	if err != nil {
		return nil, fmt.Errorf("build index %q: %w", documentID, err)
	}
	logger.Debug("Embedded %d chunks (%d dims)", len(vectors), dims)
	logger.Timing("embed chunks", start)

	snapshot := &domain.IndexSnapshot{
		DocumentID: documentID,
		Model:      r.embedder.ModelName(),
		Dimensions: dims,
		Chunks:     append([]domain.Chunk(nil), chunks...),
		Vectors:    vectors,
		BuiltAt:    time.Now(),
	}

	if err := r.persist(ctx, snapshot, finish); err != nil {
		return nil, fmt.Errorf("build index %q: %w", documentID, err)
	}

	h := newIndexHandle(snapshot)
	r.publish(h)
	logger.Info("Index for %q rebuilt with %d chunks", documentID, h.Len())
	return h, nil
}

// persist writes the chunks, then the snapshot, then runs finish. A failed
// step undoes the steps before it.
func (r *IndexRegistry) persist(ctx context.Context, snapshot *domain.IndexSnapshot, finish func(context.Context) error) error {
	documentID := snapshot.DocumentID
	var undo []func() error
	rollback := func() {
		for i := len(undo) - 1; i >= 0; i-- {
			if err := undo[i](); err != nil {
				logger.Warn("Restoring previous state of %q failed: %v", documentID, err)
			}
		}
	}

	if r.chunkStore != nil {
		previous, err := r.chunkStore.GetChunks(ctx, documentID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("read previous chunks: %w", err)
		}
		if err := r.chunkStore.SaveChunks(ctx, documentID, snapshot.Chunks); err != nil {
			return fmt.Errorf("save chunks: %w", err)
		}
		undo = append(undo, func() error {
			return r.chunkStore.SaveChunks(context.WithoutCancel(ctx), documentID, previous)
		})
	}

	if r.indexStore != nil {
		// an unreadable previous snapshot is not worth restoring
		previous, err := r.indexStore.Load(ctx, documentID)
		if err != nil {
			previous = nil
		}
		if err := r.indexStore.Save(ctx, snapshot); err != nil {
			rollback()
			return fmt.Errorf("save snapshot: %w", err)
		}
		undo = append(undo, func() error {
			if previous == nil {
				return r.indexStore.Delete(context.WithoutCancel(ctx), documentID)
			}
			return r.indexStore.Save(context.WithoutCancel(ctx), previous)
		})
	}

	if finish != nil {
		if err := finish(ctx); err != nil {
			rollback()
			return err
		}
	}
	return nil
}

// Load reads a document's persisted index and makes it resident.
// Returns domain.ErrIndexNotFound when nothing is persisted and
// domain.ErrCorruptIndex when the persisted data cannot be decoded.
func (r *IndexRegistry) Load(ctx context.Context, documentID string) (*IndexHandle, error) {
	if r.indexStore == nil {
		return nil, fmt.Errorf("load index %q: %w", documentID, domain.ErrIndexNotFound)
	}

	unlock := r.lock(documentID)
	defer unlock()

	snapshot, err := r.indexStore.Load(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("load index %q: %w", documentID, err)
	}
	if err := snapshot.Validate(); err != nil {
		return nil, fmt.Errorf("load index %q: %w: %w", documentID, domain.ErrCorruptIndex, err)
	}

	h := newIndexHandle(snapshot)
	r.publish(h)
	logger.Debug("Loaded index for %q (%d chunks)", documentID, h.Len())
	return h, nil
}

// Resolve returns the document's index, loading it from storage when it is
// not resident. An unreadable index is rebuilt from the stored chunks; when
// no chunks are available the document is reported as not indexed.
func (r *IndexRegistry) Resolve(ctx context.Context, documentID string) (*IndexHandle, error) {
	if h, ok := r.Get(documentID); ok {
		return h, nil
	}

	h, err := r.Load(ctx, documentID)
	if err == nil {
		return h, nil
	}
	if !errors.Is(err, domain.ErrCorruptIndex) {
		return nil, err
	}

	logger.Warn("Index for %q is unreadable, rebuilding: %v", documentID, err)
	if r.chunkStore == nil {
		return nil, fmt.Errorf("%w: index for %q is unreadable and no chunks are stored", domain.ErrIndexNotFound, documentID)
	}
	chunks, cerr := r.chunkStore.GetChunks(ctx, documentID)
	if cerr != nil || len(chunks) == 0 {
		return nil, fmt.Errorf("%w: index for %q is unreadable and no chunks are stored", domain.ErrIndexNotFound, documentID)
	}
	return r.Build(ctx, documentID, chunks)
}

// checkVectors verifies an embedding response and returns its dimension.
func checkVectors(vectors [][]float32, want, expectedDims int) (int, error) {
	if len(vectors) != want {
		return 0, fmt.Errorf("%w: got %d embeddings for %d texts", domain.ErrEmbeddingBackend, len(vectors), want)
	}
	dims := len(vectors[0])
	if dims == 0 {
		return 0, fmt.Errorf("%w: empty embedding", domain.ErrEmbeddingBackend)
	}
	if expectedDims > 0 && dims != expectedDims {
		return 0, fmt.Errorf("%w: model returned %d dimensions, expected %d", domain.ErrDimensionMismatch, dims, expectedDims)
	}
	for i, v := range vectors {
		if len(v) != dims {
			return 0, fmt.Errorf("%w: embedding %d has %d dimensions, expected %d", domain.ErrDimensionMismatch, i, len(v), dims)
		}
	}
	return dims, nil
}

// asEmbeddingError tags an error as an embedding backend failure.
func asEmbeddingError(err error) error {
	if errors.Is(err, domain.ErrEmbeddingBackend) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrEmbeddingBackend, err)
}
