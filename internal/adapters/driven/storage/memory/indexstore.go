package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driven"
)

// Ensure IndexStore implements the interface.
var _ driven.IndexStore = (*IndexStore)(nil)

// IndexStore is an in-memory implementation of driven.IndexStore.
type IndexStore struct {
	mu        sync.RWMutex
	snapshots map[string]domain.IndexSnapshot
}

// NewIndexStore creates a new in-memory index store.
func NewIndexStore() *IndexStore {
	return &IndexStore{
		snapshots: make(map[string]domain.IndexSnapshot),
	}
}

// Exists reports whether a snapshot is stored for the document.
func (s *IndexStore) Exists(_ context.Context, documentID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.snapshots[documentID]
	return ok, nil
}

// Save stores or replaces the snapshot for its document.
func (s *IndexStore) Save(_ context.Context, snapshot *domain.IndexSnapshot) error {
	if snapshot == nil || snapshot.DocumentID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snapshot.DocumentID] = copySnapshot(*snapshot)
	return nil
}

// Load reads the snapshot for a document.
func (s *IndexStore) Load(_ context.Context, documentID string) (*domain.IndexSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot, ok := s.snapshots[documentID]
	if !ok {
		return nil, domain.ErrIndexNotFound
	}
	out := copySnapshot(snapshot)
	return &out, nil
}

// List describes every stored index, ordered by document ID.
func (s *IndexStore) List(_ context.Context) ([]domain.DocumentSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	summaries := make([]domain.DocumentSummary, 0, len(s.snapshots))
	for _, snap := range s.snapshots {
		summaries = append(summaries, domain.DocumentSummary{
			DocumentID: snap.DocumentID,
			Model:      snap.Model,
			ChunkCount: len(snap.Chunks),
			BuiltAt:    snap.BuiltAt,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].DocumentID < summaries[j].DocumentID
	})
	return summaries, nil
}

// Delete removes a document's snapshot.
func (s *IndexStore) Delete(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, documentID)
	return nil
}

// copySnapshot deep-copies the slices so callers cannot mutate stored state.
func copySnapshot(s domain.IndexSnapshot) domain.IndexSnapshot {
	s.Chunks = append([]domain.Chunk(nil), s.Chunks...)
	vectors := make([][]float32, len(s.Vectors))
	for i, v := range s.Vectors {
		vectors[i] = append([]float32(nil), v...)
	}
	s.Vectors = vectors
	return s
}
