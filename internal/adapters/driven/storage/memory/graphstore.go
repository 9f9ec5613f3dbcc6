package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driven"
)

// Ensure GraphStore implements the interface.
var _ driven.GraphStore = (*GraphStore)(nil)

// GraphStore is an in-memory implementation of driven.GraphStore.
type GraphStore struct {
	mu     sync.RWMutex
	graphs map[string]domain.Graph
}

// NewGraphStore creates a new in-memory graph store.
func NewGraphStore() *GraphStore {
	return &GraphStore{
		graphs: make(map[string]domain.Graph),
	}
}

// SaveGraph stores or replaces the graph for its document.
func (s *GraphStore) SaveGraph(_ context.Context, graph *domain.Graph) error {
	if graph == nil || graph.DocumentID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graphs[graph.DocumentID] = copyGraph(*graph)
	return nil
}

// GetGraph returns the stored graph for a document.
func (s *GraphStore) GetGraph(_ context.Context, documentID string) (*domain.Graph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	graph, ok := s.graphs[documentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := copyGraph(graph)
	return &out, nil
}

func copyGraph(g domain.Graph) domain.Graph {
	g.Nodes = append([]domain.GraphNode{}, g.Nodes...)
	g.Edges = append([]domain.GraphEdge{}, g.Edges...)
	return g
}
