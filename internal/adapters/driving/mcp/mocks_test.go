package mcp

import (
	"context"

	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driving"
)

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	graph  *domain.Graph
	result *driving.IngestResult
	err    error

	ingestedID     string
	ingestedChunks []domain.Chunk
	ingestedText   string
}

func (m *mockIngestService) Ingest(_ context.Context, documentID string, chunks []domain.Chunk) (*domain.Graph, error) {
	m.ingestedID = documentID
	m.ingestedChunks = chunks
	return m.graph, m.err
}

func (m *mockIngestService) IngestFile(_ context.Context, _ string) (*driving.IngestResult, error) {
	return m.result, m.err
}

func (m *mockIngestService) IngestText(_ context.Context, documentID, text string) (*driving.IngestResult, error) {
	m.ingestedID = documentID
	m.ingestedText = text
	return m.result, m.err
}

func (m *mockIngestService) GetGraph(_ context.Context, _ string) (*domain.Graph, error) {
	return m.graph, m.err
}

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	result  *domain.QueryResult
	results []domain.ScoredChunk
	err     error
	lastK   int
}

func (m *mockQueryService) AnswerQuery(_ context.Context, _, _ string) (*domain.QueryResult, error) {
	return m.result, m.err
}

func (m *mockQueryService) Retrieve(_ context.Context, _, _ string, k int) ([]domain.ScoredChunk, error) {
	m.lastK = k
	return m.results, m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	docs   []domain.DocumentSummary
	chunks []domain.Chunk
	err    error
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.DocumentSummary, error) {
	return m.docs, m.err
}

func (m *mockDocumentService) GetChunks(_ context.Context, _ string) ([]domain.Chunk, error) {
	return m.chunks, m.err
}

func sampleGraph() *domain.Graph {
	return &domain.Graph{
		DocumentID: "notes",
		Nodes: []domain.GraphNode{
			{ID: "notes_node_0_ab12", Label: "Cats purr.", FullText: "Cats purr.", DocumentID: "notes"},
			{ID: "notes_node_1_cd34", Label: "Kittens purr.", FullText: "Kittens purr.", DocumentID: "notes"},
		},
		Edges: []domain.GraphEdge{
			{ID: "edge_notes_node_0_ab12_notes_node_1_cd34_ef56", Source: "notes_node_0_ab12", Target: "notes_node_1_cd34", Weight: 0.9},
		},
	}
}

func newTestServer(t interface {
	Helper()
	Fatalf(string, ...any)
}, ports *Ports) *Server {
	t.Helper()
	server, err := NewServer(ports)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return server
}
