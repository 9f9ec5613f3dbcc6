package mcp

import (
	"context"
	"errors"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driving"
)

// IngestTextInput is the input schema for the ingest_text tool.
type IngestTextInput struct {
	DocumentID string   `json:"document_id" jsonschema:"identifier to index the document under; re-using one replaces its index"`
	Text       string   `json:"text,omitempty" jsonschema:"document text, split into sentences before indexing"`
	Chunks     []string `json:"chunks,omitempty" jsonschema:"pre-split passages, indexed as given instead of text"`
}

// IngestTextOutput is the output schema for the ingest_text tool.
type IngestTextOutput struct {
	DocumentID string `json:"document_id"`
	ChunkCount int    `json:"chunk_count"`
	NodeCount  int    `json:"node_count"`
	EdgeCount  int    `json:"edge_count"`
}

// AnswerQueryInput is the input schema for the answer_query tool.
type AnswerQueryInput struct {
	DocumentID string `json:"document_id" jsonschema:"the document to answer from"`
	Query      string `json:"query" jsonschema:"the question to answer"`
}

// AnswerQueryOutput is the output schema for the answer_query tool.
type AnswerQueryOutput struct {
	Answer  string         `json:"answer"`
	Sources []SourceOutput `json:"sources"`
}

// SourceOutput is a passage an answer or retrieval drew on.
type SourceOutput struct {
	Position int     `json:"position"`
	Text     string  `json:"text"`
	Score    float64 `json:"score,omitempty"`
}

// RetrieveInput is the input schema for the retrieve_chunks tool.
type RetrieveInput struct {
	DocumentID string `json:"document_id" jsonschema:"the document to search"`
	Query      string `json:"query" jsonschema:"text to find similar passages for"`
	K          int    `json:"k,omitempty" jsonschema:"number of passages to return (default 3)"`
}

// RetrieveOutput is the output schema for the retrieve_chunks tool.
type RetrieveOutput struct {
	Results []SourceOutput `json:"results"`
}

// MindMapInput is the input schema for the get_mind_map tool.
type MindMapInput struct {
	DocumentID string `json:"document_id" jsonschema:"the document whose mind map to return"`
}

// MindMapOutput is a mind map in Cytoscape element form.
type MindMapOutput struct {
	DocumentID string        `json:"document_id"`
	Nodes      []NodeElement `json:"nodes"`
	Edges      []EdgeElement `json:"edges"`
}

// NodeElement wraps a node as a Cytoscape element.
type NodeElement struct {
	Data NodeData `json:"data"`
}

// NodeData is a mind map node.
type NodeData struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	FullText   string `json:"full_text"`
	DocumentID string `json:"doc_id"`
}

// EdgeElement wraps an edge as a Cytoscape element.
type EdgeElement struct {
	Data EdgeData `json:"data"`
}

// EdgeData is a mind map edge.
type EdgeData struct {
	ID     string  `json:"id"`
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight"`
}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []domain.DocumentSummary `json:"documents"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest_text",
		Description: "Index a document's text and build its mind map. Replaces any previous index for the same document_id.",
	}, s.handleIngestText)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "answer_query",
		Description: "Answer a question from the passages of an indexed document most similar to it",
	}, s.handleAnswerQuery)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve_chunks",
		Description: "Return the passages of an indexed document most similar to a query, with cosine scores",
	}, s.handleRetrieve)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_mind_map",
		Description: "Return the similarity graph of a document's passages as Cytoscape elements",
	}, s.handleGetMindMap)

	if s.ports.Document != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_documents",
			Description: "List indexed documents",
		}, s.handleListDocuments)
	}
}

func (s *Server) handleIngestText(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestTextInput,
) (*mcp.CallToolResult, IngestTextOutput, error) {
	var (
		result *driving.IngestResult
		err    error
	)

	if len(input.Chunks) > 0 {
		var graph *domain.Graph
		chunks := domain.NewChunks(input.DocumentID, input.Chunks)
		graph, err = s.ports.Ingest.Ingest(ctx, input.DocumentID, chunks)
		if err == nil {
			result = &driving.IngestResult{DocumentID: strings.TrimSpace(input.DocumentID), ChunkCount: len(chunks), Graph: graph}
		}
	} else {
		if strings.TrimSpace(input.Text) == "" {
			return nil, IngestTextOutput{}, errors.New("either text or chunks is required")
		}
		result, err = s.ports.Ingest.IngestText(ctx, input.DocumentID, input.Text)
	}
	if err != nil {
		return nil, IngestTextOutput{}, err
	}

	output := IngestTextOutput{DocumentID: result.DocumentID, ChunkCount: result.ChunkCount}
	if result.Graph != nil {
		output.NodeCount = len(result.Graph.Nodes)
		output.EdgeCount = len(result.Graph.Edges)
	}
	return nil, output, nil
}

func (s *Server) handleAnswerQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnswerQueryInput,
) (*mcp.CallToolResult, AnswerQueryOutput, error) {
	result, err := s.ports.Query.AnswerQuery(ctx, input.DocumentID, input.Query)
	if err != nil {
		return nil, AnswerQueryOutput{}, err
	}

	output := AnswerQueryOutput{
		Answer:  result.Answer,
		Sources: make([]SourceOutput, len(result.Sources)),
	}
	for i, c := range result.Sources {
		output.Sources[i] = SourceOutput{Position: c.Position, Text: c.Text}
	}
	return nil, output, nil
}

func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	k := input.K
	if k <= 0 {
		k = domain.DefaultTopK
	}

	results, err := s.ports.Query.Retrieve(ctx, input.DocumentID, input.Query, k)
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	output := RetrieveOutput{Results: make([]SourceOutput, len(results))}
	for i, r := range results {
		output.Results[i] = SourceOutput{Position: r.Position, Text: r.Text, Score: r.Score}
	}
	return nil, output, nil
}

func (s *Server) handleGetMindMap(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input MindMapInput,
) (*mcp.CallToolResult, MindMapOutput, error) {
	graph, err := s.ports.Ingest.GetGraph(ctx, input.DocumentID)
	if err != nil {
		return nil, MindMapOutput{}, err
	}
	return nil, toMindMap(graph), nil
}

func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	docs, err := s.ports.Document.List(ctx)
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}
	if docs == nil {
		docs = []domain.DocumentSummary{}
	}
	return nil, ListDocumentsOutput{Documents: docs}, nil
}

func toMindMap(graph *domain.Graph) MindMapOutput {
	out := MindMapOutput{
		DocumentID: graph.DocumentID,
		Nodes:      make([]NodeElement, len(graph.Nodes)),
		Edges:      make([]EdgeElement, len(graph.Edges)),
	}
	for i, n := range graph.Nodes {
		out.Nodes[i] = NodeElement{Data: NodeData(n)}
	}
	for i, e := range graph.Edges {
		out.Edges[i] = EdgeElement{Data: EdgeData(e)}
	}
	return out
}
