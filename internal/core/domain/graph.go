package domain

import (
	"encoding/json"
	"time"
)

// Graph defaults.
const (
	// DefaultGraphMaxNodes caps the number of chunks rendered as nodes.
	DefaultGraphMaxNodes = 50

	// DefaultGraphMaxEdgesPerNode caps the edges a node may originate.
	DefaultGraphMaxEdgesPerNode = 3

	// DefaultGraphSimilarityThreshold is the similarity an edge must exceed.
	DefaultGraphSimilarityThreshold = 0.65

	// GraphLabelLength is the number of characters kept in a node label.
	GraphLabelLength = 75
)

// GraphOptions controls similarity graph construction.
type GraphOptions struct {
	// MaxNodes is the maximum number of nodes; the longest chunks win.
	MaxNodes int

	// MaxEdgesPerNode is the maximum number of edges a node originates.
	MaxEdgesPerNode int

	// SimilarityThreshold is the strict lower bound for an edge's similarity.
	SimilarityThreshold float64
}

// DefaultGraphOptions returns the standard mind map settings.
func DefaultGraphOptions() GraphOptions {
	return GraphOptions{
		MaxNodes:            DefaultGraphMaxNodes,
		MaxEdgesPerNode:     DefaultGraphMaxEdgesPerNode,
		SimilarityThreshold: DefaultGraphSimilarityThreshold,
	}
}

// WithDefaults fills unset (non-positive) fields with defaults.
func (o GraphOptions) WithDefaults() GraphOptions {
	d := DefaultGraphOptions()
	if o.MaxNodes <= 0 {
		o.MaxNodes = d.MaxNodes
	}
	if o.MaxEdgesPerNode <= 0 {
		o.MaxEdgesPerNode = d.MaxEdgesPerNode
	}
	if o.SimilarityThreshold <= 0 {
		o.SimilarityThreshold = d.SimilarityThreshold
	}
	return o
}

// GraphNode is a chunk rendered as a mind map node.
type GraphNode struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	FullText   string `json:"full_text"`
	DocumentID string `json:"doc_id"`
}

// GraphEdge links two nodes whose chunks are similar.
type GraphEdge struct {
	ID     string  `json:"id"`
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight"`
}

// Graph is the similarity graph of a document's chunks.
type Graph struct {
	DocumentID string      `json:"document_id"`
	Nodes      []GraphNode `json:"nodes"`
	Edges      []GraphEdge `json:"edges"`
	CreatedAt  time.Time   `json:"created_at"`
}

// NewGraph returns an empty graph for a document.
func NewGraph(documentID string) *Graph {
	return &Graph{
		DocumentID: documentID,
		Nodes:      []GraphNode{},
		Edges:      []GraphEdge{},
		CreatedAt:  time.Now(),
	}
}

// Elements are serialised in the Cytoscape element shape: {"data": {...}}.
type (
	graphNodeData GraphNode
	graphEdgeData GraphEdge
)

// MarshalJSON wraps the node in a Cytoscape data element.
func (n GraphNode) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Data graphNodeData `json:"data"`
	}{graphNodeData(n)})
}

// UnmarshalJSON reads a Cytoscape data element.
func (n *GraphNode) UnmarshalJSON(b []byte) error {
	var el struct {
		Data graphNodeData `json:"data"`
	}
	if err := json.Unmarshal(b, &el); err != nil {
		return err
	}
	*n = GraphNode(el.Data)
	return nil
}

// MarshalJSON wraps the edge in a Cytoscape data element.
func (e GraphEdge) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Data graphEdgeData `json:"data"`
	}{graphEdgeData(e)})
}

// UnmarshalJSON reads a Cytoscape data element.
func (e *GraphEdge) UnmarshalJSON(b []byte) error {
	var el struct {
		Data graphEdgeData `json:"data"`
	}
	if err := json.Unmarshal(b, &el); err != nil {
		return err
	}
	*e = GraphEdge(el.Data)
	return nil
}

// NodeLabel shortens text to GraphLabelLength characters, appending "..."
// when anything was cut.
func NodeLabel(text string) string {
	runes := []rune(text)
	if len(runes) <= GraphLabelLength {
		return text
	}
	return string(runes[:GraphLabelLength]) + "..."
}
