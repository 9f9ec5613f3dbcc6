package services

import (
	"context"
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driven"
	"github.com/custodia-labs/docmind/internal/logger"
)

// GraphBuilder renders a document's chunks as a similarity graph.
type GraphBuilder struct {
	embedder driven.EmbeddingService
	suffix   func() string
}

// NewGraphBuilder creates a graph builder.
func NewGraphBuilder(embedder driven.EmbeddingService) *GraphBuilder {
	return &GraphBuilder{
		embedder: embedder,
		suffix:   randomSuffix,
	}
}

// randomSuffix returns four random hex characters used to keep node and
// edge IDs unique across rebuilds.
func randomSuffix() string {
	return uuid.New().String()[:4]
}

// Build renders up to opts.MaxNodes of the longest chunks as nodes, in their
// original order, and links each node to its most similar peers.
//
// Each node originates at most opts.MaxEdgesPerNode edges, picked greedily by
// descending similarity. A pair already linked in the other direction is
// skipped, and only similarities strictly above opts.SimilarityThreshold
// produce an edge. The edge weight is the similarity.
func (b *GraphBuilder) Build(
	ctx context.Context, documentID string, chunks []domain.Chunk, opts domain.GraphOptions,
) (*domain.Graph, error) {
	opts = opts.WithDefaults()
	graph := domain.NewGraph(documentID)
	if len(chunks) == 0 {
		return graph, nil
	}

	selected := selectLongest(chunks, opts.MaxNodes)
	for i, c := range selected {
		graph.Nodes = append(graph.Nodes, domain.GraphNode{
			ID:         fmt.Sprintf("%s_node_%d_%s", documentID, i, b.suffix()),
			Label:      domain.NodeLabel(c.Text),
			FullText:   c.Text,
			DocumentID: documentID,
		})
	}
	if len(selected) < 2 {
		return graph, nil
	}

	if b.embedder == nil {
		return nil, fmt.Errorf("build graph %q: %w: no embedding service configured", documentID, domain.ErrEmbeddingBackend)
	}
	vectors, err := b.embedder.EmbedBatch(ctx, domain.ChunkTexts(selected))
	if err != nil {
		return nil, fmt.Errorf("build graph %q: %w", documentID, asEmbeddingError(err))
	}
	if _, err := checkVectors(vectors, len(selected), 0); err != nil {
		return nil, fmt.Errorf("build graph %q: %w", documentID, err)
	}

	sims := cosineMatrix(vectors)
	linked := make(map[[2]int]bool)
	for i := range selected {
		candidates := make([]int, 0, len(selected)-1)
		for j := range selected {
			if j != i {
				candidates = append(candidates, j)
			}
		}
		sort.SliceStable(candidates, func(a, c int) bool {
			return sims[i][candidates[a]] > sims[i][candidates[c]]
		})

		count := 0
		for _, j := range candidates {
			if count >= opts.MaxEdgesPerNode {
				break
			}
			if linked[[2]int{j, i}] {
				continue
			}
			sim := sims[i][j]
			if sim <= opts.SimilarityThreshold {
				// candidates are sorted, nothing further qualifies
				break
			}
			src, dst := graph.Nodes[i].ID, graph.Nodes[j].ID
			graph.Edges = append(graph.Edges, domain.GraphEdge{
				ID:     fmt.Sprintf("edge_%s_%s_%s", src, dst, b.suffix()),
				Source: src,
				Target: dst,
				Weight: sim,
			})
			linked[[2]int{i, j}] = true
			count++
		}
	}

	logger.Debug("Graph for %q: %d nodes, %d edges", documentID, len(graph.Nodes), len(graph.Edges))
	return graph, nil
}

// selectLongest keeps the max longest chunks, ties resolved by original
// position, and returns them in original order.
func selectLongest(chunks []domain.Chunk, limit int) []domain.Chunk {
	order := make([]int, len(chunks))
	for i := range order {
		order[i] = i
	}
	if len(order) > limit {
		sort.SliceStable(order, func(a, b int) bool {
			return utf8.RuneCountInString(chunks[order[a]].Text) > utf8.RuneCountInString(chunks[order[b]].Text)
		})
		order = order[:limit]
		sort.Ints(order)
	}

	selected := make([]domain.Chunk, len(order))
	for i, idx := range order {
		selected[i] = chunks[idx]
	}
	return selected
}
