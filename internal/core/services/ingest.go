package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driven"
	"github.com/custodia-labs/docmind/internal/core/ports/driving"
	"github.com/custodia-labs/docmind/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// fileTypes maps supported file extensions to MIME types.
var fileTypes = map[string]string{
	".txt":      "text/plain",
	".text":     "text/plain",
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".pdf":      "application/pdf",
	".html":     "text/html",
	".htm":      "text/html",
	".docx":     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// SupportedExtensions returns the file extensions IngestFile accepts, sorted.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(fileTypes))
	for ext := range fileTypes {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// DocumentIDFromPath derives a document ID from a file name by dropping
// its directory and extension.
func DocumentIDFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// IngestService indexes documents and builds their mind maps.
type IngestService struct {
	registry   *IndexRegistry
	graphs     *GraphBuilder
	graphStore driven.GraphStore
	graphOpts  domain.GraphOptions

	normalisers driven.NormaliserRegistry
	pipeline    driven.PostProcessorPipeline
}

// NewIngestService creates an ingest service.
// graphStore is optional (can be nil); graphs are then returned but not kept.
func NewIngestService(
	registry *IndexRegistry,
	graphs *GraphBuilder,
	graphStore driven.GraphStore,
	graphOpts domain.GraphOptions,
) *IngestService {
	return &IngestService{
		registry:   registry,
		graphs:     graphs,
		graphStore: graphStore,
		graphOpts:  graphOpts.WithDefaults(),
	}
}

// SetFileIngestion enables IngestFile with the given text extraction and
// chunking stages.
func (s *IngestService) SetFileIngestion(normalisers driven.NormaliserRegistry, pipeline driven.PostProcessorPipeline) {
	s.normalisers = normalisers
	s.pipeline = pipeline
}

// Ingest fully rebuilds a document's index and similarity graph from chunks.
// Chunks are renumbered in the order given. Nothing is replaced unless the
// index, the chunks and the graph are all stored.
func (s *IngestService) Ingest(ctx context.Context, documentID string, chunks []domain.Chunk) (*domain.Graph, error) {
	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return nil, fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("ingest %q: %w", documentID, domain.ErrEmptyInput)
	}

	logger.Section("Ingest")
	logger.Debug("Document: %q, chunks: %d", documentID, len(chunks))

	owned := make([]domain.Chunk, len(chunks))
	for i, c := range chunks {
		owned[i] = domain.Chunk{DocumentID: documentID, Position: i, Text: c.Text}
	}

	graph, err := s.graphs.Build(ctx, documentID, owned, s.graphOpts)
	if err != nil {
		return nil, fmt.Errorf("ingest %q: %w", documentID, err)
	}

	var saveGraph func(context.Context) error
	if s.graphStore != nil {
		saveGraph = func(ctx context.Context) error {
			if err := s.graphStore.SaveGraph(ctx, graph); err != nil {
				return fmt.Errorf("save graph: %w", err)
			}
			return nil
		}
	}

	if _, err := s.registry.BuildWith(ctx, documentID, owned, saveGraph); err != nil {
		return nil, fmt.Errorf("ingest %q: %w", documentID, err)
	}

	return graph, nil
}

// IngestFile reads a text, Markdown, PDF, HTML or DOCX file, extracts and
// chunks its text and ingests it under the file name without extension.
func (s *IngestService) IngestFile(ctx context.Context, path string) (*driving.IngestResult, error) {
	if s.normalisers == nil || s.pipeline == nil {
		return nil, fmt.Errorf("ingest file: %w", domain.ErrNotImplemented)
	}

	ext := strings.ToLower(filepath.Ext(path))
	mimeType, ok := fileTypes[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q files cannot be ingested", domain.ErrUnsupportedType, ext)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	result, err := s.normalisers.Normalise(ctx, &domain.RawDocument{
		URI:      path,
		MIMEType: mimeType,
		Content:  content,
	})
	if err != nil {
		return nil, fmt.Errorf("extract text from %s: %w", path, err)
	}

	doc := result.Document
	doc.ID = DocumentIDFromPath(path)
	return s.ingestDocument(ctx, &doc)
}

// IngestText chunks plain text with the file pipeline and ingests it.
func (s *IngestService) IngestText(ctx context.Context, documentID, text string) (*driving.IngestResult, error) {
	if s.pipeline == nil {
		return nil, fmt.Errorf("ingest text: %w", domain.ErrNotImplemented)
	}
	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return nil, fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}

	doc := &domain.Document{
		ID:        documentID,
		Title:     documentID,
		Content:   strings.Join(strings.Fields(text), " "),
		CreatedAt: time.Now(),
	}
	return s.ingestDocument(ctx, doc)
}

func (s *IngestService) ingestDocument(ctx context.Context, doc *domain.Document) (*driving.IngestResult, error) {
	chunks, err := s.pipeline.Process(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("chunk %q: %w", doc.ID, err)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: document %q has no extractable text", domain.ErrEmptyInput, doc.ID)
	}

	graph, err := s.Ingest(ctx, doc.ID, chunks)
	if err != nil {
		return nil, err
	}

	return &driving.IngestResult{
		DocumentID: doc.ID,
		ChunkCount: len(chunks),
		Graph:      graph,
	}, nil
}

// GetGraph returns the stored graph of a document.
func (s *IngestService) GetGraph(ctx context.Context, documentID string) (*domain.Graph, error) {
	if s.graphStore == nil {
		return nil, fmt.Errorf("get graph %q: %w", documentID, domain.ErrNotFound)
	}
	graph, err := s.graphStore.GetGraph(ctx, documentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("no mind map for %q, ingest it first: %w", documentID, err)
		}
		return nil, fmt.Errorf("get graph %q: %w", documentID, err)
	}
	return graph, nil
}
