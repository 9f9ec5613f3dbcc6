package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driving"
)

// mockIngestService implements driving.IngestService for testing.
type mockIngestService struct {
	graph *domain.Graph
	err   error

	// fileErrs fails IngestFile for specific paths.
	fileErrs map[string]error

	ingestedFiles []string
	ingestedText  string
	ingestedID    string
}

func (m *mockIngestService) Ingest(_ context.Context, documentID string, chunks []domain.Chunk) (*domain.Graph, error) {
	m.ingestedID = documentID
	return m.graph, m.err
}

func (m *mockIngestService) IngestFile(_ context.Context, path string) (*driving.IngestResult, error) {
	m.ingestedFiles = append(m.ingestedFiles, path)
	if err := m.fileErrs[path]; err != nil {
		return nil, err
	}
	if m.err != nil {
		return nil, m.err
	}
	id := strings.TrimSuffix(path[strings.LastIndex(path, "/")+1:], ".txt")
	return &driving.IngestResult{DocumentID: id, ChunkCount: 2, Graph: m.graph}, nil
}

func (m *mockIngestService) IngestText(_ context.Context, documentID, text string) (*driving.IngestResult, error) {
	m.ingestedID = documentID
	m.ingestedText = text
	if m.err != nil {
		return nil, m.err
	}
	return &driving.IngestResult{DocumentID: documentID, ChunkCount: 1, Graph: m.graph}, nil
}

func (m *mockIngestService) GetGraph(_ context.Context, _ string) (*domain.Graph, error) {
	return m.graph, m.err
}

// mockQueryService implements driving.QueryService for testing.
type mockQueryService struct {
	result  *domain.QueryResult
	results []domain.ScoredChunk
	err     error

	lastDocumentID string
	lastQuery      string
	lastK          int
}

func (m *mockQueryService) AnswerQuery(_ context.Context, documentID, query string) (*domain.QueryResult, error) {
	m.lastDocumentID, m.lastQuery = documentID, query
	return m.result, m.err
}

func (m *mockQueryService) Retrieve(_ context.Context, documentID, query string, k int) ([]domain.ScoredChunk, error) {
	m.lastDocumentID, m.lastQuery, m.lastK = documentID, query, k
	return m.results, m.err
}

// mockDocumentService implements driving.DocumentService for testing.
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

// mockSettingsService implements driving.SettingsService for testing.
type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
	embedErr    error
	llmErr      error
	saveErr     error
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings()}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.Embedding.Provider = provider
	m.settings.Embedding.Model = model
	m.settings.Embedding.APIKey = apiKey
	return m.saveErr
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.LLM.Provider = provider
	m.settings.LLM.Model = model
	m.settings.LLM.APIKey = apiKey
	return m.saveErr
}

func (m *mockSettingsService) SetTopK(k int) error {
	if k <= 0 {
		return domain.ErrInvalidInput
	}
	m.settings.Retrieval.TopK = k
	return nil
}

func (m *mockSettingsService) SetGraphOptions(opts domain.GraphOptions) error {
	m.settings.Graph = opts
	return m.saveErr
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettingsService) ValidateEmbeddingConfig() error { return m.embedErr }

func (m *mockSettingsService) ValidateLLMConfig() error { return m.llmErr }

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	ingest   *mockIngestService
	query    *mockQueryService
	document *mockDocumentService
	settings *mockSettingsService
}

func sampleGraph() *domain.Graph {
	g := domain.NewGraph("notes")
	g.Nodes = []domain.GraphNode{
		{ID: "notes_node_0_ab12", Label: "Cats purr.", FullText: "Cats purr.", DocumentID: "notes"},
		{ID: "notes_node_1_cd34", Label: "Kittens purr.", FullText: "Kittens purr.", DocumentID: "notes"},
	}
	g.Edges = []domain.GraphEdge{
		{ID: "edge_notes_node_0_ab12_notes_node_1_cd34_ef56", Source: "notes_node_0_ab12", Target: "notes_node_1_cd34", Weight: 0.91},
	}
	return g
}

// setupTestServices installs mock services and returns them with a cleanup
// func restoring the previous state.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		ingest:   &mockIngestService{graph: sampleGraph()},
		query:    &mockQueryService{},
		document: &mockDocumentService{},
		settings: newMockSettingsService(),
	}

	prevIngest, prevQuery, prevDocument, prevSettings := ingestService, queryService, documentService, settingsService
	prevBootstrap := bootstrap
	bootstrap = nil

	SetServices(&Services{
		Ingest:   ts.ingest,
		Query:    ts.query,
		Document: ts.document,
		Settings: ts.settings,
	})

	return ts, func() {
		ingestService, queryService, documentService, settingsService = prevIngest, prevQuery, prevDocument, prevSettings
		bootstrap = prevBootstrap
	}
}

// executeCommand runs the root command with args and returns combined output.
// Flag values are reset first so state does not leak between tests.
func executeCommand(t *testing.T, stdin io.Reader, args ...string) (string, error) {
	t.Helper()

	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	if stdin == nil {
		stdin = strings.NewReader("")
	}
	rootCmd.SetIn(stdin)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if f.Value.Type() == "stringSlice" || f.Value.Type() == "stringArray" {
			return
		}
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
