package services

import (
	"context"
	"strings"
	"sync"

	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driven"
)

// mockEmbeddingService embeds texts through vectorFor, or a fixed table.
type mockEmbeddingService struct {
	mu         sync.Mutex
	vectors    map[string][]float32
	vectorFor  func(text string) []float32
	dims       int
	embedErr   error
	batchErr   error
	embedCalls int
	batchCalls int
}

func (m *mockEmbeddingService) vector(text string) []float32 {
	if v, ok := m.vectors[text]; ok {
		return append([]float32(nil), v...)
	}
	if m.vectorFor != nil {
		return m.vectorFor(text)
	}
	return []float32{1, 0}
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.embedCalls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.vector(text), nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchCalls++
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.vector(t)
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int { return m.dims }

func (m *mockEmbeddingService) ModelName() string { return "mock-embed" }

func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }

func (m *mockEmbeddingService) Close() error { return nil }

func (m *mockEmbeddingService) calls() (embed, batch int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.embedCalls, m.batchCalls
}

// mockLLMService records prompts and returns a fixed answer.
type mockLLMService struct {
	mu      sync.Mutex
	answer  string
	err     error
	prompts []string
}

func (m *mockLLMService) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	return m.answer, nil
}

func (m *mockLLMService) ModelName() string { return "mock-llm" }

func (m *mockLLMService) Ping(_ context.Context) error { return m.err }

func (m *mockLLMService) Close() error { return nil }

func (m *mockLLMService) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// mockPromptStore serves templates from a map.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if p, ok := m.prompts[name]; ok {
		return p, nil
	}
	return "", domain.ErrNotFound
}

func (m *mockPromptStore) Reload() {}

// corruptIndexStore reports every stored snapshot as undecodable.
type corruptIndexStore struct {
	saved int
}

func (s *corruptIndexStore) Exists(_ context.Context, _ string) (bool, error) { return true, nil }

func (s *corruptIndexStore) Save(_ context.Context, _ *domain.IndexSnapshot) error {
	s.saved++
	return nil
}

func (s *corruptIndexStore) Load(_ context.Context, _ string) (*domain.IndexSnapshot, error) {
	return nil, domain.ErrCorruptIndex
}

func (s *corruptIndexStore) List(_ context.Context) ([]domain.DocumentSummary, error) {
	return nil, nil
}

func (s *corruptIndexStore) Delete(_ context.Context, _ string) error { return nil }

// failingIndexStore wraps a store and fails saves while err is set.
type failingIndexStore struct {
	driven.IndexStore
	err error
}

func (s *failingIndexStore) Save(ctx context.Context, snapshot *domain.IndexSnapshot) error {
	if s.err != nil {
		return s.err
	}
	return s.IndexStore.Save(ctx, snapshot)
}

// failingGraphStore wraps a store and fails saves while err is set.
type failingGraphStore struct {
	driven.GraphStore
	err error
}

func (s *failingGraphStore) SaveGraph(ctx context.Context, graph *domain.Graph) error {
	if s.err != nil {
		return s.err
	}
	return s.GraphStore.SaveGraph(ctx, graph)
}

// mockNormaliserRegistry returns the raw content as document text.
type mockNormaliserRegistry struct {
	err error
}

func (m *mockNormaliserRegistry) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &driven.NormaliseResult{Document: domain.Document{URI: raw.URI, Content: string(raw.Content)}}, nil
}

func (m *mockNormaliserRegistry) Register(_ driven.Normaliser) {}

func (m *mockNormaliserRegistry) SupportedMIMETypes() []string { return []string{"text/plain"} }

// lineSplitter chunks a document one non-empty line per chunk.
type lineSplitter struct{}

func (lineSplitter) Process(_ context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	var texts []string
	for _, line := range strings.Split(doc.Content, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			texts = append(texts, line)
		}
	}
	return domain.NewChunks(doc.ID, texts), nil
}
