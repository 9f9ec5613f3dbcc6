package services

import (
	"fmt"
	"slices"

	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driven"
	"github.com/custodia-labs/docmind/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyEmbedBatchSize  = "embedding.batch_size"
	keyEmbedRate       = "embedding.requests_per_second"
	keyLLMProvider     = "llm.provider"
	keyLLMModel        = "llm.model"
	keyLLMBaseURL      = "llm.base_url"
	keyLLMAPIKey       = "llm.api_key"
	keyLLMMaxTokens    = "llm.max_tokens"
	keyTopK            = "retrieval.top_k"
	keyGraphMaxNodes   = "graph.max_nodes"
	keyGraphMaxEdges   = "graph.max_edges_per_node"
	keyGraphThreshold  = "graph.similarity_threshold"
	keyPipelineProcess = "pipeline.processors"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	embedProvider := s.getProvider(keyEmbedProvider, defaults.Embedding.Provider)
	llmProvider := s.getProvider(keyLLMProvider, defaults.LLM.Provider)

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:          embedProvider,
			Model:             s.getString(keyEmbedModel, defaultModel(domain.DefaultEmbeddingModels(), embedProvider)),
			BaseURL:           s.getString(keyEmbedBaseURL, defaultBaseURL(embedProvider)),
			APIKey:            s.configStore.GetString(keyEmbedAPIKey),
			BatchSize:         s.configStore.GetInt(keyEmbedBatchSize),
			RequestsPerSecond: s.getFloat(keyEmbedRate, 0),
		},
		LLM: domain.LLMSettings{
			Provider:  llmProvider,
			Model:     s.getString(keyLLMModel, defaultModel(domain.DefaultLLMModels(), llmProvider)),
			BaseURL:   s.getString(keyLLMBaseURL, defaultBaseURL(llmProvider)),
			APIKey:    s.configStore.GetString(keyLLMAPIKey),
			MaxTokens: s.configStore.GetInt(keyLLMMaxTokens),
		},
		Retrieval: domain.RetrievalSettings{
			TopK: s.getInt(keyTopK, defaults.Retrieval.TopK),
		},
		Graph: domain.GraphOptions{
			MaxNodes:            s.getInt(keyGraphMaxNodes, defaults.Graph.MaxNodes),
			MaxEdgesPerNode:     s.getInt(keyGraphMaxEdges, defaults.Graph.MaxEdgesPerNode),
			SimilarityThreshold: s.getFloat(keyGraphThreshold, defaults.Graph.SimilarityThreshold),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedBatchSize, settings.Embedding.BatchSize},
		{keyEmbedRate, settings.Embedding.RequestsPerSecond},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyLLMMaxTokens, settings.LLM.MaxTokens},
		{keyTopK, settings.Retrieval.TopK},
		{keyGraphMaxNodes, settings.Graph.MaxNodes},
		{keyGraphMaxEdges, settings.Graph.MaxEdgesPerNode},
		{keyGraphThreshold, settings.Graph.SimilarityThreshold},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	// API keys are only written when present so a saved key is never blanked.
	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}
	if settings.LLM.APIKey != "" {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}

	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	changed := settings.Embedding.Provider != provider
	settings.Embedding.Provider = provider

	// Set model - use provided or default
	switch {
	case model != "":
		settings.Embedding.Model = model
	case changed:
		settings.Embedding.Model = defaultModel(domain.DefaultEmbeddingModels(), provider)
	}

	// Cloud providers use their SDK default endpoint
	if changed {
		settings.Embedding.BaseURL = defaultBaseURL(provider)
	}

	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	changed := settings.LLM.Provider != provider
	settings.LLM.Provider = provider

	switch {
	case model != "":
		settings.LLM.Model = model
	case changed:
		settings.LLM.Model = defaultModel(domain.DefaultLLMModels(), provider)
	}

	if changed {
		settings.LLM.BaseURL = defaultBaseURL(provider)
	}

	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetTopK sets how many chunks are retrieved as answer context.
func (s *SettingsService) SetTopK(k int) error {
	if k <= 0 {
		return fmt.Errorf("%w: top_k must be positive, got %d", domain.ErrInvalidInput, k)
	}
	return s.configStore.Set(keyTopK, k)
}

// SetGraphOptions updates the mind map settings.
func (s *SettingsService) SetGraphOptions(opts domain.GraphOptions) error {
	if opts.MaxNodes <= 0 || opts.MaxEdgesPerNode <= 0 {
		return fmt.Errorf("%w: graph limits must be positive", domain.ErrInvalidInput)
	}
	if opts.SimilarityThreshold <= 0 || opts.SimilarityThreshold >= 1 {
		return fmt.Errorf("%w: similarity threshold must be between 0 and 1", domain.ErrInvalidInput)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Graph = opts
	return s.Save(settings)
}

// Validate checks that the configured providers are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("embedding provider %q is not configured", settings.Embedding.Provider)
	}
	if !settings.LLM.IsConfigured() {
		return fmt.Errorf("LLM provider %q is not configured", settings.LLM.Provider)
	}
	if settings.Retrieval.TopK <= 0 {
		return fmt.Errorf("%w: retrieval.top_k must be positive", domain.ErrInvalidInput)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// GetPipelineConfig returns the post-processor pipeline configuration.
// Returns default configuration if nothing is configured.
func (s *SettingsService) GetPipelineConfig() domain.PipelineConfig {
	cfg := domain.DefaultPipelineConfig()

	if processors := s.configStore.GetStringSlice(keyPipelineProcess); len(processors) > 0 {
		cfg.Processors = processors
	}

	for _, name := range cfg.Processors {
		loaded := s.loadProcessorConfig("pipeline." + name + ".")
		if len(loaded) == 0 {
			continue
		}
		if cfg.ProcessorConfigs == nil {
			cfg.ProcessorConfigs = make(map[string]map[string]any)
		}
		existing := cfg.ProcessorConfigs[name]
		if existing == nil {
			existing = make(map[string]any)
		}
		for k, v := range loaded {
			existing[k] = v
		}
		cfg.ProcessorConfigs[name] = existing
	}

	return cfg
}

// loadProcessorConfig loads config keys with a given prefix into a map.
func (s *SettingsService) loadProcessorConfig(prefix string) map[string]any {
	cfg := make(map[string]any)

	knownKeys := []string{"min_length", "max_length", "chunk_size", "overlap"}
	for _, key := range knownKeys {
		if val, exists := s.configStore.Get(prefix + key); exists {
			cfg[key] = val
		}
	}

	return cfg
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func defaultModel(models map[domain.AIProvider]string, provider domain.AIProvider) string {
	return models[provider]
}

// defaultBaseURL returns the endpoint a provider uses when none is configured.
// Cloud providers use their SDK default, signalled by an empty URL.
func defaultBaseURL(provider domain.AIProvider) string {
	if provider.IsLocal() {
		return domain.DefaultOllamaURL
	}
	return ""
}
