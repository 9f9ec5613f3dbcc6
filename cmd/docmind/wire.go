package main

import (
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/docmind/internal/adapters/driven/ai"
	"github.com/custodia-labs/docmind/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docmind/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docmind/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docmind/internal/adapters/driving/cli"
	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driven"
	"github.com/custodia-labs/docmind/internal/core/services"
	"github.com/custodia-labs/docmind/internal/logger"
	"github.com/custodia-labs/docmind/internal/normalisers"
	"github.com/custodia-labs/docmind/internal/normalisers/docx"
	"github.com/custodia-labs/docmind/internal/normalisers/html"
	"github.com/custodia-labs/docmind/internal/normalisers/markdown"
	"github.com/custodia-labs/docmind/internal/normalisers/pdf"
	"github.com/custodia-labs/docmind/internal/normalisers/plaintext"
	"github.com/custodia-labs/docmind/internal/postprocessors"
)

// stores groups the persistence the services are built on.
type stores struct {
	config  driven.ConfigStore
	prompts driven.PromptStore
	index   driven.IndexStore
	chunks  driven.ChunkStore
	graphs  driven.GraphStore
	close   func()
}

// bootstrap wires adapters into services. Backends are not contacted here:
// an unreachable model surfaces as a typed error on first use.
func bootstrap(opts cli.Options) (*cli.Services, func(), error) {
	st, err := openStores(opts.Ephemeral)
	if err != nil {
		return nil, nil, err
	}

	settingsService := services.NewSettingsService(st.config, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		st.close()
		return nil, nil, fmt.Errorf("load settings: %w", err)
	}

	backends := ai.Init(settings)
	for _, w := range backends.Warnings {
		logger.Debug("AI init: %s", w)
	}

	registry := services.NewIndexRegistry(backends.EmbeddingService, st.index, st.chunks)
	retrieval := services.NewRetrievalEngine(registry, backends.EmbeddingService, settings.Retrieval.TopK)

	synthesizer := services.NewAnswerSynthesizer(backends.LLMService, driven.GenerateOptions{
		MaxTokens: settings.LLM.MaxTokens,
	})
	if st.prompts != nil {
		synthesizer.SetPromptStore(st.prompts)
	}

	ingestService := services.NewIngestService(
		registry,
		services.NewGraphBuilder(backends.EmbeddingService),
		st.graphs,
		settings.Graph,
	)

	pipeline, err := buildPipeline(settingsService.GetPipelineConfig())
	if err != nil {
		backends.Close()
		st.close()
		return nil, nil, err
	}
	ingestService.SetFileIngestion(normalisers.NewRegistry(
		plaintext.New(),
		markdown.New(),
		pdf.New(),
		html.New(),
		docx.New(),
	), pipeline)

	svc := &cli.Services{
		Ingest:   ingestService,
		Query:    services.NewQueryService(retrieval, synthesizer, settings.Retrieval.TopK),
		Document: services.NewDocumentService(st.index, st.chunks),
		Settings: settingsService,
	}

	return svc, func() {
		backends.Close()
		st.close()
	}, nil
}

// openStores opens the on-disk stores under the docmind home directory, or
// in-memory ones when ephemeral.
func openStores(ephemeral bool) (*stores, error) {
	if ephemeral {
		return &stores{
			config: memory.NewConfigStore(),
			index:  memory.NewIndexStore(),
			chunks: memory.NewChunkStore(),
			graphs: memory.NewGraphStore(),
			close:  func() {},
		}, nil
	}

	home, err := file.DefaultDir()
	if err != nil {
		return nil, err
	}

	config, err := file.NewConfigStore(home)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	prompts, err := file.NewPromptStore(filepath.Join(home, "prompts"))
	if err != nil {
		return nil, fmt.Errorf("open prompts: %w", err)
	}

	db, err := sqlite.NewStore(filepath.Join(home, "data"))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	logger.Debug("Database: %s", db.Path())

	return &stores{
		config:  config,
		prompts: prompts,
		index:   db.IndexStore(),
		chunks:  db.ChunkStore(),
		graphs:  db.GraphStore(),
		close: func() {
			if err := db.Close(); err != nil {
				logger.Warn("Closing database: %v", err)
			}
		},
	}, nil
}

func buildPipeline(cfg domain.PipelineConfig) (*postprocessors.Pipeline, error) {
	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)

	pipeline, err := postprocessors.BuildPipeline(registry, cfg)
	if err != nil {
		return nil, fmt.Errorf("build chunking pipeline: %w", err)
	}
	return pipeline, nil
}
