package postprocessors

import (
	"fmt"

	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driven"
	"github.com/custodia-labs/docmind/internal/postprocessors/chunker"
	"github.com/custodia-labs/docmind/internal/postprocessors/merge"
	"github.com/custodia-labs/docmind/internal/postprocessors/sentence"
)

// RegisterDefaults registers all built-in processors with the registry.
func RegisterDefaults(r *Registry) {
	r.Register("sentence", buildSentence)
	r.Register("merge", buildMerge)
	r.Register("chunker", buildChunker)
}

// BuildPipeline assembles the processors named in cfg, in order.
// An empty processor list falls back to the default pipeline.
func BuildPipeline(r *Registry, cfg domain.PipelineConfig) (*Pipeline, error) {
	if len(cfg.Processors) == 0 {
		cfg = domain.DefaultPipelineConfig()
	}

	pipeline := NewPipeline()
	for _, name := range cfg.Processors {
		proc, err := r.Build(name, cfg.GetProcessorConfig(name))
		if err != nil {
			return nil, fmt.Errorf("build pipeline: %w", err)
		}
		pipeline.Add(proc)
	}
	return pipeline, nil
}

// buildSentence supports:
//   - min_length (int): shortest sentence kept, in characters (default: 1)
func buildSentence(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []sentence.Option
	if n := getIntFromConfig(cfg, "min_length"); n > 0 {
		opts = append(opts, sentence.WithMinLength(n))
	}
	return sentence.New(opts...), nil
}

// buildMerge supports:
//   - max_length (int): character budget per merged chunk (default: 500)
func buildMerge(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []merge.Option
	if n := getIntFromConfig(cfg, "max_length"); n > 0 {
		opts = append(opts, merge.WithMaxLength(n))
	}
	return merge.New(opts...), nil
}

// buildChunker supports:
//   - chunk_size (int): characters per chunk (default: 1000)
//   - overlap (int): overlapping characters between chunks (default: 200)
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option

	if size := getIntFromConfig(cfg, "chunk_size"); size > 0 {
		opts = append(opts, chunker.WithChunkSize(size))
	}
	if _, ok := cfg["overlap"]; ok {
		opts = append(opts, chunker.WithOverlap(getIntFromConfig(cfg, "overlap")))
	}

	return chunker.New(opts...), nil
}

// getIntFromConfig extracts an int from a config map.
// TOML decodes integers as int64 and JSON as float64.
func getIntFromConfig(cfg map[string]any, key string) int {
	switch v := cfg[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
