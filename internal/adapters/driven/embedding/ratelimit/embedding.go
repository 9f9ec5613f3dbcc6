// Package ratelimit decorates an embedding service with request pacing and
// batch splitting so hosted backends stay inside their quotas.
package ratelimit

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/docmind/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultBatchSize = 64
	DefaultBurst     = 1
)

// Config holds rate limiting configuration.
type Config struct {
	// RequestsPerSecond is the sustained request rate. Zero disables pacing.
	RequestsPerSecond float64

	// Burst is the token bucket size (default: 1).
	Burst int

	// BatchSize caps how many texts go into one backend request (default: 64).
	BatchSize int
}

// EmbeddingService wraps another embedding service.
type EmbeddingService struct {
	next      driven.EmbeddingService
	limiter   *rate.Limiter
	batchSize int
}

// New wraps next with the configured limits.
func New(next driven.EmbeddingService, cfg Config) *EmbeddingService {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultBurst
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &EmbeddingService{
		next:      next,
		limiter:   rate.NewLimiter(limit, cfg.Burst),
		batchSize: cfg.BatchSize,
	}
}

// Embed waits for a token and embeds a single text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	return s.next.Embed(ctx, text)
}

// EmbedBatch splits texts into batches of at most BatchSize and sends them
// in order, one token per request.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += s.batchSize {
		end := min(start+s.batchSize, len(texts))

		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
		vectors, err := s.next.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		if len(vectors) != end-start {
			return nil, fmt.Errorf("batch %d-%d: got %d vectors for %d texts", start, end, len(vectors), end-start)
		}
		out = append(out, vectors...)
	}
	return out, nil
}

// Dimensions returns the wrapped service's vector size.
func (s *EmbeddingService) Dimensions() int { return s.next.Dimensions() }

// ModelName returns the wrapped service's model.
func (s *EmbeddingService) ModelName() string { return s.next.ModelName() }

// Ping is not rate limited.
func (s *EmbeddingService) Ping(ctx context.Context) error { return s.next.Ping(ctx) }

// Close closes the wrapped service.
func (s *EmbeddingService) Close() error { return s.next.Close() }
