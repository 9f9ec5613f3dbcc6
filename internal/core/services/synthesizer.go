package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driven"
	"github.com/custodia-labs/docmind/internal/logger"
)

// contextSeparator joins chunk texts inside the answer prompt.
const contextSeparator = "\n\n"

// AnswerSynthesizer generates an answer to a question from retrieved chunks.
type AnswerSynthesizer struct {
	llm     driven.LLMService
	prompts driven.PromptStore
	opts    driven.GenerateOptions
}

// NewAnswerSynthesizer creates a synthesizer.
// llm may be nil; synthesis then fails with domain.ErrGenerationUnavailable.
func NewAnswerSynthesizer(llm driven.LLMService, opts driven.GenerateOptions) *AnswerSynthesizer {
	return &AnswerSynthesizer{llm: llm, opts: opts}
}

// SetPromptStore sets the prompt store for loading a custom answer template.
func (s *AnswerSynthesizer) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// Synthesize asks the language model to answer query from chunks and
// returns the generated text verbatim. Chunks are presented in the order given.
func (s *AnswerSynthesizer) Synthesize(ctx context.Context, query string, chunks []domain.Chunk) (string, error) {
	if len(chunks) == 0 {
		return "", domain.ErrEmptyContext
	}
	if s.llm == nil {
		return "", fmt.Errorf("%w: no LLM service configured", domain.ErrGenerationUnavailable)
	}

	prompt := s.BuildPrompt(query, chunks)
	logger.Debug("Generating answer with %s from %d chunks (%d prompt chars)",
		s.llm.ModelName(), len(chunks), len(prompt))

	start := time.Now()
	answer, err := s.llm.Generate(ctx, prompt, s.opts)
	logger.Timing("generate answer", start)
	if err != nil {
		if errors.Is(err, domain.ErrGenerationUnavailable) {
			return "", err
		}
		return "", fmt.Errorf("generate answer: %w", err)
	}
	return answer, nil
}

// BuildPrompt fills the answer template with the chunk texts and the question.
func (s *AnswerSynthesizer) BuildPrompt(query string, chunks []domain.Chunk) string {
	contextText := strings.Join(domain.ChunkTexts(chunks), contextSeparator)
	return fmt.Sprintf(s.template(), contextText, query)
}

// template returns the custom answer template when it is usable.
func (s *AnswerSynthesizer) template() string {
	if s.prompts == nil {
		return driven.DefaultAnswerPrompt
	}
	tpl, err := s.prompts.Load(driven.PromptAnswer)
	if err != nil || tpl == "" {
		return driven.DefaultAnswerPrompt
	}
	if strings.Count(tpl, "%s") != 2 {
		logger.Warn("Answer prompt needs exactly two %%s placeholders (context, question); using built-in prompt")
		return driven.DefaultAnswerPrompt
	}
	return tpl
}
