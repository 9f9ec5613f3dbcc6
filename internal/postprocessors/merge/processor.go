// Package merge packs consecutive chunks into larger ones.
package merge

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/docmind/internal/core/domain"
)

// DefaultMaxLength is the default character budget of a merged chunk.
const DefaultMaxLength = 500

// Processor joins neighbouring chunks with a space until adding the next one
// would exceed the character budget. A chunk already over budget stays whole.
type Processor struct {
	maxLength int
}

// Option configures the merge processor.
type Option func(*Processor)

// WithMaxLength sets the character budget.
func WithMaxLength(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.maxLength = n
		}
	}
}

// New creates a merge processor.
func New(opts ...Option) *Processor {
	p := &Processor{maxLength: DefaultMaxLength}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "merge"
}

// Process merges the incoming chunks and renumbers them.
func (p *Processor) Process(_ context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	var texts []string
	var current strings.Builder
	currentLen := 0

	for _, c := range chunks {
		n := utf8.RuneCountInString(c.Text)
		if currentLen > 0 && currentLen+1+n > p.maxLength {
			texts = append(texts, current.String())
			current.Reset()
			currentLen = 0
		}
		if currentLen > 0 {
			current.WriteByte(' ')
			currentLen++
		}
		current.WriteString(c.Text)
		currentLen += n
	}
	if currentLen > 0 {
		texts = append(texts, current.String())
	}

	return domain.NewChunks(doc.ID, texts), nil
}
