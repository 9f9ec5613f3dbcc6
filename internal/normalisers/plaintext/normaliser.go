// Package plaintext extracts text from plain text files.
package plaintext

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driven"
	"github.com/custodia-labs/docmind/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles plain text documents.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
// Markdown is included as a fallback when no markdown normaliser is registered.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/markdown",
		"text/x-markdown",
		"text/csv",
	}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 5 // Fallback normaliser
}

// Normalise collapses whitespace in the raw bytes.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	content := normalisers.CollapseWhitespace(string(raw.Content))
	if content == "" {
		return nil, fmt.Errorf("%w: no extractable text in %s", domain.ErrEmptyInput, raw.URI)
	}

	return &driven.NormaliseResult{
		Document: domain.Document{
			ID:        normalisers.IDFromURI(raw.URI),
			URI:       raw.URI,
			Title:     normalisers.TitleFromURI(raw.URI),
			Content:   content,
			CreatedAt: time.Now(),
		},
	}, nil
}
