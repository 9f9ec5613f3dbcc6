package normalisers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driven"
)

type stubNormaliser struct {
	name     string
	mimes    []string
	priority int
}

func (s *stubNormaliser) SupportedMIMETypes() []string { return s.mimes }
func (s *stubNormaliser) Priority() int                { return s.priority }

func (s *stubNormaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	return &driven.NormaliseResult{Document: domain.Document{ID: s.name, URI: raw.URI}}, nil
}

func TestRegistry_PicksHighestPriority(t *testing.T) {
	fallback := &stubNormaliser{name: "fallback", mimes: []string{"text/plain", "text/markdown"}, priority: 5}
	specific := &stubNormaliser{name: "markdown", mimes: []string{"text/markdown"}, priority: 50}
	registry := NewRegistry(fallback, specific)

	result, err := registry.Normalise(context.Background(), &domain.RawDocument{URI: "a.md", MIMEType: "text/markdown"})
	require.NoError(t, err)
	assert.Equal(t, "markdown", result.Document.ID)

	result, err = registry.Normalise(context.Background(), &domain.RawDocument{URI: "a.txt", MIMEType: "Text/Plain; charset=utf-8"})
	require.NoError(t, err)
	assert.Equal(t, "fallback", result.Document.ID)
}

func TestRegistry_EqualPriorityKeepsFirst(t *testing.T) {
	first := &stubNormaliser{name: "first", mimes: []string{"text/plain"}, priority: 5}
	second := &stubNormaliser{name: "second", mimes: []string{"text/plain"}, priority: 5}
	registry := NewRegistry()
	registry.Register(first)
	registry.Register(second)

	result, err := registry.Normalise(context.Background(), &domain.RawDocument{MIMEType: "text/plain"})
	require.NoError(t, err)
	assert.Equal(t, "first", result.Document.ID)
}

func TestRegistry_UnsupportedType(t *testing.T) {
	registry := NewRegistry(&stubNormaliser{mimes: []string{"text/plain"}})

	_, err := registry.Normalise(context.Background(), &domain.RawDocument{MIMEType: "image/png"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)

	_, err = registry.Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegistry_SupportedMIMETypes(t *testing.T) {
	registry := NewRegistry(
		&stubNormaliser{mimes: []string{"text/plain", "application/pdf"}},
		&stubNormaliser{mimes: []string{"text/plain"}},
	)

	assert.Equal(t, []string{"application/pdf", "text/plain"}, registry.SupportedMIMETypes())
}

func TestCollapseWhitespace(t *testing.T) {
	assert.Equal(t, "a b c", CollapseWhitespace("  a\n\n b\t\tc \r\n"))
	assert.Equal(t, "", CollapseWhitespace(" \n\t "))
}

func TestURIHelpers(t *testing.T) {
	assert.Equal(t, "annual_report-2024", IDFromURI("/docs/annual_report-2024.pdf"))
	assert.Equal(t, "annual report 2024", TitleFromURI("/docs/annual_report-2024.pdf"))
	assert.Equal(t, "notes", IDFromURI("notes"))
}
