package pdf

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmind/internal/core/domain"
)

func TestSupportedMIMETypes(t *testing.T) {
	assert.Equal(t, []string{"application/pdf"}, New().SupportedMIMETypes())
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 50, New().Priority())
}

func TestNormalise_Success(t *testing.T) {
	n := NewWithExtractor(func(content []byte) (string, error) {
		assert.Equal(t, []byte("%PDF"), content)
		return "Quarterly Report\n\nRevenue grew.\n  Costs fell.\n", nil
	})

	result, err := n.Normalise(context.Background(), &domain.RawDocument{
		URI:      "/reports/q3_report.pdf",
		MIMEType: "application/pdf",
		Content:  []byte("%PDF"),
	})
	require.NoError(t, err)

	doc := result.Document
	assert.Equal(t, "q3_report", doc.ID)
	assert.Equal(t, "Quarterly Report", doc.Title)
	assert.Equal(t, "Quarterly Report Revenue grew. Costs fell.", doc.Content)
}

func TestNormalise_ExtractError(t *testing.T) {
	n := NewWithExtractor(func([]byte) (string, error) {
		return "", errors.New("bad xref")
	})

	_, err := n.Normalise(context.Background(), &domain.RawDocument{URI: "x.pdf", MIMEType: "application/pdf"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "bad xref")
}

func TestNormalise_NoText(t *testing.T) {
	n := NewWithExtractor(func([]byte) (string, error) { return "\n \n", nil })

	_, err := n.Normalise(context.Background(), &domain.RawDocument{URI: "scan.pdf", MIMEType: "application/pdf"})
	assert.ErrorIs(t, err, domain.ErrEmptyInput)
}

func TestNormalise_NilDocument(t *testing.T) {
	_, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNormalise_InvalidBytes(t *testing.T) {
	_, err := New().Normalise(context.Background(), &domain.RawDocument{
		URI:      "broken.pdf",
		MIMEType: "application/pdf",
		Content:  []byte("this is not a pdf"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		uri      string
		expected string
	}{
		{"first line", "Document Title\n\nSome content here.", "/doc.pdf", "Document Title"},
		{"skips empty lines", "\n\n\nActual Title\nContent", "/doc.pdf", "Actual Title"},
		{"falls back to filename", "", "/path/to/my_document.pdf", "my document"},
		{"skips long lines", strings.Repeat("x", 250) + "\nShort Title\nContent", "/doc.pdf", "Short Title"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, extractTitle(tc.content, tc.uri))
		})
	}
}
