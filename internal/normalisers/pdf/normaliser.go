// Package pdf extracts text from PDF files using ledongthuc/pdf.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driven"
	"github.com/custodia-labs/docmind/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// maxTitleLength bounds how long a line may be to serve as a title.
const maxTitleLength = 200

// ExtractFunc returns the plain text of a PDF.
type ExtractFunc func(content []byte) (string, error)

// Normaliser handles PDF documents.
type Normaliser struct {
	extract ExtractFunc
}

// New creates a PDF normaliser backed by ledongthuc/pdf.
func New() *Normaliser {
	return &Normaliser{extract: ExtractText}
}

// NewWithExtractor creates a PDF normaliser with a custom text extractor.
func NewWithExtractor(extract ExtractFunc) *Normaliser {
	return &Normaliser{extract: extract}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise extracts the text layer of every page.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	text, err := n.extract(raw.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: read pdf %s: %w", domain.ErrInvalidInput, raw.URI, err)
	}

	content := normalisers.CollapseWhitespace(text)
	if content == "" {
		return nil, fmt.Errorf("%w: no extractable text in %s", domain.ErrEmptyInput, raw.URI)
	}

	return &driven.NormaliseResult{
		Document: domain.Document{
			ID:        normalisers.IDFromURI(raw.URI),
			URI:       raw.URI,
			Title:     extractTitle(text, raw.URI),
			Content:   content,
			CreatedAt: time.Now(),
		},
	}, nil
}

// ExtractText reads the plain text of an in-memory PDF.
// The parser panics on some malformed files; that is reported as an error.
func ExtractText(content []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	rdr, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", err
	}

	plain, err := rdr.GetPlainText()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// extractTitle uses the first short non-empty line, else the file name.
func extractTitle(text, uri string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.ReplaceAll(line, "\x00", ""))
		if line == "" {
			continue
		}
		if len(line) <= maxTitleLength {
			return line
		}
	}
	return normalisers.TitleFromURI(uri)
}
