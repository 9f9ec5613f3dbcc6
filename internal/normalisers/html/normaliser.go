// Package html extracts readable text from HTML pages.
package html

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driven"
	"github.com/custodia-labs/docmind/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Pre-compiled patterns, applied in order by Strip.
var (
	titleTag = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	h1Tag    = regexp.MustCompile(`(?is)<h1[^>]*>(.*?)</h1>`)
	dropped  = []*regexp.Regexp{
		regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`),
		regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`),
		regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`),
		regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`),
		regexp.MustCompile(`(?is)<svg[^>]*>.*?</svg>`),
		regexp.MustCompile(`(?s)<!--.*?-->`),
	}
	blockTags = regexp.MustCompile(`(?i)</?(p|div|br|hr|h[1-6]|li|tr|td|th|blockquote|pre|table|section|article)\b[^>]*>`)
	allTags   = regexp.MustCompile(`<[^>]+>`)
)

// Normaliser handles HTML documents.
type Normaliser struct{}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // higher than plaintext
}

// Normalise strips markup, scripts and styles and collapses whitespace.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	source := string(raw.Content)
	content := normalisers.CollapseWhitespace(Strip(source))
	if content == "" {
		return nil, fmt.Errorf("%w: no extractable text in %s", domain.ErrEmptyInput, raw.URI)
	}

	return &driven.NormaliseResult{
		Document: domain.Document{
			ID:        normalisers.IDFromURI(raw.URI),
			URI:       raw.URI,
			Title:     extractTitle(source, raw.URI),
			Content:   content,
			CreatedAt: time.Now(),
		},
	}, nil
}

// Strip returns the visible text of an HTML page. Block elements become
// line breaks so adjacent paragraphs do not run together.
func Strip(content string) string {
	for _, re := range dropped {
		content = re.ReplaceAllString(content, "")
	}
	content = blockTags.ReplaceAllString(content, "\n")
	content = allTags.ReplaceAllString(content, "")
	return strings.TrimSpace(html.UnescapeString(content))
}

// extractTitle prefers <title>, then the first <h1>, then the file name.
func extractTitle(content, uri string) string {
	for _, re := range []*regexp.Regexp{titleTag, h1Tag} {
		if m := re.FindStringSubmatch(content); len(m) > 1 {
			title := normalisers.CollapseWhitespace(html.UnescapeString(allTags.ReplaceAllString(m[1], "")))
			if title != "" {
				return title
			}
		}
	}
	return normalisers.TitleFromURI(uri)
}
