// Package markdown extracts readable text from Markdown files.
package markdown

import (
	"bufio"
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driven"
	"github.com/custodia-labs/docmind/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

var (
	fence        = regexp.MustCompile("(?m)^\\s*(```|~~~).*$")
	inlineCode   = regexp.MustCompile("`([^`]+)`")
	images       = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	links        = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	headings     = regexp.MustCompile(`(?m)^\s{0,3}#{1,6}\s+`)
	emphasis     = regexp.MustCompile(`(\*\*|__|\*|_)(\S(?:.*?\S)?)(\*\*|__|\*|_)`)
	blockquotes  = regexp.MustCompile(`(?m)^\s*>\s?`)
	rules        = regexp.MustCompile(`(?m)^\s*([-*_])(\s*([-*_])){2,}\s*$`)
	bullets      = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	numbered     = regexp.MustCompile(`(?m)^\s*\d+[.)]\s+`)
	tableDivider = regexp.MustCompile(`(?m)^\s*\|?\s*:?-{3,}.*$`)
	htmlTags     = regexp.MustCompile(`</?[a-zA-Z][^>]*>`)
)

// Normaliser handles Markdown documents.
type Normaliser struct{}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // higher than plaintext
}

// Normalise strips Markdown syntax and collapses whitespace.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	source := string(raw.Content)
	content := normalisers.CollapseWhitespace(Strip(source))
	if content == "" {
		return nil, fmt.Errorf("%w: no extractable text in %s", domain.ErrEmptyInput, raw.URI)
	}

	title := firstHeading(source)
	if title == "" {
		title = normalisers.TitleFromURI(raw.URI)
	}

	return &driven.NormaliseResult{
		Document: domain.Document{
			ID:        normalisers.IDFromURI(raw.URI),
			URI:       raw.URI,
			Title:     title,
			Content:   content,
			CreatedAt: time.Now(),
		},
	}, nil
}

// Strip removes Markdown formatting, keeping the text it decorates.
// Code inside fenced blocks is kept; only the fences go.
func Strip(content string) string {
	content = fence.ReplaceAllString(content, "")
	content = images.ReplaceAllString(content, "$1")
	content = links.ReplaceAllString(content, "$1")
	content = inlineCode.ReplaceAllString(content, "$1")
	content = htmlTags.ReplaceAllString(content, "")
	content = rules.ReplaceAllString(content, "")
	content = tableDivider.ReplaceAllString(content, "")
	content = headings.ReplaceAllString(content, "")
	content = blockquotes.ReplaceAllString(content, "")
	content = bullets.ReplaceAllString(content, "")
	content = numbered.ReplaceAllString(content, "")
	content = emphasis.ReplaceAllString(content, "$2")
	content = strings.ReplaceAll(content, "|", " ")
	return strings.TrimSpace(content)
}

// firstHeading returns the text of the first level-one heading.
func firstHeading(content string) string {
	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(Strip(strings.TrimPrefix(line, "# ")))
		}
	}
	return ""
}
