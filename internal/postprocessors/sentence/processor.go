// Package sentence splits document content into one chunk per sentence.
package sentence

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/custodia-labs/docmind/internal/core/domain"
)

// DefaultMinLength drops nothing but empty sentences.
const DefaultMinLength = 1

// abbreviations never end a sentence. Stored lower case without the dot.
var abbreviations = map[string]struct{}{
	"mr": {}, "mrs": {}, "ms": {}, "dr": {}, "prof": {}, "sr": {}, "jr": {}, "st": {},
	"vs": {}, "etc": {}, "e.g": {}, "i.e": {}, "cf": {}, "al": {}, "fig": {}, "no": {},
	"inc": {}, "ltd": {}, "co": {}, "corp": {}, "jan": {}, "feb": {}, "mar": {}, "apr": {},
	"jun": {}, "jul": {}, "aug": {}, "sep": {}, "sept": {}, "oct": {}, "nov": {}, "dec": {},
	"approx": {}, "dept": {}, "est": {}, "vol": {}, "p": {}, "pp": {},
}

// Processor emits one chunk per sentence.
type Processor struct {
	minLength int
}

// Option configures the sentence processor.
type Option func(*Processor)

// WithMinLength drops sentences shorter than n characters.
func WithMinLength(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.minLength = n
		}
	}
}

// New creates a sentence processor.
func New(opts ...Option) *Processor {
	p := &Processor{minLength: DefaultMinLength}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "sentence"
}

// Process splits the document content; input chunks are ignored.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	var texts []string
	for _, s := range Split(doc.Content) {
		if utf8.RuneCountInString(s) >= p.minLength {
			texts = append(texts, s)
		}
	}
	if len(texts) == 0 {
		return nil, nil
	}
	return domain.NewChunks(doc.ID, texts), nil
}

// Split breaks text into trimmed sentences. A sentence ends at '.', '!' or
// '?' (plus any closing quotes or brackets) followed by whitespace and a
// character that can start a sentence. Known abbreviations, initials and
// decimal numbers do not end a sentence.
func Split(text string) []string {
	runes := []rune(text)
	var sentences []string
	start := 0

	for i := 0; i < len(runes); i++ {
		if !isTerminal(runes[i]) {
			continue
		}

		end := i + 1
		for end < len(runes) && (isTerminal(runes[end]) || isCloser(runes[end])) {
			end++
		}
		if end < len(runes) && !unicode.IsSpace(runes[end]) {
			i = end - 1
			continue
		}

		next := end
		for next < len(runes) && unicode.IsSpace(runes[next]) {
			next++
		}
		if next < len(runes) && !canStart(runes[next]) {
			i = end - 1
			continue
		}
		if runes[i] == '.' && end == i+1 && isAbbreviation(runes[start:i]) {
			continue
		}

		if s := strings.TrimSpace(string(runes[start:end])); s != "" {
			sentences = append(sentences, s)
		}
		start = end
		i = end - 1
	}

	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?' || r == '…'
}

func isCloser(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '”', '’', '»':
		return true
	}
	return false
}

func canStart(r rune) bool {
	if unicode.IsUpper(r) || unicode.IsDigit(r) {
		return true
	}
	switch r {
	case '"', '\'', '(', '[', '“', '‘', '«', '-', '*':
		return true
	}
	// Scripts without case.
	return unicode.IsLetter(r) && !unicode.IsLower(r)
}

// isAbbreviation reports whether the word before a dot is an abbreviation
// or a single-letter initial.
func isAbbreviation(before []rune) bool {
	j := len(before)
	for j > 0 && !unicode.IsSpace(before[j-1]) && before[j-1] != '(' {
		j--
	}
	word := strings.ToLower(string(before[j:]))
	if word == "" {
		return false
	}
	if utf8.RuneCountInString(word) == 1 && unicode.IsLetter([]rune(word)[0]) {
		return true
	}
	_, ok := abbreviations[word]
	return ok
}
