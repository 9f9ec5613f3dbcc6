package chunks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmind/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docmind/internal/core/domain"
)

// MockDocumentService implements driving.DocumentService for testing.
type MockDocumentService struct {
	GetChunksFunc func(ctx context.Context, documentID string) ([]domain.Chunk, error)
}

func (m *MockDocumentService) List(_ context.Context) ([]domain.DocumentSummary, error) {
	return nil, nil
}

func (m *MockDocumentService) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	if m.GetChunksFunc != nil {
		return m.GetChunksFunc(ctx, documentID)
	}
	return nil, nil
}

func manyChunks(n int) []domain.Chunk {
	texts := make([]string, n)
	for i := range texts {
		texts[i] = fmt.Sprintf("Passage number %d.", i)
	}
	return domain.NewChunks("notes", texts)
}

func TestView_SetDocument_LoadsChunks(t *testing.T) {
	mock := &MockDocumentService{
		GetChunksFunc: func(_ context.Context, documentID string) ([]domain.Chunk, error) {
			assert.Equal(t, "notes", documentID)
			return manyChunks(2), nil
		},
	}
	view := NewView(nil, mock)

	cmd := view.SetDocument("notes", messages.ViewAsk)
	require.NotNil(t, cmd)
	assert.Contains(t, view.View(), "Loading chunks...")

	msg := cmd()
	view.Update(msg)

	assert.Len(t, view.Chunks(), 2)
	out := view.View()
	assert.Contains(t, out, "Chunks - notes (2)")
	assert.Contains(t, out, "[0]")
	assert.Contains(t, out, "Passage number 1.")
}

func TestView_SetDocument_NoService(t *testing.T) {
	view := NewView(nil, nil)

	msg := view.SetDocument("notes", messages.ViewDocuments)()
	view.Update(msg)

	assert.ErrorIs(t, view.Err(), ErrNoDocumentService)
}

func TestView_IgnoresStaleLoads(t *testing.T) {
	view := NewView(nil, nil)
	view.SetDocument("current", messages.ViewDocuments)

	view.Update(messages.ChunksLoaded{DocumentID: "previous", Chunks: manyChunks(3)})

	assert.Empty(t, view.Chunks())
}

func TestView_LoadError(t *testing.T) {
	view := NewView(nil, nil)
	view.SetDocument("notes", messages.ViewDocuments)

	view.Update(messages.ChunksLoaded{DocumentID: "notes", Err: errors.New("not found")})

	assert.Contains(t, view.View(), "Error: not found")
}

func TestView_EmptyChunks(t *testing.T) {
	view := NewView(nil, nil)
	view.SetDocument("notes", messages.ViewDocuments)

	view.Update(messages.ChunksLoaded{DocumentID: "notes"})

	assert.Contains(t, view.View(), "(No chunks)")
}

func TestView_Scrolling(t *testing.T) {
	view := NewView(nil, nil)
	view.SetDimensions(80, 12)
	view.SetDocument("notes", messages.ViewDocuments)
	view.Update(messages.ChunksLoaded{DocumentID: "notes", Chunks: manyChunks(10)})

	maxOffset := view.maxScrollOffset()
	require.Positive(t, maxOffset)

	view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	assert.Equal(t, 1, view.scrollOffset)

	view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'G'}})
	assert.Equal(t, maxOffset, view.scrollOffset)
	assert.Contains(t, view.View(), "Passage number 9.")

	view.Update(tea.KeyMsg{Type: tea.KeyPgDown})
	assert.Equal(t, maxOffset, view.scrollOffset)

	view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'g'}})
	assert.Equal(t, 0, view.scrollOffset)

	view.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, view.scrollOffset)
}

func TestView_WrapsLongChunks(t *testing.T) {
	view := NewView(nil, nil)
	view.SetDimensions(40, 40)
	view.SetDocument("notes", messages.ViewDocuments)

	long := strings.TrimSpace(strings.Repeat("word ", 30))
	view.Update(messages.ChunksLoaded{DocumentID: "notes", Chunks: domain.NewChunks("notes", []string{long})})

	assert.Greater(t, len(view.lines), 2)
	for _, line := range view.lines {
		assert.LessOrEqual(t, len([]rune(line)), 40)
	}
}

func TestView_EscReturnsToCaller(t *testing.T) {
	view := NewView(nil, nil)
	view.SetDocument("notes", messages.ViewAsk)

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)

	assert.Equal(t, messages.ViewChanged{View: messages.ViewAsk}, cmd())
}
