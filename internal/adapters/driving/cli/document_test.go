package cli

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmind/internal/core/domain"
)

func TestListCmd_Empty(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand(t, nil, "list")

	require.NoError(t, err)
	assert.Contains(t, out, "No documents indexed. Run 'docmind ingest <file>' first.")
}

func TestListCmd_Table(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.document.docs = []domain.DocumentSummary{
		{DocumentID: "notes", Model: "nomic-embed-text", ChunkCount: 12, BuiltAt: time.Now()},
		{DocumentID: "a-very-long-document-identifier-that-overflows", Model: "text-embedding-3-small", ChunkCount: 3, BuiltAt: time.Now()},
	}

	out, err := executeCommand(t, nil, "ls")

	require.NoError(t, err)
	assert.Contains(t, out, "DOCUMENT")
	assert.Contains(t, out, "notes")
	assert.Contains(t, out, "nomic-embed-text")
	assert.Contains(t, out, "a-very-long-document-identi...")
}

func TestListCmd_JSON(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.document.docs = []domain.DocumentSummary{{DocumentID: "notes", ChunkCount: 2}}

	out, err := executeCommand(t, nil, "list", "--json")
	require.NoError(t, err)

	var got []domain.DocumentSummary
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "notes", got[0].DocumentID)
}

func TestListCmd_RejectsArgs(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand(t, nil, "list", "extra")

	assert.Error(t, err)
}

func TestChunksCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.document.chunks = domain.NewChunks("notes", []string{"Cats purr.", "Dogs bark."})

	out, err := executeCommand(t, nil, "chunks", "notes")

	require.NoError(t, err)
	assert.Contains(t, out, "   0  Cats purr.")
	assert.Contains(t, out, "   1  Dogs bark.")
}

func TestChunksCmd_NotFound(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.document.err = domain.ErrNotFound

	_, err := executeCommand(t, nil, "chunks", "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestChunksCmd_RequiresArg(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand(t, nil, "chunks")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestListCmd_ServiceError(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.document.err = errors.New("disk I/O error")

	_, err := executeCommand(t, nil, "list")

	assert.EqualError(t, err, "disk I/O error")
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
		{"héllo wörld", 8, "héllo..."},
		{"abcdef", 3, "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, truncate(tt.in, tt.maxLen))
		})
	}
}
