package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmind/internal/core/domain"
)

func TestGraphCmd_PrintsCytoscapeJSON(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand(t, nil, "graph", "notes")
	require.NoError(t, err)

	var raw struct {
		Nodes []map[string]map[string]any `json:"nodes"`
		Edges []map[string]map[string]any `json:"edges"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &raw))
	require.Len(t, raw.Nodes, 2)
	require.Len(t, raw.Edges, 1)
	assert.Equal(t, "notes_node_0_ab12", raw.Nodes[0]["data"]["id"])
	assert.Equal(t, "notes", raw.Nodes[0]["data"]["doc_id"])
	assert.Equal(t, "notes_node_1_cd34", raw.Edges[0]["data"]["target"])
}

func TestGraphCmd_WritesFile(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	path := filepath.Join(t.TempDir(), "notes.json")

	out, err := executeCommand(t, nil, "graph", "notes", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "2 nodes, 1 edges")

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var graph domain.Graph
	require.NoError(t, json.Unmarshal(data, &graph))
	assert.Equal(t, "notes", graph.DocumentID)
	assert.Len(t, graph.Nodes, 2)
}

func TestGraphCmd_NotFound(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.ingest.err = domain.ErrNotFound

	_, err := executeCommand(t, nil, "graph", "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
