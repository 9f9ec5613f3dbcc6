package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/docmind/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driven"
)

// DatabaseFile is the database name inside the data directory.
const DatabaseFile = "docmind.db"

// Store is a unified SQLite-based storage that provides access to
// all storage port interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store in the specified data directory.
// If dataDir is empty, defaults to ~/.docmind/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".docmind", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)

	// WAL mode lets the MCP server read while the CLI ingests.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// IndexStore returns an IndexStore backed by this store.
func (s *Store) IndexStore() driven.IndexStore {
	return &indexStore{store: s}
}

// ChunkStore returns a ChunkStore backed by this store.
func (s *Store) ChunkStore() driven.ChunkStore {
	return &chunkStore{store: s}
}

// GraphStore returns a GraphStore backed by this store.
func (s *Store) GraphStore() driven.GraphStore {
	return &graphStore{store: s}
}

// migrate runs all pending up migrations, each in its own transaction
// together with its schema_migrations row.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if err := s.applyMigration(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *Store) applyMigration(version int, script string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(script); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// ==================== Index Store ====================

// indexStore implements driven.IndexStore.
type indexStore struct {
	store *Store
}

var _ driven.IndexStore = (*indexStore)(nil)

// Exists reports whether a snapshot is stored for the document.
func (s *indexStore) Exists(ctx context.Context, documentID string) (bool, error) {
	var one int
	err := s.store.db.QueryRowContext(ctx,
		"SELECT 1 FROM vector_indexes WHERE document_id = ?", documentID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking index: %w", err)
	}
	return true, nil
}

// Save stores or replaces the snapshot for its document.
func (s *indexStore) Save(ctx context.Context, snapshot *domain.IndexSnapshot) error {
	if snapshot == nil || snapshot.DocumentID == "" {
		return domain.ErrInvalidInput
	}
	if err := snapshot.Validate(); err != nil {
		return fmt.Errorf("saving index %q: %w", snapshot.DocumentID, err)
	}

	chunksJSON, err := json.Marshal(snapshot.Chunks)
	if err != nil {
		return fmt.Errorf("marshalling chunks: %w", err)
	}

	builtAt := snapshot.BuiltAt
	if builtAt.IsZero() {
		builtAt = time.Now()
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO vector_indexes (document_id, model, dimensions, chunk_count, chunks, vectors, built_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(document_id) DO UPDATE SET
			model = excluded.model,
			dimensions = excluded.dimensions,
			chunk_count = excluded.chunk_count,
			chunks = excluded.chunks,
			vectors = excluded.vectors,
			built_at = excluded.built_at
	`, snapshot.DocumentID, snapshot.Model, snapshot.Dimensions, len(snapshot.Chunks),
		string(chunksJSON), packVectors(snapshot.Vectors), builtAt.UTC())
	if err != nil {
		return fmt.Errorf("saving index: %w", err)
	}
	return nil
}

// Load reads the snapshot for a document.
// Rows whose blob, chunk list and header disagree are reported as corrupt.
func (s *indexStore) Load(ctx context.Context, documentID string) (*domain.IndexSnapshot, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT model, dimensions, chunk_count, chunks, vectors, built_at
		FROM vector_indexes WHERE document_id = ?
	`, documentID)

	var (
		snapshot   = domain.IndexSnapshot{DocumentID: documentID}
		chunkCount int
		chunksJSON string
		blob       []byte
		builtAt    sql.NullTime
	)
	err := row.Scan(&snapshot.Model, &snapshot.Dimensions, &chunkCount, &chunksJSON, &blob, &builtAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrIndexNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: scanning index %q: %w", domain.ErrCorruptIndex, documentID, err)
	}

	if err := json.Unmarshal([]byte(chunksJSON), &snapshot.Chunks); err != nil {
		return nil, fmt.Errorf("%w: decoding chunks of %q: %w", domain.ErrCorruptIndex, documentID, err)
	}
	if len(snapshot.Chunks) != chunkCount {
		return nil, fmt.Errorf("%w: %q lists %d chunks, header says %d",
			domain.ErrCorruptIndex, documentID, len(snapshot.Chunks), chunkCount)
	}

	snapshot.Vectors, err = unpackVectors(blob, chunkCount, snapshot.Dimensions)
	if err != nil {
		return nil, fmt.Errorf("%w: vectors of %q: %w", domain.ErrCorruptIndex, documentID, err)
	}
	if builtAt.Valid {
		snapshot.BuiltAt = builtAt.Time
	}

	return &snapshot, nil
}

// List describes every stored index, ordered by document ID.
func (s *indexStore) List(ctx context.Context) ([]domain.DocumentSummary, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT document_id, model, chunk_count, built_at
		FROM vector_indexes ORDER BY document_id
	`)
	if err != nil {
		return nil, fmt.Errorf("listing indexes: %w", err)
	}
	defer rows.Close()

	summaries := []domain.DocumentSummary{}
	for rows.Next() {
		var (
			summary domain.DocumentSummary
			builtAt sql.NullTime
		)
		if err := rows.Scan(&summary.DocumentID, &summary.Model, &summary.ChunkCount, &builtAt); err != nil {
			return nil, fmt.Errorf("scanning index summary: %w", err)
		}
		if builtAt.Valid {
			summary.BuiltAt = builtAt.Time
		}
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

// Delete removes a document's snapshot.
func (s *indexStore) Delete(ctx context.Context, documentID string) error {
	if _, err := s.store.db.ExecContext(ctx,
		"DELETE FROM vector_indexes WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("deleting index: %w", err)
	}
	return nil
}

// ==================== Chunk Store ====================

// chunkStore implements driven.ChunkStore.
type chunkStore struct {
	store *Store
}

var _ driven.ChunkStore = (*chunkStore)(nil)

// SaveChunks replaces all chunks of a document in one transaction.
func (s *chunkStore) SaveChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error {
	if documentID == "" {
		return domain.ErrInvalidInput
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("clearing chunks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO chunks (document_id, position, text) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing chunk insert: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		if _, err := stmt.ExecContext(ctx, documentID, chunk.Position, chunk.Text); err != nil {
			return fmt.Errorf("saving chunk %d: %w", chunk.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing chunks: %w", err)
	}
	return nil
}

// GetChunks returns a document's chunks in position order.
func (s *chunkStore) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT position, text FROM chunks
		WHERE document_id = ? ORDER BY position
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk
	for rows.Next() {
		chunk := domain.Chunk{DocumentID: documentID}
		if err := rows.Scan(&chunk.Position, &chunk.Text); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	if len(chunks) == 0 {
		return nil, domain.ErrNotFound
	}
	return chunks, nil
}

// ==================== Graph Store ====================

// graphStore implements driven.GraphStore.
type graphStore struct {
	store *Store
}

var _ driven.GraphStore = (*graphStore)(nil)

// SaveGraph stores or replaces the graph for its document.
func (s *graphStore) SaveGraph(ctx context.Context, graph *domain.Graph) error {
	if graph == nil || graph.DocumentID == "" {
		return domain.ErrInvalidInput
	}

	data, err := json.Marshal(graph)
	if err != nil {
		return fmt.Errorf("marshalling graph: %w", err)
	}

	createdAt := graph.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO graphs (document_id, data, created_at) VALUES (?, ?, ?)
		ON CONFLICT(document_id) DO UPDATE SET
			data = excluded.data,
			created_at = excluded.created_at
	`, graph.DocumentID, string(data), createdAt.UTC())
	if err != nil {
		return fmt.Errorf("saving graph: %w", err)
	}
	return nil
}

// GetGraph returns the stored graph for a document.
func (s *graphStore) GetGraph(ctx context.Context, documentID string) (*domain.Graph, error) {
	var data string
	err := s.store.db.QueryRowContext(ctx,
		"SELECT data FROM graphs WHERE document_id = ?", documentID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying graph: %w", err)
	}

	var graph domain.Graph
	if err := json.Unmarshal([]byte(data), &graph); err != nil {
		return nil, fmt.Errorf("decoding graph %q: %w", documentID, err)
	}
	if graph.Nodes == nil {
		graph.Nodes = []domain.GraphNode{}
	}
	if graph.Edges == nil {
		graph.Edges = []domain.GraphEdge{}
	}
	return &graph, nil
}

// ==================== Helper Functions ====================

// packVectors concatenates vectors as little-endian float32 values.
func packVectors(vectors [][]float32) []byte {
	size := 0
	for _, v := range vectors {
		size += len(v)
	}
	buf := make([]byte, 0, size*4)
	for _, v := range vectors {
		for _, f := range v {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
		}
	}
	return buf
}

// unpackVectors splits a packed blob into count vectors of dims values.
func unpackVectors(data []byte, count, dims int) ([][]float32, error) {
	if count < 0 || dims < 0 {
		return nil, fmt.Errorf("negative shape %dx%d", count, dims)
	}
	if len(data) != count*dims*4 {
		return nil, fmt.Errorf("blob has %d bytes, want %d for %dx%d", len(data), count*dims*4, count, dims)
	}

	vectors := make([][]float32, count)
	for i := range vectors {
		v := make([]float32, dims)
		for j := range v {
			offset := (i*dims + j) * 4
			v[j] = math.Float32frombits(binary.LittleEndian.Uint32(data[offset:]))
		}
		vectors[i] = v
	}
	return vectors, nil
}
