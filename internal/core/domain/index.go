package domain

import "time"

// IndexSnapshot is the persisted form of a document's vector index.
// Vectors[i] is the embedding of Chunks[i].
type IndexSnapshot struct {
	// DocumentID identifies the indexed document.
	DocumentID string

	// Model is the embedding model that produced the vectors.
	Model string

	// Dimensions is the length of every vector in the snapshot.
	Dimensions int

	// Chunks are the indexed items in insertion order.
	Chunks []Chunk

	// Vectors are the embeddings, parallel to Chunks.
	Vectors [][]float32

	// BuiltAt is when the index was built.
	BuiltAt time.Time
}

// Validate checks that the snapshot is internally consistent.
func (s *IndexSnapshot) Validate() error {
	if s.DocumentID == "" {
		return ErrInvalidInput
	}
	if len(s.Chunks) != len(s.Vectors) {
		return ErrCorruptIndex
	}
	for _, v := range s.Vectors {
		if len(v) != s.Dimensions {
			return ErrDimensionMismatch
		}
	}
	return nil
}

// DocumentSummary describes an indexed document.
type DocumentSummary struct {
	// DocumentID identifies the document.
	DocumentID string `json:"document_id"`

	// Model is the embedding model used for the index.
	Model string `json:"model"`

	// ChunkCount is the number of indexed chunks.
	ChunkCount int `json:"chunk_count"`

	// BuiltAt is when the index was last rebuilt.
	BuiltAt time.Time `json:"built_at"`
}
