package domain

// Chunk is a unit of document text. Chunks are the items that get
// embedded, indexed and returned as answer sources.
type Chunk struct {
	// DocumentID links the chunk to the document it was split from.
	DocumentID string `json:"document_id"`

	// Position is the sequence index of the chunk within its document.
	Position int `json:"position"`

	// Text is the chunk content.
	Text string `json:"text"`
}

// NewChunks builds position-ordered chunks for a document from raw texts.
func NewChunks(documentID string, texts []string) []Chunk {
	chunks := make([]Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = Chunk{DocumentID: documentID, Position: i, Text: text}
	}
	return chunks
}

// ChunkTexts returns the text of each chunk in order.
func ChunkTexts(chunks []Chunk) []string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return texts
}

// ScoredChunk is a chunk paired with its similarity to a query.
type ScoredChunk struct {
	Chunk

	// Score is the cosine similarity to the query, higher is closer.
	Score float64 `json:"score"`
}
