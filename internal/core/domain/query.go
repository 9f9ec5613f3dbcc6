package domain

// DefaultTopK is the number of chunks retrieved as answer context.
const DefaultTopK = 3

// QueryResult is a generated answer and the chunks it was grounded on.
type QueryResult struct {
	// Answer is the generated text, returned verbatim from the model.
	Answer string `json:"answer"`

	// Sources are the retrieved chunks in rank order.
	Sources []Chunk `json:"sources"`
}
