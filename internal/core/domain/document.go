package domain

import "time"

// Document is the normalised text of an ingested file.
// It is the input to chunking.
type Document struct {
	// ID is the document identifier; indexes and graphs are keyed by it.
	ID string

	// URI is the original location (file path, URL, etc).
	URI string

	// Title is the human-readable title.
	Title string

	// Content is the full text content after normalisation.
	Content string

	// CreatedAt is when the document was normalised.
	CreatedAt time.Time
}
