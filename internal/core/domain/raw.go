package domain

// RawDocument represents the opaque bytes of a file handed to ingestion.
// It is the input to normalisation.
type RawDocument struct {
	// URI is the original location (usually a file path).
	URI string

	// MIMEType is the content type (e.g., "application/pdf").
	MIMEType string

	// Content is the raw bytes.
	Content []byte
}
