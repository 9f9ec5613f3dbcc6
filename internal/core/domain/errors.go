package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnsupportedType indicates an unknown file type or provider.
	ErrUnsupportedType = errors.New("unsupported type")

	// Index Errors.

	// ErrEmptyInput indicates an index build or ingest was given no chunks.
	ErrEmptyInput = errors.New("empty input")

	// ErrIndexNotFound indicates no index has been persisted for a document.
	ErrIndexNotFound = errors.New("index not found")

	// ErrCorruptIndex indicates persisted index data exists but cannot be decoded.
	ErrCorruptIndex = errors.New("corrupt index data")

	// ErrEmptyIndex indicates a search was run against an index with zero items.
	ErrEmptyIndex = errors.New("index is empty")

	// ErrDimensionMismatch indicates vectors of different sizes were mixed.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// Answer Errors.

	// ErrEmptyContext indicates answer synthesis was asked to work without context.
	// The generation backend is never called in this case.
	ErrEmptyContext = errors.New("no context to answer from")

	// Backend Errors.

	// ErrEmbeddingBackend indicates the embedding service failed or is unreachable.
	ErrEmbeddingBackend = errors.New("embedding backend error")

	// ErrGenerationUnavailable indicates the language model service is unreachable
	// or not configured.
	ErrGenerationUnavailable = errors.New("generation backend unavailable")
)
