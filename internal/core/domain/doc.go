// Package domain defines the core business entities for docmind.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Chunk: A unit of document text, the item that gets embedded and indexed
//   - IndexSnapshot: The persisted form of a document's vector index
//   - Graph: The chunk similarity graph ("mind map") of a document
//   - QueryResult: A generated answer and the chunks it was grounded on
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
