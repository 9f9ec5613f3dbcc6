// Package sqlite provides the persistent implementation of the docmind
// storage ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. One database connection backs three stores:
//
//   - IndexStore: vector index snapshots, vectors packed as float32 blobs
//   - ChunkStore: the chunks each index was built from
//   - GraphStore: mind map graphs as JSON
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Applied versions are recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.docmind/data/docmind.db
//
// # Thread Safety
//
// All operations are thread-safe. The store relies on SQLite locking in WAL
// mode with a busy timeout.
package sqlite
