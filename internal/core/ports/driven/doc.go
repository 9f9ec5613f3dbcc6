// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - EmbeddingService: Turns text into vectors for indexing and retrieval
//   - IndexStore: Persists one vector index snapshot per document
//   - ChunkStore: Persists the chunks a document was indexed from
//   - GraphStore: Persists the mind map of each document
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Answer generation. Without it, queries fail with
//     domain.ErrGenerationUnavailable while ingest and retrieval keep working.
//   - PromptStore: Custom prompt templates. Without it, built-in prompts are used.
//   - Normaliser, NormaliserRegistry, PostProcessor: File ingestion. Callers
//     that already hold chunks skip them.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
