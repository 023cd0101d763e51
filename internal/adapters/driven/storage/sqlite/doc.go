// Package sqlite provides SQLite-backed implementations of the record table
// and the local embedding index.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Every database file carries the same
// schema and serves either role:
//
//   - RecordStore: the {path, content} table written by extraction, one file per
//     extracted root
//   - VectorIndex: a named collection of embeddings searched by exact L2 distance
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
