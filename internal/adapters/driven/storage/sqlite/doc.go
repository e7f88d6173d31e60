// Package sqlite provides a SQLite-based implementation of the session stores.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. A single database connection backs:
//
//   - VectorIndex: Embedded sections and terms with their metadata
//   - DestinationStore: Destination documents being assembled
//
// Similarity queries load the candidate vectors and score them in Go; the
// working set of one authoring session is small enough for a linear scan.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.docmerge/data/session.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
