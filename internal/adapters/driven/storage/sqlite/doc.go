// Package sqlite provides a SQLite-backed VectorStore.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. Every collection lives in a single database file and each
// passage row carries its embedding as a little-endian float32 blob.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.sercha-rag/data/vectors.db
//
// # Search
//
// Search loads the collection's embeddings and ranks them with a cosine scan.
// It suits collections of tens of thousands of passages.
package sqlite
