// Package apicache persists API responses in a local SQLite database.
//
// The Last.fm and MusicBrainz clients read through the same store so
// repeated runs serve from disk instead of the network. Entries carry a
// per-source TTL; expired entries are dropped lazily on read and in bulk by
// Prune. A file lock next to the database serializes access across
// concurrent invocations.
package apicache
