// Package storage holds the in-memory implementation of model.Store.
//
// # Semantics
//
// All three collections (accounts, containers, events) live in one
// MemoryStore value constructed at process start and injected wherever reads
// or writes happen. Upserts are create-or-merge: an explicit per-entity field
// merge, not a generic map spread, so unknown payload fields never leak into
// stored records. Events are append-only with no update, delete or eviction.
//
// # Concurrency
//
// A single RWMutex serializes writes against reads. Id generation runs under
// the write lock, so the uniqueness predicate always sees completed writes
// and concurrent upserts cannot produce two records under one key. Reads
// return defensive copies (events are immutable and shared by pointer).
package storage
