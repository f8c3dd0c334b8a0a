// Package store provides SQLite-backed durable storage for accounting graphs.
//
// The store is append-only:
//   - Graphs: one row per named accounting graph
//   - Revisions: the full tree (canonical JSON) after every applied edit
//   - Edits: every request sent to a graph, applied or not
//
// # Ordering
//
// All ordering uses logical seq numbers, never wall-clock time. Revisions
// are unique per seq; edits and graphs break seq ties on id COLLATE BINARY,
// so reads are identical across runs.
//
// # Idempotency
//
// Revisions are unique per (graph_id, seq) and edits per id; rewriting the
// same record is a no-op (ON CONFLICT DO NOTHING).
//
// # Schema
//
// schema.sql holds the base tables and is applied on every Open. Later
// indexes live in the migrations list; PRAGMA user_version records how many
// have run. Connections use WAL with synchronous=NORMAL, a 5s busy timeout
// and foreign keys on.
package store
