// Package session runs a sequence of edits against one accounting graph.
//
// A Session owns the current root, stamps every request with a seq from a
// logical clock, and (when a store is attached) records each request in the
// edit log and each changed tree as a new revision. Seq numbers are never
// wall-clock time, so replaying the same requests with a fresh clock gives
// identical revisions.
//
// A Session is not safe for concurrent use.
package session
