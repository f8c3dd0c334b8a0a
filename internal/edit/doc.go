// Package edit implements the tree mutation algebra of the accounting graph.
//
// Every edit is a Request addressed to a node by a structural Path. The
// Processor runs the request against that node's current value and produces
// a replacement, which is then installed into each ancestor in turn until a
// new root exists. Nodes are never mutated in place; a rejected request
// leaves the tree exactly as it was and yields an *EditError.
//
// Moves are resolved at the lowest common ancestor of the source and
// destination (see Apply) and carried out by MoveSubtree.
//
// A Processor is not safe for concurrent use. The catalog it reads from may
// be shared.
package edit
