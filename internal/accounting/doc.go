// Package accounting provides the value types of the accounting graph.
//
// A Node is either a Group (a named, ordered list of child nodes) or a
// Building (a production unit with kind-specific settings). Nodes are
// immutable values: every constructor computes the cached Balance, and every
// "modification" returns a new node. A child slice is never written after the
// node holding it has been built.
//
// Key constraints:
//   - A Building's settings are either nil (building unset or unknown) or
//     shaped for the kind of its building in the database. ReconcileSettings
//     is the only function that changes a settings shape.
//   - Balance is always recomputed when content changes. Decoding through
//     NodeDoc.Build computes it for the whole tree.
//   - Canonical JSON omits the cached balance, so two nodes with the same
//     content hash identically.
package accounting
