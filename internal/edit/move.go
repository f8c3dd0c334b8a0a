package edit

import (
	"github.com/roach88/factoryledger/internal/accounting"
)

// MoveSubtree relocates the subtree at src to dest, both relative to root.
//
// dest is read against the tree before removal: it is the position the
// caller pointed at. When src and dest share a parent chain down to the
// source's level and dest lies after the source there, removing the source
// shifts dest's index at that level down by one.
//
// On any error root is returned unchanged. A move that would land the
// subtree where it already was returns DEGENERATE_MOVE.
func MoveSubtree(root accounting.Group, src, dest Path) (accounting.Group, error) {
	switch {
	case len(src) == 0:
		return root, degenerateMove(src, dest, "source path is empty")
	case len(dest) == 0:
		return root, degenerateMove(src, dest, "destination path is empty")
	case dest.Equal(src):
		return root, degenerateMove(src, dest, "source and destination are the same position")
	case dest.HasPrefix(src):
		return root, degenerateMove(src, dest, "cannot move a node inside itself")
	}

	// Validate dest against the original tree so errors name the position
	// the caller asked for.
	destParent, err := resolveGroup(root, dest.Parent())
	if err != nil {
		return root, err
	}
	if dest.Last() > destParent.Len() {
		return root, indexOutOfRange(dest, dest.Last(), destParent.Len())
	}

	srcParent, err := resolveGroup(root, src.Parent())
	if err != nil {
		return root, err
	}
	shrunk, moved, ok := srcParent.RemoveChild(src.Last())
	if !ok {
		return root, indexOutOfRange(src, src.Last(), srcParent.Len())
	}

	adjusted := adjustDest(src, dest)
	if adjusted.Equal(src) {
		return root, degenerateMove(src, dest, "source and destination are the same position")
	}

	removed, err := replaceAt(root, src.Parent(), shrunk)
	if err != nil {
		return root, err
	}

	target, err := resolveGroup(removed, adjusted.Parent())
	if err != nil {
		return root, err
	}
	grown, ok := target.InsertChild(adjusted.Last(), moved)
	if !ok {
		return root, indexOutOfRange(dest, adjusted.Last(), target.Len())
	}

	out, err := replaceAt(removed, adjusted.Parent(), grown)
	if err != nil {
		return root, err
	}
	return out.(accounting.Group), nil
}

// adjustDest maps a pre-removal destination onto the tree after src has
// been removed.
func adjustDest(src, dest Path) Path {
	out := dest.Clone()
	level := len(src) - 1
	if len(dest) <= level {
		return out
	}
	if CommonPrefixLength(dest[:level], src[:level]) == level && dest[level] > src[level] {
		out[level]--
	}
	return out
}
