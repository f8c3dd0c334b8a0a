package edit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/factoryledger/internal/accounting"
)

// Path addresses a node by child indices from some starting node.
// The empty path is the starting node itself.
//
// Paths are positional: inserting or removing an earlier sibling makes them
// stale, so always resolve against the tree current at edit time.
type Path []int

// String renders the path as "/0/2/1"; the empty path is "/".
func (p Path) String() string {
	if len(p) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, idx := range p {
		b.WriteByte('/')
		b.WriteString(strconv.Itoa(idx))
	}
	return b.String()
}

// ParsePath parses the String form. Both "" and "/" are the empty path.
func ParsePath(s string) (Path, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "/" {
		return Path{}, nil
	}
	parts := strings.Split(strings.TrimPrefix(s, "/"), "/")
	out := make(Path, 0, len(parts))
	for _, part := range parts {
		idx, err := strconv.Atoi(part)
		if err != nil || idx < 0 {
			return nil, fmt.Errorf("invalid path segment %q in %q", part, s)
		}
		out = append(out, idx)
	}
	return out, nil
}

// Equal reports whether p and o address the same position.
func (p Path) Equal(o Path) bool {
	return len(p) == len(o) && CommonPrefixLength(p, o) == len(p)
}

// HasPrefix reports whether prefix is a (not necessarily strict) prefix of p.
func (p Path) HasPrefix(prefix Path) bool {
	return len(prefix) <= len(p) && CommonPrefixLength(p, prefix) == len(prefix)
}

// IsStrictPrefixOf reports whether p is a proper prefix of o.
func (p Path) IsStrictPrefixOf(o Path) bool {
	return len(p) < len(o) && o.HasPrefix(p)
}

// Parent drops the last index. The parent of the empty path is empty.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return Path{}
	}
	return p[:len(p)-1:len(p)-1]
}

// Last returns the final index; -1 for the empty path.
func (p Path) Last() int {
	if len(p) == 0 {
		return -1
	}
	return p[len(p)-1]
}

// Child returns a new path one level deeper.
func (p Path) Child(idx int) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = idx
	return out
}

// Clone returns a copy that shares no memory with p.
func (p Path) Clone() Path {
	return append(Path{}, p...)
}

// CommonPrefixLength returns the length of the longest shared leading
// sequence of a and b.
func CommonPrefixLength(a, b Path) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

// Resolve follows path from root and returns the addressed node.
//
// Fails with INDEX_OUT_OF_RANGE when an index exceeds its level's child
// count, or STRUCTURAL_MISMATCH when a non-terminal segment lands on a
// Building.
func Resolve(root accounting.Node, path Path) (accounting.Node, error) {
	cur := root
	for depth, idx := range path {
		g, ok := cur.(accounting.Group)
		if !ok {
			return nil, notAGroup(path[:depth])
		}
		child, ok := g.Child(idx)
		if !ok {
			return nil, indexOutOfRange(path[:depth+1], idx, g.Len())
		}
		cur = child
	}
	return cur, nil
}

// resolveGroup is Resolve restricted to groups.
func resolveGroup(root accounting.Node, path Path) (accounting.Group, error) {
	n, err := Resolve(root, path)
	if err != nil {
		return accounting.Group{}, err
	}
	g, ok := n.(accounting.Group)
	if !ok {
		return accounting.Group{}, notAGroup(path)
	}
	return g, nil
}

// replaceAt installs value at path under root and rebuilds every group on
// the way back up. The empty path replaces root itself.
func replaceAt(root accounting.Node, path Path, value accounting.Node) (accounting.Node, error) {
	ancestors := make([]accounting.Group, len(path))
	cur := root
	for depth, idx := range path {
		g, ok := cur.(accounting.Group)
		if !ok {
			return nil, notAGroup(path[:depth])
		}
		child, ok := g.Child(idx)
		if !ok {
			return nil, indexOutOfRange(path[:depth+1], idx, g.Len())
		}
		ancestors[depth] = g
		cur = child
	}

	out := value
	for depth := len(path) - 1; depth >= 0; depth-- {
		out, _ = ancestors[depth].ReplaceChild(path[depth], out)
	}
	return out, nil
}
