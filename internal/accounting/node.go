package accounting

import (
	"slices"

	"github.com/roach88/factoryledger/internal/database"
)

// Node is a sealed interface for the two kinds of accounting graph node.
// Only Group and Building implement it.
type Node interface {
	// Balance is the cached net balance of this node's subtree.
	Balance() Balance
	node()
}

// Group is a named, ordered collection of child nodes.
type Group struct {
	Name     string
	Children []Node
	balance  Balance
}

// Building is a leaf node: one production unit.
type Building struct {
	// Building is the catalog id of the building type; empty when unset.
	Building database.BuildingID
	// Settings is nil when Building is unset.
	Settings BuildingSettings
	balance  Balance
}

func (g Group) Balance() Balance    { return g.balance }
func (b Building) Balance() Balance { return b.balance }

func (Group) node()    {}
func (Building) node() {}

// NewGroup builds a group. The children slice is copied.
func NewGroup(name string, children ...Node) Group {
	owned := append(make([]Node, 0, len(children)), children...)
	return Group{Name: name, Children: owned, balance: sumBalances(owned)}
}

// NewBuilding builds a building node and computes its balance.
func NewBuilding(db database.Lookup, id database.BuildingID, settings BuildingSettings) Building {
	return Building{
		Building: id,
		Settings: settings,
		balance:  buildingBalance(db, id, settings),
	}
}

// NewEmptyBuilding returns a building with no type selected.
func NewEmptyBuilding() Building {
	return Building{}
}

// Child returns the child at idx.
func (g Group) Child(idx int) (Node, bool) {
	if idx < 0 || idx >= len(g.Children) {
		return nil, false
	}
	return g.Children[idx], true
}

// Len returns the number of children.
func (g Group) Len() int { return len(g.Children) }

// WithName returns a copy of g renamed.
func (g Group) WithName(name string) Group {
	return Group{Name: name, Children: g.Children, balance: g.balance}
}

// WithChildren returns a group with g's name and the given children.
// The slice is taken over by the new group; callers must not write to it
// afterwards.
func (g Group) WithChildren(children []Node) Group {
	return Group{Name: g.Name, Children: children, balance: sumBalances(children)}
}

// ReplaceChild returns a copy of g with the child at idx replaced.
// Reports false if idx is out of range.
func (g Group) ReplaceChild(idx int, child Node) (Group, bool) {
	if idx < 0 || idx >= len(g.Children) {
		return g, false
	}
	children := slices.Clone(g.Children)
	children[idx] = child
	return g.WithChildren(children), true
}

// InsertChild returns a copy of g with child inserted at idx (0..Len()).
// Reports false if idx is out of range.
func (g Group) InsertChild(idx int, child Node) (Group, bool) {
	if idx < 0 || idx > len(g.Children) {
		return g, false
	}
	children := make([]Node, 0, len(g.Children)+1)
	children = append(children, g.Children[:idx]...)
	children = append(children, child)
	children = append(children, g.Children[idx:]...)
	return g.WithChildren(children), true
}

// RemoveChild returns a copy of g without the child at idx, and the removed
// child. Reports false if idx is out of range.
func (g Group) RemoveChild(idx int) (Group, Node, bool) {
	if idx < 0 || idx >= len(g.Children) {
		return g, nil, false
	}
	removed := g.Children[idx]
	children := make([]Node, 0, len(g.Children)-1)
	children = append(children, g.Children[:idx]...)
	children = append(children, g.Children[idx+1:]...)
	return g.WithChildren(children), removed, true
}

// Walk visits n and its descendants depth-first, passing each node's path
// relative to n. Returning false from fn skips the node's children.
func Walk(n Node, fn func(path []int, n Node) bool) {
	walk(n, nil, fn)
}

func walk(n Node, path []int, fn func([]int, Node) bool) {
	if !fn(path, n) {
		return
	}
	g, ok := n.(Group)
	if !ok {
		return
	}
	for i, c := range g.Children {
		walk(c, append(slices.Clip(path), i), fn)
	}
}

// Leaves returns every Building in the subtree in depth-first order.
func Leaves(n Node) []Building {
	var out []Building
	Walk(n, func(_ []int, n Node) bool {
		if b, ok := n.(Building); ok {
			out = append(out, b)
		}
		return true
	})
	return out
}

// CountNodes returns the number of groups and buildings in the subtree.
func CountNodes(n Node) (groups, buildings int) {
	Walk(n, func(_ []int, n Node) bool {
		switch n.(type) {
		case Group:
			groups++
		case Building:
			buildings++
		}
		return true
	})
	return groups, buildings
}
