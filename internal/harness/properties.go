package harness

import (
	"fmt"
	"slices"

	"github.com/roach88/factoryledger/internal/accounting"
	"github.com/roach88/factoryledger/internal/database"
	"github.com/roach88/factoryledger/internal/edit"
)

// checkProperties reports tree properties that one step broke.
//
//   - A rejected or no-op request leaves the tree byte-identical.
//   - An applied move keeps the same buildings and group count.
//   - No step adds a building whose settings disagree with its kind.
func checkProperties(db database.Lookup, before, after accounting.Node, req edit.Request, res edit.Result, editErr error) []string {
	var out []string

	if editErr != nil || !res.Changed {
		if !sameTree(before, after) {
			out = append(out, "tree changed although the request was not applied")
		}
		return out
	}

	if _, ok := req.(edit.MoveNode); ok {
		gb, bb := accounting.CountNodes(before)
		ga, ba := accounting.CountNodes(after)
		if gb != ga || bb != ba {
			out = append(out, fmt.Sprintf("move changed node counts: %d groups/%d buildings -> %d/%d", gb, bb, ga, ba))
		}
		if !slices.Equal(leafMultiset(before), leafMultiset(after)) {
			out = append(out, "move changed the set of buildings")
		}
	}

	if nb, na := shapeViolations(db, before), shapeViolations(db, after); na > nb {
		out = append(out, fmt.Sprintf("settings shape violations rose from %d to %d", nb, na))
	}
	return out
}

func sameTree(a, b accounting.Node) bool {
	ha, errA := accounting.NodeHash(a)
	hb, errB := accounting.NodeHash(b)
	return errA == nil && errB == nil && ha == hb
}

// leafMultiset returns the canonical form of every building, sorted.
func leafMultiset(n accounting.Node) []string {
	leaves := accounting.Leaves(n)
	out := make([]string, 0, len(leaves))
	for _, b := range leaves {
		data, err := accounting.MarshalCanonical(b)
		if err != nil {
			out = append(out, fmt.Sprintf("<%v>", err))
			continue
		}
		out = append(out, string(data))
	}
	slices.Sort(out)
	return out
}

func shapeViolations(db database.Lookup, n accounting.Node) int {
	count := 0
	for _, v := range accounting.CheckTree(db, n) {
		if v.Code == accounting.ViolationShape {
			count++
		}
	}
	return count
}
