package edit

import (
	"io"
	"log/slog"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/factoryledger/internal/accounting"
	"github.com/roach88/factoryledger/internal/testutil"
)

func newTestProcessor(t *testing.T) *Processor {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewProcessor(testutil.SampleDatabase(), logger)
}

func group(name string, children ...accounting.Node) accounting.Group {
	return accounting.NewGroup(name, children...)
}

func miner(clock float64) accounting.Building {
	return accounting.NewBuilding(testutil.SampleDatabase(), testutil.MinerMk1,
		accounting.MinerSettings{Resource: testutil.IronOre, ClockSpeed: clock})
}

func smelter(clock float64) accounting.Building {
	return accounting.NewBuilding(testutil.SampleDatabase(), testutil.Smelter,
		accounting.ManufacturerSettings{Recipe: testutil.RecipeIronIngot, ClockSpeed: clock})
}

// shape renders a tree as nested names for compact assertions: groups as
// Name[...], buildings as their id.
func shape(n accounting.Node) string {
	switch v := n.(type) {
	case accounting.Group:
		s := v.Name + "["
		for i, c := range v.Children {
			if i > 0 {
				s += ","
			}
			s += shape(c)
		}
		return s + "]"
	case accounting.Building:
		if !v.Building.IsSet() {
			return "-"
		}
		return string(v.Building)
	default:
		return "?"
	}
}

func canonical(t *testing.T, n accounting.Node) string {
	t.Helper()
	b, err := accounting.MarshalCanonical(n)
	require.NoError(t, err)
	return string(b)
}

// leafMultiset returns the canonical form of every leaf, sorted.
func leafMultiset(t *testing.T, n accounting.Node) []string {
	t.Helper()
	var out []string
	for _, b := range accounting.Leaves(n) {
		out = append(out, canonical(t, b))
	}
	sort.Strings(out)
	return out
}

// allPaths lists the path of every node below root, depth first.
func allPaths(root accounting.Node) []Path {
	var out []Path
	accounting.Walk(root, func(p []int, _ accounting.Node) bool {
		if len(p) > 0 {
			out = append(out, Path(p).Clone())
		}
		return true
	})
	return out
}

// allDropTargets lists every insertion position in root: for each group,
// indices 0..len(children).
func allDropTargets(root accounting.Node) []Path {
	var out []Path
	accounting.Walk(root, func(p []int, n accounting.Node) bool {
		if g, ok := n.(accounting.Group); ok {
			for i := 0; i <= g.Len(); i++ {
				out = append(out, Path(p).Child(i))
			}
		}
		return true
	})
	return out
}
