package edit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/factoryledger/internal/accounting"
	"github.com/roach88/factoryledger/internal/testutil"
)

func TestMoveSubtree_ConcreteScenario(t *testing.T) {
	root := group("Root", group("A"), group("B"))

	out, err := MoveSubtree(root, Path{1}, Path{0, 0})
	require.NoError(t, err)

	want := group("Root", group("A", group("B")))
	assert.Equal(t, canonical(t, want), canonical(t, out))
}

func TestMoveSubtree(t *testing.T) {
	abc := group("Root", group("A"), group("B"), group("C"))
	nested := group("Root", group("A", group("x"), group("y")), group("B"))

	tests := []struct {
		name      string
		root      accounting.Group
		src, dest Path
		want      string
	}{
		{"forward within parent", abc, Path{0}, Path{2}, "Root[B[],A[],C[]]"},
		{"to end of parent", abc, Path{0}, Path{3}, "Root[B[],C[],A[]]"},
		{"backward within parent", abc, Path{2}, Path{0}, "Root[C[],A[],B[]]"},
		{"middle to front", abc, Path{1}, Path{0}, "Root[B[],A[],C[]]"},
		{"into later sibling", abc, Path{0}, Path{2, 0}, "Root[B[],C[A[]]]"},
		{"into earlier sibling", abc, Path{2}, Path{0, 0}, "Root[A[C[]],B[]]"},
		{"across subtrees", nested, Path{0, 1}, Path{1, 0}, "Root[A[x[]],B[y[]]]"},
		{"out to shallower level", nested, Path{0, 0}, Path{2}, "Root[A[y[]],B[],x[]]"},
		{"out to front of root", nested, Path{0, 1}, Path{0}, "Root[y[],A[x[]],B[]]"},
		{"subtree into later sibling", nested, Path{0}, Path{1, 0}, "Root[B[A[x[],y[]]]]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := MoveSubtree(tt.root, tt.src, tt.dest)
			require.NoError(t, err)
			assert.Equal(t, tt.want, shape(out))
		})
	}
}

func TestMoveSubtree_Rejections(t *testing.T) {
	root := group("Root", group("A", group("B")), group("C"), miner(1))

	tests := []struct {
		name      string
		src, dest Path
		code      ErrorCode
	}{
		{"empty source", Path{}, Path{0}, CodeDegenerateMove},
		{"empty destination", Path{0}, Path{}, CodeDegenerateMove},
		{"same position", Path{1}, Path{1}, CodeDegenerateMove},
		{"just after itself", Path{1}, Path{2}, CodeDegenerateMove},
		{"into itself", Path{0}, Path{0, 0}, CodeDegenerateMove},
		{"into own descendant", Path{0}, Path{0, 0, 0}, CodeDegenerateMove},
		{"source out of range", Path{5}, Path{0}, CodeIndexOutOfRange},
		{"destination out of range", Path{1}, Path{0, 2}, CodeIndexOutOfRange},
		{"destination parent missing", Path{1}, Path{9, 0}, CodeIndexOutOfRange},
		{"destination inside building", Path{1}, Path{2, 0}, CodeStructuralMismatch},
		{"source through building", Path{2, 0}, Path{0}, CodeStructuralMismatch},
	}

	before := canonical(t, root)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := MoveSubtree(root, tt.src, tt.dest)
			require.Error(t, err)
			assert.Equal(t, tt.code, CodeOf(err), err.Error())
			assert.Equal(t, before, canonical(t, out), "root must be returned unchanged")
		})
	}
}

func TestMoveSubtree_NoOpIdempotence(t *testing.T) {
	root := sampleTree()

	for _, p := range allPaths(root) {
		out, err := MoveSubtree(root, p, p)
		assert.True(t, IsCode(err, CodeDegenerateMove), "path %s", p)
		assert.Equal(t, canonical(t, root), canonical(t, out), "path %s", p)
	}
}

func TestMoveSubtree_Conservation(t *testing.T) {
	root := sampleTree()
	leaves := leafMultiset(t, root)
	groups, buildings := accounting.CountNodes(root)
	before := canonical(t, root)

	var moved int
	for _, src := range allPaths(root) {
		for _, dest := range allDropTargets(root) {
			out, err := MoveSubtree(root, src, dest)
			if err != nil {
				assert.Equal(t, before, canonical(t, out), "rejected %s -> %s must not mutate", src, dest)
				continue
			}
			moved++

			assert.Equal(t, leaves, leafMultiset(t, out), "%s -> %s", src, dest)
			g, b := accounting.CountNodes(out)
			assert.Equal(t, groups, g, "%s -> %s", src, dest)
			assert.Equal(t, buildings, b, "%s -> %s", src, dest)
			assert.InDelta(t, root.Balance().Power, out.Balance().Power, 1e-9, "%s -> %s", src, dest)

			// The moved subtree is found at the adjusted destination.
			srcNode, err := Resolve(root, src)
			require.NoError(t, err)
			got, err := Resolve(out, adjustDest(src, dest))
			require.NoError(t, err, "%s -> %s", src, dest)
			assert.Equal(t, canonical(t, srcNode), canonical(t, got), "%s -> %s", src, dest)
		}
	}
	assert.Greater(t, moved, 50, "enumeration should exercise many valid moves")
}

func TestMoveSubtree_IntoSelfAlwaysRejected(t *testing.T) {
	root := sampleTree()

	for _, src := range allPaths(root) {
		for _, dest := range allDropTargets(root) {
			if !dest.HasPrefix(src) {
				continue
			}
			out, err := MoveSubtree(root, src, dest)
			assert.True(t, IsCode(err, CodeDegenerateMove), "%s -> %s", src, dest)
			assert.Equal(t, canonical(t, root), canonical(t, out))
		}
	}
}

// sampleTree has distinguishable leaves (different clock speeds) at several
// depths.
func sampleTree() accounting.Group {
	db := testutil.SampleDatabase()
	gen := accounting.NewBuilding(db, testutil.CoalGenerator, accounting.GeneratorSettings{Fuel: testutil.Coal, ClockSpeed: 1})
	return group("Root",
		group("Iron",
			miner(1),
			smelter(0.5),
			group("Backup", smelter(0.25)),
		),
		group("Empty"),
		gen,
		group("Copper", miner(2)),
	)
}
