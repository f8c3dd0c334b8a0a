package edit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/factoryledger/internal/accounting"
)

func TestPathString(t *testing.T) {
	assert.Equal(t, "/", Path{}.String())
	assert.Equal(t, "/", Path(nil).String())
	assert.Equal(t, "/0/2/1", Path{0, 2, 1}.String())
}

func TestParsePath(t *testing.T) {
	tests := []struct {
		in      string
		want    Path
		wantErr bool
	}{
		{"", Path{}, false},
		{"/", Path{}, false},
		{"/0", Path{0}, false},
		{"/3/0/12", Path{3, 0, 12}, false},
		{"1/2", Path{1, 2}, false},
		{"/a", nil, true},
		{"/-1", nil, true},
		{"/1//2", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePath(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCommonPrefixLength(t *testing.T) {
	tests := []struct {
		a, b Path
		want int
	}{
		{Path{}, Path{}, 0},
		{Path{1}, Path{}, 0},
		{Path{1, 2, 3}, Path{1, 2, 3}, 3},
		{Path{1, 2, 3}, Path{1, 2}, 2},
		{Path{1, 2, 3}, Path{1, 4, 3}, 1},
		{Path{0}, Path{1}, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CommonPrefixLength(tt.a, tt.b), "%v %v", tt.a, tt.b)
		assert.Equal(t, tt.want, CommonPrefixLength(tt.b, tt.a), "symmetric")
	}
}

func TestPathRelations(t *testing.T) {
	p := Path{1, 2}

	assert.True(t, p.HasPrefix(Path{}))
	assert.True(t, p.HasPrefix(Path{1}))
	assert.True(t, p.HasPrefix(Path{1, 2}))
	assert.False(t, p.HasPrefix(Path{1, 2, 0}))
	assert.False(t, p.HasPrefix(Path{2}))

	assert.True(t, Path{1}.IsStrictPrefixOf(p))
	assert.False(t, p.IsStrictPrefixOf(p))

	assert.Equal(t, Path{1}, p.Parent())
	assert.Equal(t, Path{}, Path{}.Parent())
	assert.Equal(t, 2, p.Last())
	assert.Equal(t, -1, Path{}.Last())

	child := p.Child(7)
	assert.Equal(t, Path{1, 2, 7}, child)
	assert.Equal(t, Path{1, 2}, p, "Child must not modify the receiver")

	// Parent is clipped, so appending to it cannot write into p.
	_ = append(p.Parent(), 9)
	assert.Equal(t, Path{1, 2}, p)
}

func TestResolve(t *testing.T) {
	m := miner(1)
	root := group("Root", group("A", m), group("B"))

	n, err := Resolve(root, Path{})
	require.NoError(t, err)
	assert.Equal(t, accounting.Node(root), n)

	n, err = Resolve(root, Path{0, 0})
	require.NoError(t, err)
	assert.Equal(t, accounting.Node(m), n)

	_, err = Resolve(root, Path{2})
	require.Error(t, err)
	assert.True(t, IsCode(err, CodeIndexOutOfRange))
	assert.Equal(t, Path{2}, err.(*EditError).Path)

	_, err = Resolve(root, Path{0, 0, 0})
	require.Error(t, err)
	assert.True(t, IsCode(err, CodeStructuralMismatch), "path through a building")
	assert.Equal(t, Path{0, 0}, err.(*EditError).Path)
}

func TestReplaceAt_RebuildsAncestors(t *testing.T) {
	root := group("Root", group("A", group("Deep")), group("B"))

	out, err := replaceAt(root, Path{0, 0}, group("Deep", miner(1)))
	require.NoError(t, err)

	assert.Equal(t, "Root[A[Deep[miner_mk1]],B[]]", shape(out))
	assert.Equal(t, 60.0, out.Balance().Rate("iron_ore"))
	assert.True(t, root.Balance().IsZero(), "original untouched")
}
