package session

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/factoryledger/internal/accounting"
	"github.com/roach88/factoryledger/internal/edit"
	"github.com/roach88/factoryledger/internal/store"
	"github.com/roach88/factoryledger/internal/testutil"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testTree() accounting.Group {
	db := testutil.SampleDatabase()
	miner := accounting.NewBuilding(db, testutil.MinerMk1, accounting.MinerSettings{
		Resource:   testutil.IronOre,
		ClockSpeed: 1,
	})
	return accounting.NewGroup("Root", accounting.NewGroup("Iron", miner))
}

func testOptions(st *store.Store) Options {
	return Options{
		Clock:    testutil.NewDeterministicClock(),
		GraphIDs: NewFixedGenerator("graph-1"),
		EditIDs:  testutil.NewSequenceIDGenerator("edit"),
		Store:    st,
	}
}

func TestStart_RejectsNilRoot(t *testing.T) {
	proc := edit.NewProcessor(testutil.SampleDatabase(), nil)
	_, err := Start(context.Background(), proc, "Base", nil, Options{})
	assert.Error(t, err)
}

func TestSession_WithoutStore(t *testing.T) {
	ctx := context.Background()
	proc := edit.NewProcessor(testutil.SampleDatabase(), nil)

	s, err := Start(ctx, proc, "Base", testTree(), testOptions(nil))
	require.NoError(t, err)
	assert.Equal(t, "graph-1", s.GraphID())
	assert.Equal(t, "Base", s.Name())
	assert.Equal(t, int64(0), s.Seq(), "no seq is used without a store")

	res, err := s.Apply(ctx, edit.Path{0}, edit.Rename{Name: "Iron Line"})
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, int64(1), s.Seq())

	iron, err := edit.Resolve(s.Root(), edit.Path{0})
	require.NoError(t, err)
	assert.Equal(t, "Iron Line", iron.(accounting.Group).Name)
}

func TestSession_RejectionKeepsRoot(t *testing.T) {
	ctx := context.Background()
	proc := edit.NewProcessor(testutil.SampleDatabase(), nil)

	s, err := Start(ctx, proc, "Base", testTree(), testOptions(nil))
	require.NoError(t, err)
	before := s.Root()

	res, err := s.Apply(ctx, edit.Path{}, edit.DeleteChild{Index: 9})
	require.Error(t, err)
	assert.True(t, edit.IsCode(err, edit.CodeIndexOutOfRange))
	assert.False(t, res.Changed)
	assert.Equal(t, before, s.Root())
	require.NotEmpty(t, res.Diagnostics)
	assert.Equal(t, edit.LevelError, res.Diagnostics[0].Level)
}

func TestSession_RecordsEditsAndRevisions(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	proc := edit.NewProcessor(testutil.SampleDatabase(), nil)

	s, err := Start(ctx, proc, "Base", testTree(), testOptions(st))
	require.NoError(t, err)
	assert.Equal(t, int64(1), s.Seq())

	// seq 2: applied
	_, err = s.Apply(ctx, edit.Path{0}, edit.Rename{Name: "Iron Line"})
	require.NoError(t, err)
	// seq 3: rejected
	_, err = s.Apply(ctx, edit.Path{}, edit.DeleteChild{Index: 9})
	require.Error(t, err)
	// seq 4: valid but changes nothing
	_, err = s.Apply(ctx, edit.Path{0}, edit.Rename{Name: "Iron Line"})
	require.NoError(t, err)

	g, err := st.ReadGraph(ctx, "graph-1")
	require.NoError(t, err)
	assert.Equal(t, store.Graph{ID: "graph-1", Name: "Base", CreatedSeq: 1}, g)

	edits, err := st.ReadEdits(ctx, "graph-1")
	require.NoError(t, err)
	require.Len(t, edits, 3)

	assert.Equal(t, "edit-000001", edits[0].ID)
	assert.Equal(t, int64(2), edits[0].Seq)
	assert.Equal(t, "/0", edits[0].TargetPath)
	assert.Equal(t, store.OutcomeApplied, edits[0].Outcome)
	assert.JSONEq(t, `{"type":"rename","name":"Iron Line"}`, string(edits[0].Request))

	assert.Equal(t, store.OutcomeRejected, edits[1].Outcome)
	assert.Equal(t, string(edit.CodeIndexOutOfRange), edits[1].ErrorCode)
	assert.NotEmpty(t, edits[1].Message)

	assert.Equal(t, store.OutcomeUnchanged, edits[2].Outcome)
	assert.Empty(t, edits[2].ErrorCode)

	revs, err := st.ReadRevisions(ctx, "graph-1")
	require.NoError(t, err)
	require.Len(t, revs, 2)
	assert.Equal(t, int64(1), revs[0].Seq)
	assert.Equal(t, int64(2), revs[1].Seq)
	assert.Equal(t, accounting.MustNodeHash(s.Root()), revs[1].RootHash)
}

func TestResume_ContinuesFromLatestRevision(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	proc := edit.NewProcessor(testutil.SampleDatabase(), nil)

	s, err := Start(ctx, proc, "Base", testTree(), testOptions(st))
	require.NoError(t, err)
	_, err = s.Apply(ctx, edit.Path{0}, edit.Rename{Name: "Iron Line"})
	require.NoError(t, err)
	_, err = s.Apply(ctx, edit.Path{}, edit.DeleteChild{Index: 9})
	require.Error(t, err)

	resumed, err := Resume(ctx, proc, "graph-1", Options{
		EditIDs: testutil.NewSequenceIDGenerator("resumed"),
		Store:   st,
	})
	require.NoError(t, err)
	assert.Equal(t, "Base", resumed.Name())
	assert.Equal(t, s.Root(), resumed.Root())
	assert.Equal(t, int64(3), resumed.Seq(), "clock resumes after the rejected edit")

	_, err = resumed.Apply(ctx, edit.Path{}, edit.Rename{Name: "Factory"})
	require.NoError(t, err)

	rev, err := st.LatestRevision(ctx, "graph-1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), rev.Seq)
	assert.Equal(t, accounting.MustNodeHash(resumed.Root()), rev.RootHash)
}

func TestResume_Errors(t *testing.T) {
	ctx := context.Background()
	proc := edit.NewProcessor(testutil.SampleDatabase(), nil)

	_, err := Resume(ctx, proc, "graph-1", Options{})
	assert.Error(t, err, "store is required")

	st := newTestStore(t)
	_, err = Resume(ctx, proc, "missing", Options{Store: st})
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestSession_FailedRevisionRecordsNothing(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")
	st, err := store.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	proc := edit.NewProcessor(testutil.SampleDatabase(), nil)
	s, err := Start(ctx, proc, "Base", testTree(), testOptions(st))
	require.NoError(t, err)
	before := s.Root()

	// Break revision inserts from a second connection.
	raw, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer raw.Close()
	_, err = raw.Exec(`CREATE TRIGGER reject_revisions BEFORE INSERT ON revisions
		BEGIN SELECT RAISE(ABORT, 'disk full'); END`)
	require.NoError(t, err)

	res, err := s.Apply(ctx, edit.Path{0}, edit.Rename{Name: "Copper"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, before, res.Root)
	assert.Equal(t, before, s.Root())

	edits, err := st.ReadEdits(ctx, "graph-1")
	require.NoError(t, err)
	assert.Empty(t, edits)

	revs, err := st.ReadRevisions(ctx, "graph-1")
	require.NoError(t, err)
	assert.Len(t, revs, 1)
}
