package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/factoryledger/internal/accounting"
	"github.com/roach88/factoryledger/internal/testutil"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// sampleTree returns a small tree with one mining group.
func sampleTree() accounting.Group {
	db := testutil.SampleDatabase()
	miner := accounting.NewBuilding(db, testutil.MinerMk1, accounting.MinerSettings{
		Resource:   testutil.IronOre,
		ClockSpeed: 1,
	})
	smelter := accounting.NewBuilding(db, testutil.Smelter, accounting.ManufacturerSettings{
		Recipe:     testutil.RecipeIronIngot,
		ClockSpeed: 1,
	})
	return accounting.NewGroup("Root", accounting.NewGroup("Iron", miner, smelter))
}

// failRevisionInserts makes every later insert into revisions abort, the way
// a full disk would fail the second half of a paired write.
func failRevisionInserts(t *testing.T, s *Store) {
	t.Helper()
	_, err := s.db.Exec(`
		CREATE TRIGGER reject_revisions BEFORE INSERT ON revisions
		BEGIN SELECT RAISE(ABORT, 'disk full'); END
	`)
	require.NoError(t, err)
}
