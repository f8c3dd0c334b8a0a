package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/factoryledger/internal/accounting"
	"github.com/roach88/factoryledger/internal/edit"
	"github.com/roach88/factoryledger/internal/testutil"
)

func TestCheckProperties_RejectedRequestMustNotChangeTree(t *testing.T) {
	db := testutil.SampleDatabase()
	before := assertionTree()
	after := before.WithName("Changed")
	err := &edit.EditError{Code: edit.CodeIndexOutOfRange}

	msgs := checkProperties(db, before, after, edit.Rename{Name: "Changed"}, edit.Result{}, err)
	assert.Equal(t, []string{"tree changed although the request was not applied"}, msgs)

	assert.Empty(t, checkProperties(db, before, before, edit.Rename{Name: "Root"}, edit.Result{}, nil))
}

func TestCheckProperties_MoveMustConserveBuildings(t *testing.T) {
	db := testutil.SampleDatabase()
	before := assertionTree()
	// A "move" that dropped the smelter.
	iron := before.Children[0].(accounting.Group)
	lost, _, _ := iron.RemoveChild(1)
	after, _ := before.ReplaceChild(0, lost)

	msgs := checkProperties(db, before, after, edit.MoveNode{Src: edit.Path{0, 1}, Dest: edit.Path{1}}, edit.Result{Changed: true}, nil)
	assert.Len(t, msgs, 2)
	assert.Contains(t, msgs[0], "move changed node counts")
	assert.Equal(t, "move changed the set of buildings", msgs[1])
}

func TestCheckProperties_ShapeViolations(t *testing.T) {
	db := testutil.SampleDatabase()
	before := accounting.NewGroup("Root", accounting.NewBuilding(db, testutil.Smelter,
		accounting.ManufacturerSettings{ClockSpeed: 1}))
	bad := accounting.NewBuilding(db, testutil.Smelter, accounting.MinerSettings{ClockSpeed: 1})
	after, _ := before.ReplaceChild(0, bad)

	msgs := checkProperties(db, before, after, edit.ChangeItem{Item: testutil.IronOre}, edit.Result{Changed: true}, nil)
	assert.Equal(t, []string{"settings shape violations rose from 0 to 1"}, msgs)
}
